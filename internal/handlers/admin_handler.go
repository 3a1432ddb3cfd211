package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/utils"
	"github.com/aeeconecta/aee-service/internal/validator"
)

type AdminHandler struct {
	BaseHandler
	admin  services.AdminService
	roster services.RosterService
}

func NewAdminHandler(admin services.AdminService, roster services.RosterService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		admin:       admin,
		roster:      roster,
	}
}

// ===== STUDENTS =====

// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	students, err := h.admin.ListStudents(c.Request.Context(), sess)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	var req validator.StudentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, _ := GetSessionFromContext(c)
	student, err := h.admin.CreateStudent(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

// @Router /admin/students/{registro} [put]
func (h *AdminHandler) UpdateStudent(c *gin.Context) {
	var req validator.StudentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, _ := GetSessionFromContext(c)
	student, err := h.admin.UpdateStudent(c.Request.Context(), sess, c.Param("registro"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// UploadStudentPhoto expects a multipart form with a "photo" file.
// @Router /admin/students/{registro}/photo [post]
func (h *AdminHandler) UploadStudentPhoto(c *gin.Context) {
	photo, err := readFormFile(c, "photo")
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(photo) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "photo file is required"})
		return
	}

	sess, _ := GetSessionFromContext(c)
	student, err := h.admin.UploadStudentPhoto(c.Request.Context(), sess, c.Param("registro"), photo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// @Router /admin/students/{registro} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	if err := h.admin.DeleteStudent(c.Request.Context(), sess, c.Param("registro")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== PROFESSORS =====

// @Router /admin/professors [get]
func (h *AdminHandler) ListProfessors(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	professors, err := h.admin.ListProfessors(c.Request.Context(), sess)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, professors)
}

// @Router /admin/professors [post]
func (h *AdminHandler) CreateProfessor(c *gin.Context) {
	var req validator.ProfessorCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, _ := GetSessionFromContext(c)
	professor, err := h.admin.CreateProfessor(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, professor)
}

// @Router /admin/professors/{rf} [put]
func (h *AdminHandler) UpdateProfessor(c *gin.Context) {
	var req validator.ProfessorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, _ := GetSessionFromContext(c)
	professor, err := h.admin.UpdateProfessor(c.Request.Context(), sess, c.Param("rf"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, professor)
}

// @Router /admin/professors/{rf} [delete]
func (h *AdminHandler) DeleteProfessor(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	if err := h.admin.DeleteProfessor(c.Request.Context(), sess, c.Param("rf")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetPassword makes the professor log in with the RF again.
// @Router /admin/professors/{rf}/reset-password [post]
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	if err := h.admin.ResetPassword(c.Request.Context(), sess, c.Param("rf")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Senha resetada para o RF."})
}

// ===== AUDIT & MAINTENANCE =====

// ListReports pages through every report with the query filters.
// @Router /admin/reports [get]
func (h *AdminHandler) ListReports(c *gin.Context) {
	var query validator.ReportListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	sess, _ := GetSessionFromContext(c)
	page, err := h.admin.ListReports(c.Request.Context(), sess, &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// @Router /admin/logs [get]
func (h *AdminHandler) LoginLogs(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	logs, err := h.admin.LoginLogs(c.Request.Context(), sess)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// ImportRoster upserts the roster from an uploaded workbook in the "file" field.
// @Router /admin/roster/import [post]
func (h *AdminHandler) ImportRoster(c *gin.Context) {
	data, err := readFormFile(c, "file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "file is required"})
		return
	}

	sess, _ := GetSessionFromContext(c)
	result, err := h.roster.ImportRoster(c.Request.Context(), sess, bytes.NewReader(data))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResetAll wipes reports and login logs.
// @Router /admin/reset [post]
func (h *AdminHandler) ResetAll(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	h.LogRequest(c, "Reset requested", "rf", sess.RF)

	result, err := h.admin.ResetAll(c.Request.Context(), sess)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Dados apagados.", Data: result})
}
