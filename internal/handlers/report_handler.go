package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/utils"
	"github.com/aeeconecta/aee-service/internal/validator"
)

const maxUploadSize = 10 << 20

var errUploadTooLarge = errors.New("upload exceeds 10 MiB")

type RosterHandler struct {
	BaseHandler
	service services.RosterService
}

func NewRosterHandler(service services.RosterService, logger utils.Logger) *RosterHandler {
	return &RosterHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListStudents feeds the student picker. A read failure yields an empty list.
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListStudents(c.Request.Context()))
}

// @Router /professors [get]
func (h *RosterHandler) ListProfessors(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListProfessors(c.Request.Context()))
}

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateReport accepts JSON, or a multipart form with an optional "photo" file.
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	sess, err := GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.ReportCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	var photo []byte
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		photo, err = readFormFile(c, "photo")
		if err != nil {
			badRequest(c, err)
			return
		}
	}

	h.LogRequest(c, "Creating report", "rf", sess.RF, "registro", req.RegistroAluno)
	report, err := h.service.Create(c.Request.Context(), sess, &req, photo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// @Router /reports/mine [get]
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	sess, err := GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reports, err := h.service.ListMine(c.Request.Context(), sess)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// @Router /reports/{id} [put]
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sess, err := GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.ReportUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.service.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sess, err := GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), sess, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid report ID",
			Details: err.Error(),
		})
		return 0, false
	}
	return uint(id), true
}

// readFormFile returns the content of an optional multipart file.
func readFormFile(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if header.Size > maxUploadSize {
		return nil, errUploadTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadSize))
}
