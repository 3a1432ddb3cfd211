package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/utils"
	"github.com/aeeconecta/aee-service/internal/validator"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps responses that carry a message.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Debug(msg, args...)
}

// handleServiceError maps service errors to HTTP responses. Messages shown
// on the login form keep the wording the school staff is used to.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	// Authentication
	case errors.Is(err, services.ErrFirstAccess):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Primeiro acesso? Use seu RF como senha."})
	case errors.Is(err, services.ErrUnknownRF):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "RF não cadastrado."})
	case errors.Is(err, services.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Senha incorreta."})
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Sessão expirada. Entre novamente."})
	case errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "A senha deve ter no mínimo 6 caracteres."})
	case errors.Is(err, services.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "As senhas não coincidem."})
	case errors.Is(err, session.ErrInvalidSessionState):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Operation not allowed in the current session state"})

	// Roster and reports
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Student not found"})
	case errors.Is(err, services.ErrProfessorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Professor not found"})
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Report not found"})
	case errors.Is(err, services.ErrNoReports):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Nenhum relatório encontrado para este período."})
	case errors.Is(err, services.ErrStudentExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Registro já cadastrado."})
	case errors.Is(err, services.ErrProfessorExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "RF já cadastrado."})
	case errors.Is(err, services.ErrInvalidPhoto):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Photo must be an image", Details: err.Error()})
	case errors.Is(err, services.ErrInvalidRoster):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid roster workbook", Details: err.Error()})

	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

// sendDocument writes a generated file as an attachment.
func (h *BaseHandler) sendDocument(c *gin.Context, doc *services.Document) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(doc.Filename)))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid request payload",
		Details: err.Error(),
	})
}
