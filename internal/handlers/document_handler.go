package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/utils"
)

type DocumentHandler struct {
	BaseHandler
	service services.DocumentService
}

func NewDocumentHandler(service services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CoverSheet downloads the cover sheet of a student.
// @Router /documents/students/{registro}/cover [get]
func (h *DocumentHandler) CoverSheet(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	doc, err := h.service.CoverSheet(c.Request.Context(), sess, c.Param("registro"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendDocument(c, doc)
}

// Dossier downloads the bimester dossier of a student.
// @Param bimestre query string false "1º Bimestre .. 4º Bimestre or Todos"
// @Router /documents/students/{registro}/dossier [get]
func (h *DocumentHandler) Dossier(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	doc, err := h.service.Dossier(c.Request.Context(), sess, c.Param("registro"), c.Query("bimestre"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendDocument(c, doc)
}

// @Router /documents/export [get]
func (h *DocumentHandler) ExportReports(c *gin.Context) {
	sess, _ := GetSessionFromContext(c)
	doc, err := h.service.ExportReports(c.Request.Context(), sess, c.Query("bimestre"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.sendDocument(c, doc)
}
