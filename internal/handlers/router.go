package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	rosterHandler   *RosterHandler
	reportHandler   *ReportHandler
	documentHandler *DocumentHandler
	adminHandler    *AdminHandler
	authMiddleware  *SessionAuthMiddleware

	serviceManager services.ServiceManager
	gatherer       prometheus.Gatherer
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	gatherer prometheus.Gatherer,
) *HandlerManager {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		rosterHandler:   NewRosterHandler(serviceManager.Roster(), logger),
		reportHandler:   NewReportHandler(serviceManager.Reports(), logger),
		documentHandler: NewDocumentHandler(serviceManager.Documents(), logger),
		adminHandler:    NewAdminHandler(serviceManager.Admin(), serviceManager.Roster(), logger),
		authMiddleware:  NewSessionAuthMiddleware(serviceManager.Auth()),
		serviceManager:  serviceManager,
		gatherer:        gatherer,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.AuthMiddleware()
	loggedIn := hm.authMiddleware.RequireLoggedIn()
	can := hm.authMiddleware.RequirePermissionMiddleware

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			// first access: the session is still awaiting a password
			auth.POST("/password", requireAuth, hm.authHandler.SetPassword)
			auth.PUT("/password", requireAuth, loggedIn, hm.authHandler.ChangePassword)
			auth.POST("/logout", requireAuth, hm.authHandler.Logout)
		}

		authed := v1.Group("")
		authed.Use(requireAuth, loggedIn)
		{
			authed.GET("/me", hm.authHandler.Me)
			authed.GET("/students", hm.rosterHandler.ListStudents)
			authed.GET("/professors", hm.rosterHandler.ListProfessors)

			// Reports - ownership is checked by the service
			reports := authed.Group("/reports")
			reports.Use(can(models.PermFileReport))
			{
				reports.POST("", hm.reportHandler.CreateReport)
				reports.GET("/mine", hm.reportHandler.ListMyReports)
				reports.PUT("/:id", hm.reportHandler.UpdateReport)
				reports.DELETE("/:id", hm.reportHandler.DeleteReport)
			}

			documents := authed.Group("/documents")
			{
				documents.GET("/students/:registro/cover", can(models.PermGenerateDocuments), hm.documentHandler.CoverSheet)
				documents.GET("/students/:registro/dossier", can(models.PermGenerateDocuments), hm.documentHandler.Dossier)
				documents.GET("/export", can(models.PermExport), hm.documentHandler.ExportReports)
			}

			admin := authed.Group("/admin")
			{
				admin.GET("/students", can(models.PermManageRoster), hm.adminHandler.ListStudents)
				admin.POST("/students", can(models.PermManageRoster), hm.adminHandler.CreateStudent)
				admin.PUT("/students/:registro", can(models.PermManageRoster), hm.adminHandler.UpdateStudent)
				admin.DELETE("/students/:registro", can(models.PermManageRoster), hm.adminHandler.DeleteStudent)
				admin.POST("/students/:registro/photo", can(models.PermManageRoster), hm.adminHandler.UploadStudentPhoto)

				admin.GET("/professors", can(models.PermManageRoster), hm.adminHandler.ListProfessors)
				admin.POST("/professors", can(models.PermManageRoster), hm.adminHandler.CreateProfessor)
				admin.PUT("/professors/:rf", can(models.PermManageRoster), hm.adminHandler.UpdateProfessor)
				admin.DELETE("/professors/:rf", can(models.PermManageRoster), hm.adminHandler.DeleteProfessor)
				admin.POST("/professors/:rf/reset-password", can(models.PermResetPasswords), hm.adminHandler.ResetPassword)

				admin.GET("/reports", can(models.PermManageRoster), hm.adminHandler.ListReports)
				admin.GET("/logs", can(models.PermViewLogs), hm.adminHandler.LoginLogs)
				admin.POST("/roster/import", can(models.PermManageRoster), hm.adminHandler.ImportRoster)
				admin.POST("/reset", can(models.PermResetAll), hm.adminHandler.ResetAll)
			}
		}
	}

	router.GET("/health", hm.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})))
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "aee-service",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "aee-service",
	})
}
