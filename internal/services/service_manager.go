package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/validator"
)

// ServiceManagerConfig holds the dependencies shared by the services.
type ServiceManagerConfig struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Sessions  session.Store
	Store     storage.ObjectStore
	Publisher LoginPublisher
	Generator *documents.Generator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Validator *validator.Validator

	ProfilePhotoBucket string
	LessonPhotoBucket  string
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	config ServiceManagerConfig
	logger *slog.Logger

	authService     AuthService
	rosterService   RosterService
	reportService   ReportService
	documentService DocumentService
	adminService    AdminService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Validator == nil {
		config.Validator = validator.New()
	}
	return &serviceManager{
		config: config,
		logger: config.Logger,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	c := sm.config
	if c.DB == nil || c.Repo == nil || c.Sessions == nil || c.Store == nil || c.Generator == nil {
		return fmt.Errorf("service manager is missing a required dependency")
	}

	if err := c.Store.EnsureBuckets(ctx, c.ProfilePhotoBucket, c.LessonPhotoBucket); err != nil {
		return fmt.Errorf("failed to prepare photo buckets: %w", err)
	}

	sm.authService = NewAuthService(c.Repo, c.DB, c.Sessions, c.Publisher, c.Metrics, sm.logger, c.Validator)
	sm.rosterService = NewRosterService(c.Repo, c.DB, sm.logger)
	sm.reportService = NewReportService(c.Repo, c.DB, c.Store, c.LessonPhotoBucket, c.Metrics, sm.logger, c.Validator)
	sm.documentService = NewDocumentService(c.Repo, c.DB, c.Store, c.Generator, c.ProfilePhotoBucket, c.LessonPhotoBucket, c.Metrics, sm.logger)
	sm.adminService = NewAdminService(c.Repo, c.DB, c.Sessions, c.Store, c.ProfilePhotoBucket, c.LessonPhotoBucket, sm.logger, c.Validator)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) mustBeReady() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.authService
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.rosterService
}

func (sm *serviceManager) Reports() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.reportService
}

func (sm *serviceManager) Documents() DocumentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.documentService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady()
	return sm.adminService
}

// HealthCheck reports whether the services can serve requests.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.config.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true
	sm.logger.Info("Service manager shut down")
	return nil
}
