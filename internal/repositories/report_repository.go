package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
)

// ReportRepository reads and writes the relatorios table.
type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error)
	Update(ctx context.Context, tx *gorm.DB, report *models.Report) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.Report, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, registro string, bimestre string) ([]*models.Report, error)
	ListByProfessor(ctx context.Context, tx *gorm.DB, rf string) ([]*models.Report, error)
	ListForExport(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.ReportExportRow, error)

	// DeleteAll wipes every report and returns the photo paths they referenced.
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, []string, error)
}

// LoginLogRepository reads and writes the logs table.
type LoginLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.LoginLog) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LoginLogEntry, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}
