package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
)

// ProfessorRepository reads and writes the professores table.
type ProfessorRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.Professor, error)
	GetByRF(ctx context.Context, tx *gorm.DB, rf string) (*models.Professor, error)
	GetByRFs(ctx context.Context, tx *gorm.DB, rfs []string) ([]*models.Professor, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	ExistsByRF(ctx context.Context, tx *gorm.DB, rf string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, professor *models.Professor) error
	Update(ctx context.Context, tx *gorm.DB, professor *models.Professor) error
	Upsert(ctx context.Context, tx *gorm.DB, professor *models.Professor) error
	Delete(ctx context.Context, tx *gorm.DB, rf string) error
}

// StudentRepository reads and writes the estudantes table.
type StudentRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.Student, error)
	GetByRegistro(ctx context.Context, tx *gorm.DB, registro string) (*models.Student, error)
	GetByRegistros(ctx context.Context, tx *gorm.DB, registros []string) ([]*models.Student, error)
	ExistsByRegistro(ctx context.Context, tx *gorm.DB, registro string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Upsert(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Delete(ctx context.Context, tx *gorm.DB, registro string) error
}

// CredentialRepository reads and writes the credenciais table.
type CredentialRepository interface {
	GetByRF(ctx context.Context, tx *gorm.DB, rf string) (*models.Credential, error)
	Upsert(ctx context.Context, tx *gorm.DB, credential *models.Credential) error
	Delete(ctx context.Context, tx *gorm.DB, rf string) error
}
