package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
)

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) repositories.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByRF(ctx context.Context, tx *gorm.DB, rf string) (*models.Credential, error) {
	var credential models.Credential
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("rf = ?", rf).
		First(&credential).Error; err != nil {
		return nil, handleDBError(err, "get credential")
	}
	return &credential, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, tx *gorm.DB, credential *models.Credential) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rf"}},
			DoUpdates: clause.AssignmentColumns([]string{"senha_hash", "updated_at"}),
		}).
		Create(credential).Error
	return handleDBError(err, "upsert credential")
}

// Delete removes the credential; a missing row is not an error.
func (r *credentialRepository) Delete(ctx context.Context, tx *gorm.DB, rf string) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Where("rf = ?", rf).
		Delete(&models.Credential{}).Error
	return handleDBError(err, "delete credential")
}
