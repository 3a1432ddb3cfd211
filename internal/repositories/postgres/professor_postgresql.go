package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aeeconecta/aee-service/internal/cache"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
)

type professorRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	listTTL      time.Duration
}

func NewProfessorRepository(db *gorm.DB, cacheManager *cache.CacheManager, listTTL time.Duration) repositories.ProfessorRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &professorRepository{db: db, cacheManager: cacheManager, listTTL: listTTL}
}

// invalidate drops the cached list after a write.
func (r *professorRepository) invalidate(ctx context.Context) {
	cache.InvalidateProfessors(ctx, r.cacheManager)
}

func (r *professorRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Professor, error) {
	if tx != nil {
		return r.listFromDB(ctx, tx)
	}

	var professors []*models.Professor
	err := r.cacheManager.Roster.CacheOrExecute(ctx, cache.RosterProfessorsKey, &professors, r.listTTL, func() (any, error) {
		return r.listFromDB(ctx, nil)
	})
	if err != nil {
		return nil, err
	}
	return professors, nil
}

func (r *professorRepository) listFromDB(ctx context.Context, tx *gorm.DB) ([]*models.Professor, error) {
	var professors []*models.Professor
	if err := pickDB(r.db, tx).WithContext(ctx).
		Order("nome ASC").
		Find(&professors).Error; err != nil {
		return nil, handleDBError(err, "list professors")
	}
	return professors, nil
}

func (r *professorRepository) GetByRF(ctx context.Context, tx *gorm.DB, rf string) (*models.Professor, error) {
	var professor models.Professor
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("rf = ?", rf).
		First(&professor).Error; err != nil {
		return nil, handleDBError(err, "get professor by rf")
	}
	return &professor, nil
}

func (r *professorRepository) GetByRFs(ctx context.Context, tx *gorm.DB, rfs []string) ([]*models.Professor, error) {
	var professors []*models.Professor
	if len(rfs) == 0 {
		return professors, nil
	}
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("rf IN ?", rfs).
		Find(&professors).Error; err != nil {
		return nil, handleDBError(err, "get professors by rf")
	}
	return professors, nil
}

func (r *professorRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := pickDB(r.db, tx).WithContext(ctx).
		Model(&models.Professor{}).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count professors")
	}
	return count, nil
}

func (r *professorRepository) ExistsByRF(ctx context.Context, tx *gorm.DB, rf string) (bool, error) {
	var count int64
	if err := pickDB(r.db, tx).WithContext(ctx).
		Model(&models.Professor{}).
		Where("rf = ?", rf).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check professor exists")
	}
	return count > 0, nil
}

func (r *professorRepository) Create(ctx context.Context, tx *gorm.DB, professor *models.Professor) error {
	if err := handleDBError(pickDB(r.db, tx).WithContext(ctx).Create(professor).Error, "create professor"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *professorRepository) Update(ctx context.Context, tx *gorm.DB, professor *models.Professor) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Model(professor).
		Select("nome", "perfil", "updated_at").
		Updates(professor)
	if err := checkAffected(result, "update professor"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *professorRepository) Upsert(ctx context.Context, tx *gorm.DB, professor *models.Professor) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rf"}},
			DoUpdates: clause.AssignmentColumns([]string{"nome", "perfil", "updated_at"}),
		}).
		Create(professor).Error
	if err := handleDBError(err, "upsert professor"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *professorRepository) Delete(ctx context.Context, tx *gorm.DB, rf string) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("rf = ?", rf).
		Delete(&models.Professor{})
	if err := checkAffected(result, "delete professor"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
