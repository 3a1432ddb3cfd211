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

type studentRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	listTTL      time.Duration
}

func NewStudentRepository(db *gorm.DB, cacheManager *cache.CacheManager, listTTL time.Duration) repositories.StudentRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &studentRepository{db: db, cacheManager: cacheManager, listTTL: listTTL}
}

// invalidate drops the cached list after a write.
func (r *studentRepository) invalidate(ctx context.Context) {
	cache.InvalidateStudents(ctx, r.cacheManager)
}

func (r *studentRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Student, error) {
	if tx != nil {
		return r.listFromDB(ctx, tx)
	}

	var students []*models.Student
	err := r.cacheManager.Roster.CacheOrExecute(ctx, cache.RosterStudentsKey, &students, r.listTTL, func() (any, error) {
		return r.listFromDB(ctx, nil)
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) listFromDB(ctx context.Context, tx *gorm.DB) ([]*models.Student, error) {
	var students []*models.Student
	if err := pickDB(r.db, tx).WithContext(ctx).
		Order("aluno ASC").
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "list students")
	}
	return students, nil
}

func (r *studentRepository) GetByRegistro(ctx context.Context, tx *gorm.DB, registro string) (*models.Student, error) {
	var student models.Student
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("registro = ?", registro).
		First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student by registro")
	}
	return &student, nil
}

func (r *studentRepository) GetByRegistros(ctx context.Context, tx *gorm.DB, registros []string) ([]*models.Student, error) {
	var students []*models.Student
	if len(registros) == 0 {
		return students, nil
	}
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("registro IN ?", registros).
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "get students by registro")
	}
	return students, nil
}

func (r *studentRepository) ExistsByRegistro(ctx context.Context, tx *gorm.DB, registro string) (bool, error) {
	var count int64
	if err := pickDB(r.db, tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("registro = ?", registro).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student exists")
	}
	return count > 0, nil
}

func (r *studentRepository) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := handleDBError(pickDB(r.db, tx).WithContext(ctx).Create(student).Error, "create student"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *studentRepository) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Model(student).
		Select("aluno", "turma", "necessidades", "data_nascimento", "observacoes_gerais", "foto_path", "updated_at").
		Updates(student)
	if err := checkAffected(result, "update student"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *studentRepository) Upsert(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	err := pickDB(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "registro"}},
			DoUpdates: clause.AssignmentColumns([]string{"aluno", "turma", "necessidades", "data_nascimento", "observacoes_gerais", "updated_at"}),
		}).
		Create(student).Error
	if err := handleDBError(err, "upsert student"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, tx *gorm.DB, registro string) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("registro = ?", registro).
		Delete(&models.Student{})
	if err := checkAffected(result, "delete student"); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
