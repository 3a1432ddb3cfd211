package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) repositories.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	return handleDBError(pickDB(r.db, tx).WithContext(ctx).Create(report).Error, "create report")
}

func (r *reportRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	var report models.Report
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error; err != nil {
		return nil, handleDBError(err, "get report")
	}
	return &report, nil
}

func (r *reportRepository) Update(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Model(report).
		Select("data", "bimestre", "participou_aula", "motivo_nao_participou",
			"disciplina_tema", "planejado", "realizado", "participacao", "foto_path", "updated_at").
		Updates(report)
	return checkAffected(result, "update report")
}

func (r *reportRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := pickDB(r.db, tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Report{})
	return checkAffected(result, "delete report")
}

func (r *reportRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	query := applyReportFilters(pickDB(r.db, tx).WithContext(ctx).Model(&models.Report{}), "", filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count reports")
	}

	var reports []*models.Report
	query = applyPaginationAndSort(query, "", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&reports).Error; err != nil {
		return nil, 0, handleDBError(err, "list reports")
	}
	return reports, total, nil
}

// ListByStudent returns the reports of one student in lesson order. An empty
// bimestre or "Todos" selects every bimester.
func (r *reportRepository) ListByStudent(ctx context.Context, tx *gorm.DB, registro string, bimestre string) ([]*models.Report, error) {
	filters := repositories.ReportFilters{RegistroAluno: &registro, Bimestre: &bimestre}

	var reports []*models.Report
	query := applyReportFilters(pickDB(r.db, tx).WithContext(ctx).Model(&models.Report{}), "", filters)
	if err := query.Order("data ASC").Order("id ASC").Find(&reports).Error; err != nil {
		return nil, handleDBError(err, "list reports by student")
	}
	return reports, nil
}

func (r *reportRepository) ListByProfessor(ctx context.Context, tx *gorm.DB, rf string) ([]*models.Report, error) {
	var reports []*models.Report
	if err := pickDB(r.db, tx).WithContext(ctx).
		Where("rf_professor = ?", rf).
		Order("data DESC").Order("id DESC").
		Find(&reports).Error; err != nil {
		return nil, handleDBError(err, "list reports by professor")
	}
	return reports, nil
}

// ListForExport joins each report with its professor and student. Reports
// whose professor or student was removed keep empty names.
func (r *reportRepository) ListForExport(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.ReportExportRow, error) {
	query := pickDB(r.db, tx).WithContext(ctx).
		Table("relatorios r").
		Select("r.*, COALESCE(p.nome, '') AS professor_nome, COALESCE(e.aluno, '') AS aluno_nome, COALESCE(e.turma, '') AS turma").
		Joins("LEFT JOIN professores p ON p.rf = r.rf_professor").
		Joins("LEFT JOIN estudantes e ON e.registro = r.registro_aluno")
	query = applyReportFilters(query, "r.", filters)
	query = applyPaginationAndSort(query, "r.", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var rows []*models.ReportExportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "list reports for export")
	}
	return rows, nil
}

func (r *reportRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, []string, error) {
	db := pickDB(r.db, tx).WithContext(ctx)

	var photos []string
	if err := db.Model(&models.Report{}).
		Where("foto_path <> ''").
		Pluck("foto_path", &photos).Error; err != nil {
		return 0, nil, handleDBError(err, "collect report photos")
	}

	result := db.Where("id <> ?", 0).Delete(&models.Report{})
	if result.Error != nil {
		return 0, nil, handleDBError(result.Error, "delete all reports")
	}
	return result.RowsAffected, photos, nil
}

type loginLogRepository struct {
	db *gorm.DB
}

func NewLoginLogRepository(db *gorm.DB) repositories.LoginLogRepository {
	return &loginLogRepository{db: db}
}

func (r *loginLogRepository) Create(ctx context.Context, tx *gorm.DB, log *models.LoginLog) error {
	return handleDBError(pickDB(r.db, tx).WithContext(ctx).Create(log).Error, "create login log")
}

// ListRecent returns the newest login rows first, each joined with the
// professor name when the professor still exists.
func (r *loginLogRepository) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LoginLogEntry, error) {
	query := pickDB(r.db, tx).WithContext(ctx).
		Table("logs l").
		Select("l.data_hora AS data_hora, COALESCE(p.nome, '') AS professor, l.rf AS rf").
		Joins("LEFT JOIN professores p ON p.rf = l.rf").
		Order("l.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []*models.LoginLogEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, handleDBError(err, "list login logs")
	}
	return entries, nil
}

func (r *loginLogRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	result := pickDB(r.db, tx).WithContext(ctx).Where("id <> ?", 0).Delete(&models.LoginLog{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete all login logs")
	}
	return result.RowsAffected, nil
}
