package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/validator"
)

const isoDate = "2006-01-02"

type reportService struct {
	repo         repositories.Repository
	db           *gorm.DB
	store        storage.ObjectStore
	lessonBucket string
	metrics      *metrics.Metrics
	logger       *slog.Logger
	validator    *validator.Validator
	now          func() time.Time
}

func NewReportService(repo repositories.Repository, db *gorm.DB, store storage.ObjectStore, lessonBucket string,
	m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) ReportService {
	return &reportService{
		repo:         repo,
		db:           db,
		store:        store,
		lessonBucket: lessonBucket,
		metrics:      m,
		logger:       logger,
		validator:    validator,
		now:          time.Now,
	}
}

// Create files a lesson report for the session's professor. photo is optional.
func (s *reportService) Create(ctx context.Context, sess *session.Session, req *validator.ReportCreateRequest, photo []byte) (*models.Report, error) {
	if err := requirePermission(sess, models.PermFileReport, "report", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Student().ExistsByRegistro(ctx, s.db, req.RegistroAluno)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !exists {
		return nil, ErrStudentNotFound
	}

	date, err := time.Parse(isoDate, req.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Data, err)
	}

	report := &models.Report{
		Data:           datatypes.Date(date),
		RFProfessor:    sess.RF,
		RegistroAluno:  req.RegistroAluno,
		Bimestre:       req.Bimestre,
		ParticipouAula: req.ParticipouAula,
		DisciplinaTema: req.DisciplinaTema,
		Planejado:      req.Planejado,
		Realizado:      req.Realizado,
		Participacao:   models.JoinParticipation(req.Participacao),
	}
	if report.ParticipouAula == models.ParticipouNao {
		report.MotivoNaoParticipou = req.MotivoNaoParticipou
	}

	if len(photo) > 0 {
		path, err := s.uploadPhoto(ctx, photo)
		if err != nil {
			return nil, err
		}
		report.FotoPath = path
	}

	if err := s.repo.Report().Create(ctx, s.db, report); err != nil {
		if report.FotoPath != "" {
			s.removePhoto(ctx, report.FotoPath)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.metrics.ReportCreated()
	s.logger.Info("Report filed", "id", report.ID, "rf", sess.RF, "registro", report.RegistroAluno, "bimestre", report.Bimestre)
	return report, nil
}

func (s *reportService) uploadPhoto(ctx context.Context, photo []byte) (string, error) {
	contentType, ext, err := storage.DetectImage(photo)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}

	path := storage.LessonPhotoName(s.now(), ext)
	if err := s.store.Upload(ctx, s.lessonBucket, path, photo, contentType); err != nil {
		return "", fmt.Errorf("failed to upload lesson photo: %w", err)
	}
	return path, nil
}

func (s *reportService) removePhoto(ctx context.Context, path string) {
	if err := s.store.Remove(ctx, s.lessonBucket, path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("Failed to remove lesson photo", "path", path, "error", err)
	}
}

func (s *reportService) ListMine(ctx context.Context, sess *session.Session) ([]*models.Report, error) {
	if err := requirePermission(sess, models.PermFileReport, "report", "list"); err != nil {
		return nil, err
	}
	return s.repo.Report().ListByProfessor(ctx, s.db, sess.RF)
}

// loadOwned fetches a report the session may edit: its own, or any report
// for roster managers.
func (s *reportService) loadOwned(ctx context.Context, sess *session.Session, id uint, action string) (*models.Report, error) {
	if err := requirePermission(sess, models.PermFileReport, "report", action); err != nil {
		return nil, err
	}

	report, err := s.repo.Report().GetByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, ErrReportNotFound)
	}
	if report.RFProfessor != sess.RF && !sess.Can(models.PermManageRoster) {
		return nil, NewPermissionError(sess.RF, "report", action, "report belongs to another professor")
	}
	return report, nil
}

func (s *reportService) Update(ctx context.Context, sess *session.Session, id uint, req *validator.ReportUpdateRequest) (*models.Report, error) {
	report, err := s.loadOwned(ctx, sess, id, "update")
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Data != nil {
		date, err := time.Parse(isoDate, *req.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", *req.Data, err)
		}
		report.Data = datatypes.Date(date)
	}
	if req.Bimestre != nil {
		report.Bimestre = *req.Bimestre
	}
	if req.ParticipouAula != nil {
		report.ParticipouAula = *req.ParticipouAula
	}
	if req.MotivoNaoParticipou != nil {
		report.MotivoNaoParticipou = *req.MotivoNaoParticipou
	}
	if req.DisciplinaTema != nil {
		report.DisciplinaTema = *req.DisciplinaTema
	}
	if req.Planejado != nil {
		report.Planejado = *req.Planejado
	}
	if req.Realizado != nil {
		report.Realizado = *req.Realizado
	}
	if req.Participacao != nil {
		report.Participacao = models.JoinParticipation(req.Participacao)
	}
	if report.ParticipouAula != models.ParticipouNao {
		report.MotivoNaoParticipou = ""
	}

	if err := s.repo.Report().Update(ctx, s.db, report); err != nil {
		return nil, mapNotFound(err, ErrReportNotFound)
	}
	return report, nil
}

// Delete removes a report and, best effort, its lesson photo.
func (s *reportService) Delete(ctx context.Context, sess *session.Session, id uint) error {
	report, err := s.loadOwned(ctx, sess, id, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Report().Delete(ctx, s.db, id); err != nil {
		return mapNotFound(err, ErrReportNotFound)
	}
	if report.FotoPath != "" {
		s.removePhoto(ctx, report.FotoPath)
	}
	s.logger.Info("Report deleted", "id", id, "rf", sess.RF)
	return nil
}
