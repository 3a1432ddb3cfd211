package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/storage"
	"github.com/aeeconecta/aee-service/internal/validator"
)

// loginTrailSize is how many login rows the trail panel shows.
const loginTrailSize = 50

const defaultReportPageSize = 50

type adminService struct {
	repo          repositories.Repository
	db            *gorm.DB
	sessions      session.Store
	store         storage.ObjectStore
	profileBucket string
	lessonBucket  string
	logger        *slog.Logger
	validator     *validator.Validator
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, sessions session.Store, store storage.ObjectStore,
	profileBucket, lessonBucket string, logger *slog.Logger, validator *validator.Validator) AdminService {
	return &adminService{
		repo:          repo,
		db:            db,
		sessions:      sessions,
		store:         store,
		profileBucket: profileBucket,
		lessonBucket:  lessonBucket,
		logger:        logger,
		validator:     validator,
	}
}

// ===== STUDENTS =====

func (s *adminService) ListStudents(ctx context.Context, sess *session.Session) ([]*models.Student, error) {
	if err := requirePermission(sess, models.PermManageRoster, "student", "list"); err != nil {
		return nil, err
	}
	return s.repo.Student().List(ctx, nil)
}

func (s *adminService) CreateStudent(ctx context.Context, sess *session.Session, req *validator.StudentCreateRequest) (*models.Student, error) {
	if err := requirePermission(sess, models.PermManageRoster, "student", "create"); err != nil {
		return nil, err
	}
	req.Registro = strings.TrimSpace(req.Registro)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student := &models.Student{
		Registro:          req.Registro,
		Aluno:             strings.TrimSpace(req.Aluno),
		Turma:             req.Turma,
		Necessidades:      req.Necessidades,
		DataNascimento:    req.DataNascimento,
		ObservacoesGerais: req.ObservacoesGerais,
	}
	if err := s.repo.Student().Create(ctx, s.db, student); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrStudentExists
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("Student created", "rf", sess.RF, "registro", student.Registro)
	return student, nil
}

func (s *adminService) UpdateStudent(ctx context.Context, sess *session.Session, registro string, req *validator.StudentUpdateRequest) (*models.Student, error) {
	if err := requirePermission(sess, models.PermManageRoster, "student", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByRegistro(ctx, s.db, registro)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}

	if req.Aluno != nil {
		student.Aluno = strings.TrimSpace(*req.Aluno)
	}
	if req.Turma != nil {
		student.Turma = *req.Turma
	}
	if req.Necessidades != nil {
		student.Necessidades = *req.Necessidades
	}
	if req.DataNascimento != nil {
		student.DataNascimento = *req.DataNascimento
	}
	if req.ObservacoesGerais != nil {
		student.ObservacoesGerais = *req.ObservacoesGerais
	}

	if err := s.repo.Student().Update(ctx, s.db, student); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	return student, nil
}

// UploadStudentPhoto stores a new profile photo and drops the previous one.
func (s *adminService) UploadStudentPhoto(ctx context.Context, sess *session.Session, registro string, photo []byte) (*models.Student, error) {
	if err := requirePermission(sess, models.PermManageRoster, "student", "upload photo"); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByRegistro(ctx, s.db, registro)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}

	contentType, ext, err := storage.DetectImage(photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}

	path := storage.ProfilePhotoName(registro, ext)
	if err := s.store.Upload(ctx, s.profileBucket, path, photo, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload profile photo: %w", err)
	}

	previous := student.FotoPath
	student.FotoPath = path
	if err := s.repo.Student().Update(ctx, s.db, student); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	if previous != "" && previous != path {
		s.removeObject(ctx, s.profileBucket, previous)
	}
	return student, nil
}

// DeleteStudent removes the student row and its profile photo. Reports filed
// for the student are kept.
func (s *adminService) DeleteStudent(ctx context.Context, sess *session.Session, registro string) error {
	if err := requirePermission(sess, models.PermManageRoster, "student", "delete"); err != nil {
		return err
	}

	student, err := s.repo.Student().GetByRegistro(ctx, s.db, registro)
	if err != nil {
		return mapNotFound(err, ErrStudentNotFound)
	}
	if err := s.repo.Student().Delete(ctx, s.db, registro); err != nil {
		return mapNotFound(err, ErrStudentNotFound)
	}
	if student.FotoPath != "" {
		s.removeObject(ctx, s.profileBucket, student.FotoPath)
	}

	s.logger.Info("Student deleted", "rf", sess.RF, "registro", registro)
	return nil
}

// ===== PROFESSORS =====

func (s *adminService) ListProfessors(ctx context.Context, sess *session.Session) ([]*models.Professor, error) {
	if err := requirePermission(sess, models.PermManageRoster, "professor", "list"); err != nil {
		return nil, err
	}
	return s.repo.Professor().List(ctx, nil)
}

func (s *adminService) CreateProfessor(ctx context.Context, sess *session.Session, req *validator.ProfessorCreateRequest) (*models.Professor, error) {
	if err := requirePermission(sess, models.PermManageRoster, "professor", "create"); err != nil {
		return nil, err
	}
	req.RF = strings.TrimSpace(req.RF)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	professor := &models.Professor{RF: req.RF, Nome: strings.TrimSpace(req.Nome), Perfil: strings.TrimSpace(req.Perfil)}
	if err := s.repo.Professor().Create(ctx, s.db, professor); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrProfessorExists
		}
		return nil, fmt.Errorf("failed to create professor: %w", err)
	}

	s.logger.Info("Professor created", "rf", sess.RF, "professor_rf", professor.RF)
	return professor, nil
}

func (s *adminService) UpdateProfessor(ctx context.Context, sess *session.Session, rf string, req *validator.ProfessorUpdateRequest) (*models.Professor, error) {
	if err := requirePermission(sess, models.PermManageRoster, "professor", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	professor, err := s.repo.Professor().GetByRF(ctx, s.db, rf)
	if err != nil {
		return nil, mapNotFound(err, ErrProfessorNotFound)
	}
	if req.Nome != nil {
		professor.Nome = strings.TrimSpace(*req.Nome)
	}
	perfilChanged := false
	if req.Perfil != nil {
		perfil := strings.TrimSpace(*req.Perfil)
		perfilChanged = perfil != professor.Perfil
		professor.Perfil = perfil
	}

	if err := s.repo.Professor().Update(ctx, s.db, professor); err != nil {
		return nil, mapNotFound(err, ErrProfessorNotFound)
	}
	if perfilChanged {
		s.revokeSessions(ctx, rf)
	}
	return professor, nil
}

// DeleteProfessor removes the professor and the credential together and ends
// the professor's sessions.
func (s *adminService) DeleteProfessor(ctx context.Context, sess *session.Session, rf string) error {
	if err := requirePermission(sess, models.PermManageRoster, "professor", "delete"); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Professor().Delete(ctx, nil, rf); err != nil {
			return err
		}
		return txRepo.Credential().Delete(ctx, nil, rf)
	})
	if err != nil {
		return mapNotFound(err, ErrProfessorNotFound)
	}
	s.revokeSessions(ctx, rf)

	s.logger.Info("Professor deleted", "rf", sess.RF, "professor_rf", rf)
	return nil
}

// ResetPassword deletes the credential so the professor logs in with the RF
// again. Open sessions of the professor are ended.
func (s *adminService) ResetPassword(ctx context.Context, sess *session.Session, rf string) error {
	if err := requirePermission(sess, models.PermResetPasswords, "credential", "reset"); err != nil {
		return err
	}

	exists, err := s.repo.Professor().ExistsByRF(ctx, s.db, rf)
	if err != nil {
		return fmt.Errorf("failed to check professor: %w", err)
	}
	if !exists {
		return ErrProfessorNotFound
	}

	if err := s.repo.Credential().Delete(ctx, s.db, rf); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	s.revokeSessions(ctx, rf)
	s.logger.Warn("Password reset to RF", "rf", sess.RF, "professor_rf", rf)
	return nil
}

// ===== REPORTS =====

// ListReports pages through every filed report, newest lesson first unless
// another order is asked for.
func (s *adminService) ListReports(ctx context.Context, sess *session.Session, query *validator.ReportListQuery) (*ReportPage, error) {
	if err := requirePermission(sess, models.PermManageRoster, "report", "list"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}

	filters := repositories.ReportFilters{
		Limit:     query.Limit,
		Offset:    query.Offset,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if filters.Limit == 0 {
		filters.Limit = defaultReportPageSize
	}
	if filters.SortBy == "" {
		filters.SortBy = "data"
		if filters.SortOrder == "" {
			filters.SortOrder = "desc"
		}
	}
	if registro := strings.TrimSpace(query.RegistroAluno); registro != "" {
		filters.RegistroAluno = &registro
	}
	if rf := strings.TrimSpace(query.RFProfessor); rf != "" {
		filters.RFProfessor = &rf
	}
	if query.Bimestre != "" {
		filters.Bimestre = &query.Bimestre
	}
	if query.From != "" {
		from, err := time.Parse(isoDate, query.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date: %w", err)
		}
		filters.DateFrom = &from
	}
	if query.To != "" {
		to, err := time.Parse(isoDate, query.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to date: %w", err)
		}
		filters.DateTo = &to
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, validator.ValidationErrors{{Field: "to", Message: "must not be before from", Value: query.To}}
	}

	reports, total, err := s.repo.Report().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return &ReportPage{Reports: reports, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// ===== AUDIT & MAINTENANCE =====

func (s *adminService) LoginLogs(ctx context.Context, sess *session.Session) ([]*models.LoginLogEntry, error) {
	if err := requirePermission(sess, models.PermViewLogs, "logs", "list"); err != nil {
		return nil, err
	}
	return s.repo.LoginLog().ListRecent(ctx, s.db, loginTrailSize)
}

// ResetAll wipes every report and login row. Roster and credentials stay.
func (s *adminService) ResetAll(ctx context.Context, sess *session.Session) (*repositories.ResetResult, error) {
	if err := requirePermission(sess, models.PermResetAll, "system", "reset"); err != nil {
		return nil, err
	}

	result := &repositories.ResetResult{}
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		deleted, photos, err := txRepo.Report().DeleteAll(ctx, nil)
		if err != nil {
			return err
		}
		result.ReportsDeleted = deleted
		result.PhotoPaths = photos

		result.LogsDeleted, err = txRepo.LoginLog().DeleteAll(ctx, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset data: %w", err)
	}

	for _, path := range result.PhotoPaths {
		s.removeObject(ctx, s.lessonBucket, path)
	}

	s.logger.Warn("All reports and login logs deleted", "rf", sess.RF,
		"reports", result.ReportsDeleted, "logs", result.LogsDeleted)
	return result, nil
}

func (s *adminService) revokeSessions(ctx context.Context, rf string) {
	if err := s.sessions.DeleteByRF(ctx, rf); err != nil {
		s.logger.Error("Failed to end professor sessions", "professor_rf", rf, "error", err)
	}
}

func (s *adminService) removeObject(ctx context.Context, bucket, path string) {
	if err := s.store.Remove(ctx, bucket, path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("Failed to remove photo", "bucket", bucket, "path", path, "error", err)
	}
}
