package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/documents"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
)

type rosterService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewRosterService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) RosterService {
	return &rosterService{repo: repo, db: db, logger: logger}
}

// ListProfessors returns the cached professor list, or an empty list when the
// database cannot be read.
func (s *rosterService) ListProfessors(ctx context.Context) []*models.Professor {
	professors, err := s.repo.Professor().List(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to load professors", "error", err)
		return []*models.Professor{}
	}
	return professors
}

// ListStudents returns the cached student list, or an empty list when the
// database cannot be read.
func (s *rosterService) ListStudents(ctx context.Context) []*models.Student {
	students, err := s.repo.Student().List(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to load students", "error", err)
		return []*models.Student{}
	}
	return students
}

func (s *rosterService) GetStudent(ctx context.Context, registro string) (*models.Student, error) {
	student, err := s.repo.Student().GetByRegistro(ctx, s.db, registro)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	return student, nil
}

// ImportRoster upserts every professor and student of a roster workbook in
// one transaction.
func (s *rosterService) ImportRoster(ctx context.Context, sess *session.Session, r io.Reader) (*ImportResult, error) {
	if err := requirePermission(sess, models.PermManageRoster, "roster", "import"); err != nil {
		return nil, err
	}

	roster, err := documents.ParseRoster(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, p := range roster.Professors {
			if err := tx.Professor().Upsert(ctx, nil, p); err != nil {
				return fmt.Errorf("professor %s: %w", p.RF, err)
			}
		}
		for _, st := range roster.Students {
			if err := tx.Student().Upsert(ctx, nil, st); err != nil {
				return fmt.Errorf("student %s: %w", st.Registro, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import roster: %w", err)
	}

	result := &ImportResult{Professors: len(roster.Professors), Students: len(roster.Students)}
	s.logger.Info("Roster imported", "rf", sess.RF, "professors", result.Professors, "students", result.Students)
	return result, nil
}
