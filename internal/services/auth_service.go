package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/metrics"
	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	sessions  session.Store
	publisher LoginPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, sessions session.Store, publisher LoginPublisher,
	m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		sessions:  sessions,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Login checks the RF and password. Failures never create a session.
func (s *authService) Login(ctx context.Context, req *validator.LoginRequest) (*session.Session, error) {
	rf := strings.TrimSpace(req.RF)
	if err := s.validator.Validate(&validator.LoginRequest{RF: rf, Password: req.Password}); err != nil {
		return nil, err
	}

	professor, err := s.repo.Professor().GetByRF(ctx, s.db, rf)
	if errors.Is(err, repositories.ErrNotFound) {
		professor, err = s.bootstrap(ctx, rf, req.Password)
	}
	if err != nil {
		return nil, err
	}

	credential, err := s.repo.Credential().GetByRF(ctx, s.db, rf)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.firstAccess(ctx, rf, req.Password)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if !passwordMatches(req.Password, credential.SenhaHash) {
		s.metrics.Login(metrics.OutcomeWrongPassword)
		s.logger.Info("Login rejected", "rf", rf, "reason", "wrong password")
		return nil, ErrInvalidPassword
	}

	sess := session.New()
	if err := sess.LogIn(professor); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.Login(metrics.OutcomeSuccess)
	s.recordLogin(ctx, rf)
	s.logger.Info("Professor logged in", "rf", rf, "role", sess.Role)
	return sess, nil
}

// bootstrap registers the first professor of an empty roster as administrator.
// It only fires for a first-access attempt, i.e. when the password equals the RF.
func (s *authService) bootstrap(ctx context.Context, rf, password string) (*models.Professor, error) {
	var professor *models.Professor
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		count, err := txRepo.Professor().Count(ctx, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUnknownRF
		}
		if password != rf {
			return ErrFirstAccess
		}

		professor = &models.Professor{RF: rf, Nome: rf, Perfil: models.BootstrapPerfil}
		return txRepo.Professor().Create(ctx, nil, professor)
	})
	if err != nil {
		if errors.Is(err, ErrUnknownRF) {
			s.metrics.Login(metrics.OutcomeUnknownRF)
			s.logger.Info("Login rejected", "rf", rf, "reason", "unknown rf")
			return nil, ErrUnknownRF
		}
		if errors.Is(err, ErrFirstAccess) {
			s.metrics.Login(metrics.OutcomePasswordNeeded)
			return nil, ErrFirstAccess
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.repo.Professor().GetByRF(ctx, s.db, rf)
		}
		return nil, fmt.Errorf("failed to bootstrap administrator: %w", err)
	}

	s.metrics.Login(metrics.OutcomeBootstrap)
	s.logger.Warn("Empty roster: registered first professor as administrator", "rf", rf)
	return professor, nil
}

func (s *authService) firstAccess(ctx context.Context, rf, password string) (*session.Session, error) {
	if password != rf {
		s.metrics.Login(metrics.OutcomePasswordNeeded)
		return nil, ErrFirstAccess
	}

	sess := session.New()
	if err := sess.AwaitPasswordSet(rf); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.Login(metrics.OutcomeFirstAccess)
	s.logger.Info("First access, awaiting password", "rf", rf)
	return sess, nil
}

// SetPassword stores the first password of a professor and completes login.
func (s *authService) SetPassword(ctx context.Context, token string, req *validator.SetPasswordRequest) (*session.Session, error) {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.AwaitingPasswordSet() {
		return nil, session.ErrInvalidSessionState
	}
	if err := ValidateNewPassword(req.NewPassword, req.Confirm); err != nil {
		return nil, err
	}

	professor, err := s.repo.Professor().GetByRF(ctx, s.db, sess.RF)
	if err != nil {
		return nil, mapNotFound(err, ErrUnknownRF)
	}

	credential := &models.Credential{RF: sess.RF, SenhaHash: HashPassword(req.NewPassword)}
	if err := s.repo.Credential().Upsert(ctx, s.db, credential); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	if err := sess.LogIn(professor); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.Login(metrics.OutcomeSuccess)
	s.recordLogin(ctx, sess.RF)
	s.logger.Info("First password set", "rf", sess.RF)
	return sess, nil
}

// ChangePassword replaces the password of a logged-in professor.
func (s *authService) ChangePassword(ctx context.Context, token string, req *validator.ChangePasswordRequest) error {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if !sess.IsLoggedIn() {
		return session.ErrInvalidSessionState
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	credential, err := s.repo.Credential().GetByRF(ctx, s.db, sess.RF)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		// reset by an administrator while logged in
		if req.CurrentPassword != sess.RF {
			return ErrInvalidPassword
		}
	case err != nil:
		return fmt.Errorf("failed to load credential: %w", err)
	case !passwordMatches(req.CurrentPassword, credential.SenhaHash):
		return ErrInvalidPassword
	}

	if err := ValidateNewPassword(req.NewPassword, req.Confirm); err != nil {
		return err
	}

	if err := s.repo.Credential().Upsert(ctx, s.db, &models.Credential{RF: sess.RF, SenhaHash: HashPassword(req.NewPassword)}); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	s.logger.Info("Password changed", "rf", sess.RF)
	return nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its session.
func (s *authService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// recordLogin publishes the audit event. Failures are logged only.
func (s *authService) recordLogin(ctx context.Context, rf string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLogin(ctx, rf, s.now()); err != nil {
		s.logger.Error("Failed to publish login event", "rf", rf, "error", err)
	}
}
