package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aeeconecta/aee-service/internal/models"
)

// State is the authentication state of a session.
type State string

const (
	StateLoggedOut           State = "logged_out"
	StateAwaitingPasswordSet State = "awaiting_password_set"
	StateLoggedIn            State = "logged_in"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionState = errors.New("invalid session state")
)

// Session is the server-side state bound to a bearer token.
type Session struct {
	Token     string          `json:"token"`
	State     State           `json:"state"`
	RF        string          `json:"rf"`
	Nome      string          `json:"nome"`
	Perfil    string          `json:"perfil"`
	Role      models.UserRole `json:"role,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// New returns a logged-out session with a fresh token.
func New() *Session {
	return &Session{
		Token:     uuid.NewString(),
		State:     StateLoggedOut,
		CreatedAt: time.Now(),
	}
}

// AwaitPasswordSet moves a logged-out session into the first-access state.
func (s *Session) AwaitPasswordSet(rf string) error {
	if s.State != StateLoggedOut {
		return ErrInvalidSessionState
	}
	s.State = StateAwaitingPasswordSet
	s.RF = rf
	s.Nome = ""
	s.Perfil = ""
	s.Role = ""
	return nil
}

// LogIn completes authentication. Allowed from LoggedOut (password login) and
// AwaitingPasswordSet (after the first password was chosen for the same RF).
func (s *Session) LogIn(professor *models.Professor) error {
	switch s.State {
	case StateLoggedOut:
	case StateAwaitingPasswordSet:
		if s.RF != professor.RF {
			return ErrInvalidSessionState
		}
	default:
		return ErrInvalidSessionState
	}

	s.State = StateLoggedIn
	s.RF = professor.RF
	s.Nome = professor.Nome
	s.Perfil = professor.Perfil
	s.Role = models.RoleFromPerfil(professor.Perfil)
	return nil
}

func (s *Session) IsLoggedIn() bool {
	return s.State == StateLoggedIn
}

func (s *Session) AwaitingPasswordSet() bool {
	return s.State == StateAwaitingPasswordSet
}

// Can reports whether the session is logged in with a role granting p.
func (s *Session) Can(p models.Permission) bool {
	return s.IsLoggedIn() && s.Role.Can(p)
}

// Store persists sessions by token.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteByRF drops every session opened for rf.
	DeleteByRF(ctx context.Context, rf string) error
}
