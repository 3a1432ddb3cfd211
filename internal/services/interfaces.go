package services

import (
	"context"
	"io"
	"time"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/repositories"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/validator"
)

// LoginPublisher announces successful logins to the audit trail.
type LoginPublisher interface {
	PublishLogin(ctx context.Context, rf string, at time.Time) error
}

// AuthService drives the login state machine.
type AuthService interface {
	Login(ctx context.Context, req *validator.LoginRequest) (*session.Session, error)
	SetPassword(ctx context.Context, token string, req *validator.SetPasswordRequest) (*session.Session, error)
	ChangePassword(ctx context.Context, token string, req *validator.ChangePasswordRequest) error
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// RosterService reads the professor and student lists.
type RosterService interface {
	ListProfessors(ctx context.Context) []*models.Professor
	ListStudents(ctx context.Context) []*models.Student
	GetStudent(ctx context.Context, registro string) (*models.Student, error)
	ImportRoster(ctx context.Context, sess *session.Session, r io.Reader) (*ImportResult, error)
}

// ReportService files and maintains lesson reports.
type ReportService interface {
	Create(ctx context.Context, sess *session.Session, req *validator.ReportCreateRequest, photo []byte) (*models.Report, error)
	ListMine(ctx context.Context, sess *session.Session) ([]*models.Report, error)
	Update(ctx context.Context, sess *session.Session, id uint, req *validator.ReportUpdateRequest) (*models.Report, error)
	Delete(ctx context.Context, sess *session.Session, id uint) error
}

// DocumentService renders downloads for the management panel.
type DocumentService interface {
	CoverSheet(ctx context.Context, sess *session.Session, registro string) (*Document, error)
	Dossier(ctx context.Context, sess *session.Session, registro, bimestre string) (*Document, error)
	ExportReports(ctx context.Context, sess *session.Session, bimestre string) (*Document, error)
}

// AdminService backs the privileged panels.
type AdminService interface {
	ListStudents(ctx context.Context, sess *session.Session) ([]*models.Student, error)
	CreateStudent(ctx context.Context, sess *session.Session, req *validator.StudentCreateRequest) (*models.Student, error)
	UpdateStudent(ctx context.Context, sess *session.Session, registro string, req *validator.StudentUpdateRequest) (*models.Student, error)
	UploadStudentPhoto(ctx context.Context, sess *session.Session, registro string, photo []byte) (*models.Student, error)
	DeleteStudent(ctx context.Context, sess *session.Session, registro string) error

	ListProfessors(ctx context.Context, sess *session.Session) ([]*models.Professor, error)
	CreateProfessor(ctx context.Context, sess *session.Session, req *validator.ProfessorCreateRequest) (*models.Professor, error)
	UpdateProfessor(ctx context.Context, sess *session.Session, rf string, req *validator.ProfessorUpdateRequest) (*models.Professor, error)
	DeleteProfessor(ctx context.Context, sess *session.Session, rf string) error
	ResetPassword(ctx context.Context, sess *session.Session, rf string) error

	ListReports(ctx context.Context, sess *session.Session, query *validator.ReportListQuery) (*ReportPage, error)
	LoginLogs(ctx context.Context, sess *session.Session) ([]*models.LoginLogEntry, error)
	ResetAll(ctx context.Context, sess *session.Session) (*repositories.ResetResult, error)
}

// ServiceManager owns the service instances.
type ServiceManager interface {
	Auth() AuthService
	Roster() RosterService
	Reports() ReportService
	Documents() DocumentService
	Admin() AdminService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Document is a rendered download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportPage is one page of the report listing.
type ReportPage struct {
	Reports []*models.Report `json:"reports"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ImportResult counts the rows upserted by a roster import.
type ImportResult struct {
	Professors int `json:"professors"`
	Students   int `json:"students"`
}
