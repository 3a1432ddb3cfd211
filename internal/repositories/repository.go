package repositories

import "context"

// Repository aggregates the repositories over the five logical tables.
type Repository interface {
	Professor() ProfessorRepository
	Student() StudentRepository
	Credential() CredentialRepository
	Report() ReportRepository
	LoginLog() LoginLogRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
