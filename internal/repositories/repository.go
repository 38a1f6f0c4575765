package repositories

import "context"

// Repository aggregates every repository the learning service uses
type Repository interface {
	// Identity
	User() UserRepository

	// Catalog
	Category() CategoryRepository
	Course() CourseRepository
	Chapter() ChapterRepository

	// Enrolment and completion
	Access() AccessRepository
	Progress() ProgressRepository
	Certificate() CertificateRepository

	// Dashboard aggregates
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
