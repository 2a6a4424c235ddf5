package repositories

import "context"

// Repository aggregates all per-resource repositories behind one handle.
type Repository interface {
	// Study domain
	Material() MaterialRepository
	Document() DocumentRepository
	ExamResult() ExamResultRepository

	// Community domain
	Post() PostRepository
	Comment() CommentRepository

	// User domain
	Profile() ProfileRepository
	Activity() ActivityRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Cache maintenance on account removal
	ClearOwnerCache(ctx context.Context, ownerID string) error

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
