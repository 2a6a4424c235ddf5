package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/cache"
	"github.com/studyhive/studyhub-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	material   repositories.MaterialRepository
	document   repositories.DocumentRepository
	examResult repositories.ExamResultRepository
	post       repositories.PostRepository
	comment    repositories.CommentRepository
	profile    repositories.ProfileRepository
	activity   repositories.ActivityRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	// Initialize sub-repositories with caching
	repo.material = NewMaterialPostgreSQL(config.DB, config.RedisClient)
	repo.document = NewDocumentPostgreSQL(config.DB, config.RedisClient)
	repo.examResult = NewExamResultPostgreSQL(config.DB, config.RedisClient)
	repo.post = NewPostPostgreSQL(config.DB, config.RedisClient)
	repo.comment = NewCommentPostgreSQL(config.DB)
	repo.profile = NewProfilePostgreSQL(config.DB, config.RedisClient)
	repo.activity = NewActivityPostgreSQL(config.DB)

	return repo
}

// Material returns the study material repository
func (r *PostgreSQLRepository) Material() repositories.MaterialRepository {
	return r.material
}

// Document returns the document repository
func (r *PostgreSQLRepository) Document() repositories.DocumentRepository {
	return r.document
}

// ExamResult returns the exam result repository
func (r *PostgreSQLRepository) ExamResult() repositories.ExamResultRepository {
	return r.examResult
}

// Post returns the community post repository
func (r *PostgreSQLRepository) Post() repositories.PostRepository {
	return r.post
}

// Comment returns the post comment repository
func (r *PostgreSQLRepository) Comment() repositories.CommentRepository {
	return r.comment
}

// Profile returns the profile repository
func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository {
	return r.profile
}

// Activity returns the activity history repository
func (r *PostgreSQLRepository) Activity() repositories.ActivityRepository {
	return r.activity
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Create a new repository instance bound to the transaction
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.material = NewMaterialPostgreSQL(tx, r.redisClient)
		txRepo.document = NewDocumentPostgreSQL(tx, r.redisClient)
		txRepo.examResult = NewExamResultPostgreSQL(tx, r.redisClient)
		txRepo.post = NewPostPostgreSQL(tx, r.redisClient)
		txRepo.comment = NewCommentPostgreSQL(tx)
		txRepo.profile = NewProfilePostgreSQL(tx, r.redisClient)
		txRepo.activity = NewActivityPostgreSQL(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// ClearOwnerCache drops all cached reads for one owner. Account removal
// calls this after the owner's rows are gone.
func (r *PostgreSQLRepository) ClearOwnerCache(ctx context.Context, ownerID string) error {
	if r.cacheManager == nil {
		return nil
	}

	return r.cacheManager.InvalidateOwner(ctx, ownerID)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
