package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/studyhub-service/internal/events"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/storage"
	"github.com/studyhive/studyhub-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	DefaultTimeout time.Duration
	CacheTTL       time.Duration
}

// serviceManager implements ServiceManager
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	bucket    storage.BucketService
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	materialService   MaterialService
	documentService   DocumentService
	examResultService ExamResultService
	communityService  CommunityService
	activityService   ActivityService
	profileService    ProfileService
	exportService     ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, bucket storage.BucketService, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		bucket:    bucket,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, bucket storage.BucketService, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		DefaultTimeout: 30 * time.Second,
		CacheTTL:       5 * time.Minute,
	}
	return NewServiceManager(db, repo, logger, validator, bucket, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.materialService = NewMaterialService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.documentService = NewDocumentService(sm.repo, sm.db, sm.logger, sm.validator, sm.bucket, sm.publisher)
	sm.examResultService = NewExamResultService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.communityService = NewCommunityService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.activityService = NewActivityService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.profileService = NewProfileService(sm.repo, sm.db, sm.logger, sm.validator, sm.bucket, sm.publisher)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized")

	return nil
}

func (sm *serviceManager) Material() MaterialService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.materialService
}

func (sm *serviceManager) Document() DocumentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.documentService
}

func (sm *serviceManager) ExamResult() ExamResultService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.examResultService
}

func (sm *serviceManager) Community() CommunityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.communityService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.activityService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.profileService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// HealthCheck verifies the backing stores are reachable
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown releases service resources
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if sm.bucket != nil {
		if err := sm.bucket.Close(); err != nil {
			sm.logger.Error("Failed to close bucket client", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
