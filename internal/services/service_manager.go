package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/reporting"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators shared by the services
type ServiceManagerConfig struct {
	CacheManager *cache.CacheManager
	Notifier     CompletionNotifier
	Reporter     reporting.ErrorReporter
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	identityService    IdentityService
	accessService      AccessService
	catalogService     CatalogService
	progressService    ProgressService
	certificateService CertificateService
	dashboardService   DashboardService
	reportService      ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.CacheManager == nil {
		config.CacheManager = cache.NewCacheManager(nil)
	}
	if config.Reporter == nil {
		config.Reporter = reporting.NewSlogReporter(logger)
	}

	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.identityService = NewIdentityService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.accessService = NewAccessService(sm.repo, sm.db, sm.logger, sm.identityService)
	sm.catalogService = NewCatalogService(sm.repo, sm.db, sm.logger, sm.config.CacheManager, sm.identityService)
	sm.certificateService = NewCertificateService(sm.repo, sm.db, sm.logger, sm.identityService, sm.config.Notifier, sm.config.Reporter)
	sm.progressService = NewProgressService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.CacheManager, sm.identityService, sm.certificateService)
	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger, sm.config.CacheManager, sm.identityService)
	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger, sm.identityService)

	if sm.config.Notifier == nil {
		sm.logger.Warn("No completion notifier configured, certificates will be issued without email")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Identity() IdentityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.identityService
}

func (sm *serviceManager) Access() AccessService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.accessService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.catalogService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.progressService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.certificateService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.reportService
}

// Health and lifecycle
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

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
