package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type catalogService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	cacheManager *cache.CacheManager
	identity     IdentityService
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager, identity IdentityService) CatalogService {
	return &catalogService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
		identity:     identity,
	}
}

// ListCourses degrades to an empty page when the store fails
func (s *catalogService) ListCourses(ctx context.Context, query models.CatalogQuery) ([]*models.CatalogCourse, error) {
	query = query.Normalize()

	courses, err := s.repo.Course().ListPublished(ctx, s.db, repositories.CourseFilters{
		Search: query.Search,
		Limit:  query.PageSize,
		Offset: query.Offset(),
	})
	if err != nil {
		s.logger.Error("Failed to list catalog courses", "search", query.Search, "page", query.Page, "error", err)
		return []*models.CatalogCourse{}, nil
	}

	items := make([]*models.CatalogCourse, 0, len(courses))
	for _, course := range courses {
		items = append(items, models.NewCatalogCourse(course))
	}
	return items, nil
}

func (s *catalogService) CountCourses(ctx context.Context, search string) (int64, error) {
	total, err := s.repo.Course().CountPublished(ctx, s.db, search)
	if err != nil {
		s.logger.Error("Failed to count catalog courses", "search", search, "error", err)
		return 0, nil
	}
	return total, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return []*models.Category{}, nil
	}
	return categories, nil
}

func (s *catalogService) RefreshCache(ctx context.Context, identity models.Identity) error {
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return err
	}
	if user.Role != models.RoleTeacher {
		return NewPermissionError("catalog", "refresh", "only teachers can refresh the catalog")
	}

	if err := cache.InvalidateCatalogCache(ctx, s.cacheManager); err != nil {
		return fmt.Errorf("failed to refresh catalog cache: %w", err)
	}

	s.logger.Info("Catalog cache refreshed", "user_id", user.ID)
	return nil
}
