package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	catalogTTL   time.Duration
}

// NewCoursePostgreSQL caches catalog reads for catalogTTL, or the catalog default when zero
func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client, catalogTTL time.Duration) repositories.CourseRepository {
	if catalogTTL <= 0 {
		catalogTTL = cache.CatalogCacheConfig.TTL
	}
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
		catalogTTL:   catalogTTL,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	err := r.getDB(tx).WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, translateError(err, "failed to get course")
	}
	return &course, nil
}

func (r *CoursePostgreSQL) GetPublishedByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	err := r.getDB(tx).WithContext(ctx).
		Preload("Owner").
		Where("id = ? AND is_published = ?", id, true).
		First(&course).Error
	if err != nil {
		return nil, translateError(err, "failed to get published course")
	}
	return &course, nil
}

// ListPublished returns one catalog page. Pages are cached per (search, limit, offset).
func (r *CoursePostgreSQL) ListPublished(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	cacheKey := fmt.Sprintf("list:%s:%d:%d", strings.ToLower(strings.TrimSpace(filters.Search)), filters.Limit, filters.Offset)

	var courses []*models.Course
	err := r.cacheManager.Catalog.CacheOrExecute(ctx, cacheKey, &courses, r.catalogTTL, func() (interface{}, error) {
		var dbCourses []*models.Course

		query := r.getDB(tx).WithContext(ctx).
			Model(&models.Course{}).
			Select("courses.*")
		query = r.helpers.ApplyCatalogSearch(query, filters.Search)
		query = query.
			Preload("Category").
			Preload("Owner").
			Preload("Chapters", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "course_id", "position").
					Where("is_published = ?", true).
					Order("position ASC")
			}).
			Order("courses.created_at DESC").
			Order("courses.id ASC")
		query = r.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

		if err := query.Find(&dbCourses).Error; err != nil {
			return nil, translateError(err, "failed to list published courses")
		}
		return dbCourses, nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *CoursePostgreSQL) CountPublished(ctx context.Context, tx *gorm.DB, search string) (int64, error) {
	cacheKey := fmt.Sprintf("count:%s", strings.ToLower(strings.TrimSpace(search)))

	var total int64
	err := r.cacheManager.Catalog.CacheOrExecute(ctx, cacheKey, &total, r.catalogTTL, func() (interface{}, error) {
		var count int64
		query := r.helpers.ApplyCatalogSearch(r.getDB(tx).WithContext(ctx).Model(&models.Course{}), search)
		if err := query.Count(&count).Error; err != nil {
			return nil, translateError(err, "failed to count published courses")
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *CoursePostgreSQL) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.getDB(tx).WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, translateError(err, "failed to list owner courses")
	}
	return courses, nil
}

type CategoryPostgreSQL struct {
	db *gorm.DB
}

func NewCategoryPostgreSQL(db *gorm.DB) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db}
}

func (r *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var categories []*models.Category
	if err := db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, translateError(err, "failed to list categories")
	}
	return categories, nil
}

type ChapterPostgreSQL struct {
	db *gorm.DB
}

func NewChapterPostgreSQL(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterPostgreSQL{db: db}
}

func (r *ChapterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&chapter).Error; err != nil {
		return nil, translateError(err, "failed to get chapter")
	}
	return &chapter, nil
}

func (r *ChapterPostgreSQL) ListPublishedIDs(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error) {
	var ids []string
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Chapter{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, translateError(err, "failed to list published chapters")
	}
	return ids, nil
}
