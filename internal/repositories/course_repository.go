package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// CategoryRepository interface for course categories
type CategoryRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)
}

// CourseRepository interface for course operations
type CourseRepository interface {
	// GetByID loads a course with its owner regardless of publication state
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	// GetPublishedByID loads a published course with its owner
	GetPublishedByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)

	// ListPublished returns published courses with category, owner and published chapter ids ordered by position
	ListPublished(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, error)
	CountPublished(ctx context.Context, tx *gorm.DB, search string) (int64, error)

	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Course, error)
}

// ChapterRepository interface for chapter operations
type ChapterRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Chapter, error)
	// ListPublishedIDs returns published chapter ids of a course ordered by position
	ListPublishedIDs(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error)
}
