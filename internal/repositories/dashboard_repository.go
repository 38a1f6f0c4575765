package repositories

import (
	"context"

	"gorm.io/gorm"
)

// DashboardRepository interface for dashboard aggregate queries.
// Count maps are keyed by course id; courses without rows are absent.
type DashboardRepository interface {
	PublishedChapterCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)
	EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)
	CertificateCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error)

	// CompletedChapterCounts counts a user's completed published chapters per course
	CompletedChapterCounts(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) (map[string]int64, error)

	// StudentCompletion lists every grantee of a course with completed published chapters and certificate date
	StudentCompletion(ctx context.Context, tx *gorm.DB, courseID string) ([]StudentCompletionData, error)
}
