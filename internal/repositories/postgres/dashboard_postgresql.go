package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== PER-COURSE COUNTS =====

func (r *dashboardRepository) PublishedChapterCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}

	var rows []countRow
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Chapter{}).
		Select("course_id AS key, COUNT(*) AS count").
		Where("course_id IN ? AND is_published = ?", courseIDs, true).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count published chapters: %w", err)
	}

	return rowsToMap(rows), nil
}

func (r *dashboardRepository) EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}

	var rows []countRow
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Access{}).
		Select("course_id AS key, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return rowsToMap(rows), nil
}

func (r *dashboardRepository) CertificateCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}

	var rows []countRow
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Certificate{}).
		Select("course_id AS key, COUNT(*) AS count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}

	return rowsToMap(rows), nil
}

// ===== PER-USER COMPLETION =====

func (r *dashboardRepository) CompletedChapterCounts(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}

	var rows []countRow
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Progress{}).
		Select("chapters.course_id AS key, COUNT(*) AS count").
		Joins("JOIN chapters ON chapters.id = progresses.chapter_id").
		Where("progresses.user_id = ? AND progresses.status = ?", userID, models.ProgressCompleted).
		Where("chapters.course_id IN ? AND chapters.is_published = ?", courseIDs, true).
		Group("chapters.course_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed chapters: %w", err)
	}

	return rowsToMap(rows), nil
}

func (r *dashboardRepository) StudentCompletion(ctx context.Context, tx *gorm.DB, courseID string) ([]repositories.StudentCompletionData, error) {
	completed := r.getDB(tx).
		Model(&models.Progress{}).
		Select("progresses.user_id, COUNT(*) AS completed").
		Joins("JOIN chapters ON chapters.id = progresses.chapter_id").
		Where("chapters.course_id = ? AND chapters.is_published = ? AND progresses.status = ?",
			courseID, true, models.ProgressCompleted).
		Group("progresses.user_id")

	var results []repositories.StudentCompletionData
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Access{}).
		Select("users.id AS user_id, users.name, users.email, "+
			"COALESCE(done.completed, 0) AS completed_chapters, "+
			"certificates.created_at AS certified_at").
		Joins("JOIN users ON users.id = accesses.user_id").
		Joins("LEFT JOIN (?) AS done ON done.user_id = accesses.user_id", completed).
		Joins("LEFT JOIN certificates ON certificates.user_id = accesses.user_id AND certificates.course_id = accesses.course_id").
		Where("accesses.course_id = ?", courseID).
		Order("users.email ASC").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get student completion: %w", err)
	}

	return results, nil
}
