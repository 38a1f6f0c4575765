package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// AccessRepository interface for course access grants
type AccessRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, courseID, userID string) (bool, error)
	// ListByUser returns the user's grants with course, course owner and category loaded
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Access, error)
}

// ProgressRepository interface for chapter completion records
type ProgressRepository interface {
	// CountCompleted counts COMPLETED rows of the user among chapterIDs
	CountCompleted(ctx context.Context, tx *gorm.DB, userID string, chapterIDs []string) (int64, error)
	// MarkCompleted upserts the (user, chapter) row with status COMPLETED
	MarkCompleted(ctx context.Context, tx *gorm.DB, userID, chapterID string) error
}

// CertificateRepository interface for issued certificates
type CertificateRepository interface {
	// GetByCourseAndUser returns ErrRecordNotFound when no certificate exists
	GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID string) (*models.Certificate, error)
	// Create returns an error matching IsDuplicateError when the pair already holds a certificate
	Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Certificate, error)
}
