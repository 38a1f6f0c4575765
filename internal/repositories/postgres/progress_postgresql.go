package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type AccessPostgreSQL struct {
	db *gorm.DB
}

func NewAccessPostgreSQL(db *gorm.DB) repositories.AccessRepository {
	return &AccessPostgreSQL{db: db}
}

func (r *AccessPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *AccessPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, courseID, userID string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Access{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "failed to check course access")
	}
	return count > 0, nil
}

func (r *AccessPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Access, error) {
	var accesses []*models.Access
	err := r.getDB(tx).WithContext(ctx).
		Preload("Course").
		Preload("Course.Owner").
		Preload("Course.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&accesses).Error
	if err != nil {
		return nil, translateError(err, "failed to list user accesses")
	}
	return accesses, nil
}

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (r *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ProgressPostgreSQL) CountCompleted(ctx context.Context, tx *gorm.DB, userID string, chapterIDs []string) (int64, error) {
	if len(chapterIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.Progress{}).
		Where("user_id = ? AND chapter_id IN ? AND status = ?", userID, chapterIDs, models.ProgressCompleted).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err, "failed to count completed chapters")
	}
	return count, nil
}

func (r *ProgressPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, userID, chapterID string) error {
	progress := &models.Progress{
		UserID:    userID,
		ChapterID: chapterID,
		Status:    models.ProgressCompleted,
	}

	err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     models.ProgressCompleted,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(progress).Error
	return translateError(err, "failed to mark chapter completed")
}

type CertificatePostgreSQL struct {
	db *gorm.DB
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &CertificatePostgreSQL{db: db}
}

func (r *CertificatePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *CertificatePostgreSQL) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.getDB(tx).WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&certificate).Error
	if err != nil {
		return nil, translateError(err, "failed to get certificate")
	}
	return &certificate, nil
}

// Create relies on idx_certificate_course_user to reject a second certificate for the pair
func (r *CertificatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	err := r.getDB(tx).WithContext(ctx).Create(certificate).Error
	return translateError(err, "failed to create certificate")
}

func (r *CertificatePostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Certificate, error) {
	var certificates []*models.Certificate
	err := r.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&certificates).Error
	if err != nil {
		return nil, translateError(err, "failed to list certificates")
	}
	return certificates, nil
}
