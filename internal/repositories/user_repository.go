package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// UserRepository interface for user operations
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	// GetByAuthID resolves an identity-provider subject; ErrRecordNotFound when unknown
	GetByAuthID(ctx context.Context, tx *gorm.DB, authID string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)

	// Create inserts a user; ErrDuplicate when the auth id or email is taken
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
}
