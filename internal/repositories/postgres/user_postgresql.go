package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err, "failed to get user")
	}
	return &user, nil
}

// GetByAuthID resolves the identity-provider subject with caching
func (u *UserPostgreSQL) GetByAuthID(ctx context.Context, tx *gorm.DB, authID string) (*models.User, error) {
	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, fmt.Sprintf("auth:%s", authID), &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.getDB(tx).WithContext(ctx).Where("auth_id = ?", authID).First(&dbUser).Error; err != nil {
			return nil, translateError(err, "failed to get user by auth id")
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	var users []*models.User
	if err := u.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translateError(err, "failed to get users")
	}
	return users, nil
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, "failed to create user")
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.AuthID)
	return nil
}
