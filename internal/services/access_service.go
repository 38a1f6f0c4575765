package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type accessService struct {
	repo     repositories.Repository
	db       *gorm.DB
	logger   *slog.Logger
	identity IdentityService
}

func NewAccessService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, identity IdentityService) AccessService {
	return &accessService{
		repo:     repo,
		db:       db,
		logger:   logger,
		identity: identity,
	}
}

// Evaluate never fails: a missing course or an unreachable store yields the all-false shape
func (s *accessService) Evaluate(ctx context.Context, courseID string, identity models.Identity) (*models.AccessResult, error) {
	result := &models.AccessResult{}

	course, err := s.repo.Course().GetByID(ctx, s.db, courseID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Error("Failed to load course for access check", "course_id", courseID, "error", err)
		}
		return result, nil
	}
	result.CourseFound = true

	if course.IsOwnedBy(identity) {
		result.IsOwner = true
		return result, nil
	}

	if identity.IsAnonymous() {
		result.IsAnonymousVisitor = true
		return result, nil
	}

	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("Failed to resolve user for access check", "course_id", courseID, "error", err)
		}
		return result, nil
	}

	granted, err := s.repo.Access().Exists(ctx, s.db, courseID, user.ID)
	if err != nil {
		s.logger.Error("Failed to check course access", "course_id", courseID, "user_id", user.ID, "error", err)
		return result, nil
	}
	result.HasGrantedAccess = granted

	return result, nil
}
