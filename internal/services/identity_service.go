package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type identityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewIdentityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) IdentityService {
	return &identityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *identityService) Resolve(ctx context.Context, identity models.Identity) (*models.User, error) {
	if identity.IsAnonymous() {
		return nil, ErrAnonymous
	}

	user, err := s.repo.User().GetByAuthID(ctx, s.db, identity.AuthID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return user, nil
}

type syncProfile struct {
	AuthID string `validate:"required,max=255"`
	Email  string `validate:"required,email,max=255"`
	Name   string `validate:"max=100"`
	Role   string `validate:"omitempty,user_role"`
}

func (s *identityService) Sync(ctx context.Context, profile models.ExternalProfile) (*models.User, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Name = strings.TrimSpace(profile.Name)

	if err := s.validator.ValidateStruct(syncProfile{
		AuthID: profile.AuthID,
		Email:  profile.Email,
		Name:   profile.Name,
		Role:   string(profile.Role),
	}); err != nil {
		return nil, err
	}

	user, err := s.Resolve(ctx, models.Identity{AuthID: profile.AuthID})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		AuthID: profile.AuthID,
		Email:  profile.Email,
		Role:   profile.Role,
	}
	if profile.Name != "" {
		user.Name = &profile.Name
	}
	if profile.ProfilePic != "" {
		user.ProfilePic = &profile.ProfilePic
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// a concurrent request created the same subject first
		existing, resolveErr := s.Resolve(ctx, models.Identity{AuthID: profile.AuthID})
		if resolveErr != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return existing, nil
	}

	s.logger.Info("User created from identity provider", "user_id", user.ID, "role", user.Role)
	return user, nil
}
