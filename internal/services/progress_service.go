package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type progressService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
	identity     IdentityService
	certificates CertificateService
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, identity IdentityService, certificates CertificateService) ProgressService {
	return &progressService{
		repo:         repo,
		db:           db,
		logger:       logger,
		validator:    validator,
		cacheManager: cacheManager,
		identity:     identity,
		certificates: certificates,
	}
}

// GetCourseProgress returns 0% for anonymous callers, unknown users and missing or unpublished courses.
// Reaching 100% issues the certificate if it does not exist yet.
func (s *progressService) GetCourseProgress(ctx context.Context, courseID string, identity models.Identity) (*ProgressResult, error) {
	result := &ProgressResult{CourseID: courseID}

	if identity.IsAnonymous() {
		return result, nil
	}

	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("Failed to resolve user for progress", "course_id", courseID, "error", err)
		}
		return result, nil
	}

	course, err := s.repo.Course().GetPublishedByID(ctx, s.db, courseID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Error("Failed to load course for progress", "course_id", courseID, "error", err)
		}
		return result, nil
	}

	chapterIDs, err := s.repo.Chapter().ListPublishedIDs(ctx, s.db, courseID)
	if err != nil {
		s.logger.Error("Failed to list published chapters", "course_id", courseID, "error", err)
		return result, nil
	}
	result.TotalChapters = int64(len(chapterIDs))
	if result.TotalChapters == 0 {
		return result, nil
	}

	completed, err := s.repo.Progress().CountCompleted(ctx, s.db, user.ID, chapterIDs)
	if err != nil {
		s.logger.Error("Failed to count completed chapters", "course_id", courseID, "user_id", user.ID, "error", err)
		return result, nil
	}
	result.CompletedChapters = completed
	result.Percentage = models.ProgressPercentage(completed, result.TotalChapters)

	if completed < result.TotalChapters {
		return result, nil
	}

	issued, err := s.certificates.IssueIfAbsent(ctx, course, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}
	result.Certificate = issued.Certificate
	result.CertificateIssued = issued.Created

	return result, nil
}

// CompleteChapter marks a published chapter as completed for an owner or grantee and returns the new progress
func (s *progressService) CompleteChapter(ctx context.Context, courseID, chapterID string, identity models.Identity) (*ProgressResult, error) {
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetPublishedByID(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if !course.IsOwnedBy(identity) {
		granted, err := s.repo.Access().Exists(ctx, s.db, courseID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check course access: %w", err)
		}
		if !granted {
			return nil, NewPermissionError("course", "complete_chapter", "no access to this course")
		}
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, s.db, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to load chapter: %w", err)
	}
	if errs := s.validator.ValidateChapterCompletion(chapter, courseID); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Progress().MarkCompleted(ctx, s.db, user.ID, chapterID); err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}
	cache.InvalidateProgressStats(ctx, s.cacheManager, user.ID, course.UserID)

	s.logger.Info("Chapter completed", "course_id", courseID, "chapter_id", chapterID, "user_id", user.ID)

	return s.GetCourseProgress(ctx, courseID, identity)
}
