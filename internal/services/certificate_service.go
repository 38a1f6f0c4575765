package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/reporting"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

type certificateService struct {
	repo     repositories.Repository
	db       *gorm.DB
	logger   *slog.Logger
	identity IdentityService
	notifier CompletionNotifier
	reporter reporting.ErrorReporter
}

func NewCertificateService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, identity IdentityService, notifier CompletionNotifier, reporter reporting.ErrorReporter) CertificateService {
	return &certificateService{
		repo:     repo,
		db:       db,
		logger:   logger,
		identity: identity,
		notifier: notifier,
		reporter: reporter,
	}
}

// IssueIfAbsent creates the certificate once per (course, user) and dispatches one completion notice.
// course must have Owner loaded.
func (s *certificateService) IssueIfAbsent(ctx context.Context, course *models.Course, user *models.User) (*IssueResult, error) {
	existing, err := s.repo.Certificate().GetByCourseAndUser(ctx, s.db, course.ID, user.ID)
	if err == nil {
		return &IssueResult{Certificate: existing}, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing certificate: %w", err)
	}

	chapterIDs, err := s.repo.Chapter().ListPublishedIDs(ctx, s.db, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot course chapters: %w", err)
	}

	certificate := &models.Certificate{
		Title:    course.Title,
		CourseID: course.ID,
		UserID:   user.ID,
		Metadata: models.NewCertificateMetadata(models.CertificateMetadata{
			InstructorName: course.Owner.DisplayName(),
			InstructorPic:  course.Owner.PictureURL(),
			ChapterCount:   len(chapterIDs),
		}),
	}

	if err := s.repo.Certificate().Create(ctx, s.db, certificate); err != nil {
		if !repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("failed to create certificate: %w", err)
		}

		// lost the race against a concurrent completion
		existing, readErr := s.repo.Certificate().GetByCourseAndUser(ctx, s.db, course.ID, user.ID)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read certificate after conflict: %w", readErr)
		}
		return &IssueResult{Certificate: existing}, nil
	}

	s.logger.Info("Certificate issued",
		"certificate_id", certificate.ID,
		"course_id", course.ID,
		"user_id", user.ID)

	s.dispatch(ctx, models.NewCompletionNotice(certificate, course, user))

	return &IssueResult{Certificate: certificate, Created: true}, nil
}

// dispatch is best effort; the certificate is already committed
func (s *certificateService) dispatch(ctx context.Context, notice *models.CompletionNotice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, notice); err != nil {
		s.reporter.Report(ctx, err, map[string]interface{}{
			"certificate_id": notice.CertificateID,
			"course_id":      notice.CourseID,
			"user_id":        notice.UserID,
		})
	}
}

func (s *certificateService) ListForUser(ctx context.Context, identity models.Identity) ([]*models.Certificate, error) {
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	certificates, err := s.repo.Certificate().ListByUser(ctx, s.db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certificates, nil
}
