package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       *slog.Logger
	cacheManager *cache.CacheManager
	identity     IdentityService
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager, identity IdentityService) DashboardService {
	return &dashboardService{
		repo:         repo,
		db:           db,
		logger:       logger,
		cacheManager: cacheManager,
		identity:     identity,
	}
}

// StudentDashboard summarizes every course the caller was granted access to.
// It never issues certificates.
func (s *dashboardService) StudentDashboard(ctx context.Context, identity models.Identity) (*models.StudentDashboard, error) {
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	var dashboard models.StudentDashboard
	key := fmt.Sprintf("student:%s", user.ID)
	err = s.cacheManager.Stats.CacheOrExecute(ctx, key, &dashboard, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.buildStudentDashboard(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *dashboardService) buildStudentDashboard(ctx context.Context, user *models.User) (*models.StudentDashboard, error) {
	accesses, err := s.repo.Access().ListByUser(ctx, s.db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled courses: %w", err)
	}

	courseIDs := make([]string, 0, len(accesses))
	for _, access := range accesses {
		if access.Course != nil {
			courseIDs = append(courseIDs, access.CourseID)
		}
	}

	chapterCounts, err := s.repo.Dashboard().PublishedChapterCounts(ctx, s.db, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count chapters: %w", err)
	}
	completedCounts, err := s.repo.Dashboard().CompletedChapterCounts(ctx, s.db, user.ID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed chapters: %w", err)
	}

	dashboard := &models.StudentDashboard{Courses: make([]models.StudentCourseSummary, 0, len(courseIDs))}
	for _, access := range accesses {
		course := access.Course
		if course == nil {
			continue
		}

		total := chapterCounts[course.ID]
		completed := completedCounts[course.ID]
		dashboard.Courses = append(dashboard.Courses, models.StudentCourseSummary{
			CourseID: course.ID,
			Title:    course.Title,
			ImageURL: course.ImageURL,
			Category: course.Category,
			Owner: models.CourseOwner{
				ID:         course.Owner.ID,
				Name:       course.Owner.DisplayName(),
				ProfilePic: course.Owner.ProfilePic,
			},
			ChapterCount:      total,
			CompletedChapters: completed,
			Percentage:        models.ProgressPercentage(completed, total),
		})

		if total > 0 && completed >= total {
			dashboard.CompletedCount++
		} else {
			dashboard.InProgressCount++
		}
	}

	return dashboard, nil
}

// TeacherDashboard summarizes the caller's own courses; TEACHER role only
func (s *dashboardService) TeacherDashboard(ctx context.Context, identity models.Identity) (*models.TeacherDashboard, error) {
	user, err := s.identity.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleTeacher {
		return nil, NewPermissionError("dashboard", "view_teacher", "teacher role required")
	}

	var dashboard models.TeacherDashboard
	key := fmt.Sprintf("teacher:%s", user.ID)
	err = s.cacheManager.Stats.CacheOrExecute(ctx, key, &dashboard, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.buildTeacherDashboard(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *dashboardService) buildTeacherDashboard(ctx context.Context, user *models.User) (*models.TeacherDashboard, error) {
	courses, err := s.repo.Course().ListByOwner(ctx, s.db, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned courses: %w", err)
	}

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	chapterCounts, err := s.repo.Dashboard().PublishedChapterCounts(ctx, s.db, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count chapters: %w", err)
	}
	enrollments, err := s.repo.Dashboard().EnrollmentCounts(ctx, s.db, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	certificates, err := s.repo.Dashboard().CertificateCounts(ctx, s.db, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}

	dashboard := &models.TeacherDashboard{Courses: make([]models.TeacherCourseSummary, 0, len(courses))}
	for _, course := range courses {
		enrolled := enrollments[course.ID]
		certified := certificates[course.ID]

		summary := models.TeacherCourseSummary{
			CourseID:           course.ID,
			Title:              course.Title,
			IsPublished:        course.IsPublished,
			ChapterCount:       chapterCounts[course.ID],
			EnrollmentCount:    enrolled,
			CertificatesIssued: certified,
		}
		if enrolled > 0 {
			summary.CompletionRate = float64(certified) * 100 / float64(enrolled)
		}

		dashboard.Courses = append(dashboard.Courses, summary)
		dashboard.TotalEnrollments += enrolled
		dashboard.TotalCertified += certified
	}

	return dashboard, nil
}
