package services

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// ===== RESULT TYPES =====

// ProgressResult is a caller's completion state for one course
type ProgressResult struct {
	CourseID          string              `json:"course_id"`
	Percentage        float64             `json:"percentage"`
	CompletedChapters int64               `json:"completed_chapters"`
	TotalChapters     int64               `json:"total_chapters"`
	Certificate       *models.Certificate `json:"certificate,omitempty"`
	// CertificateIssued is true only on the call that created the certificate
	CertificateIssued bool `json:"certificate_issued"`
}

// IssueResult reports the certificate for a (course, user) pair and whether this call created it
type IssueResult struct {
	Certificate *models.Certificate
	Created     bool
}

// ===== SERVICE INTERFACES =====

type IdentityService interface {
	// Resolve maps the caller to the local user; ErrAnonymous or ErrUserNotFound otherwise
	Resolve(ctx context.Context, identity models.Identity) (*models.User, error)
	// Sync creates the local user on first sight of an identity-provider subject
	Sync(ctx context.Context, profile models.ExternalProfile) (*models.User, error)
}

type AccessService interface {
	Evaluate(ctx context.Context, courseID string, identity models.Identity) (*models.AccessResult, error)
}

type CatalogService interface {
	ListCourses(ctx context.Context, query models.CatalogQuery) ([]*models.CatalogCourse, error)
	CountCourses(ctx context.Context, search string) (int64, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	// RefreshCache drops cached catalog pages so newly published courses show up immediately
	RefreshCache(ctx context.Context, identity models.Identity) error
}

type ProgressService interface {
	GetCourseProgress(ctx context.Context, courseID string, identity models.Identity) (*ProgressResult, error)
	CompleteChapter(ctx context.Context, courseID, chapterID string, identity models.Identity) (*ProgressResult, error)
}

type CertificateService interface {
	IssueIfAbsent(ctx context.Context, course *models.Course, user *models.User) (*IssueResult, error)
	ListForUser(ctx context.Context, identity models.Identity) ([]*models.Certificate, error)
}

type DashboardService interface {
	StudentDashboard(ctx context.Context, identity models.Identity) (*models.StudentDashboard, error)
	TeacherDashboard(ctx context.Context, identity models.Identity) (*models.TeacherDashboard, error)
}

type ReportService interface {
	CourseProgressRows(ctx context.Context, courseID string, identity models.Identity) ([]models.StudentProgressRow, error)
	// CourseProgressReport renders CourseProgressRows as an xlsx workbook
	CourseProgressReport(ctx context.Context, courseID string, identity models.Identity) ([]byte, error)
}

// ===== COLLABORATORS =====

// CompletionNotifier hands a completion notice to the delivery pipeline
type CompletionNotifier interface {
	Dispatch(ctx context.Context, notice *models.CompletionNotice) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Identity() IdentityService
	Access() AccessService
	Catalog() CatalogService
	Progress() ProgressService
	Certificate() CertificateService
	Dashboard() DashboardService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
