package models

import "time"

// ===== ACCESS =====

// AccessResult describes a caller's relationship to a course.
// For a missing course every flag is false and CourseFound is false.
type AccessResult struct {
	IsAnonymousVisitor bool `json:"is_anonymous_visitor"`
	HasGrantedAccess   bool `json:"has_granted_access"`
	IsOwner            bool `json:"is_owner"`
	CourseFound        bool `json:"course_found"`
}

// CanView reports whether the caller may open the course content
func (r AccessResult) CanView() bool {
	return r.IsOwner || r.HasGrantedAccess
}

// ===== CATALOG =====

type CatalogQuery struct {
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

const (
	DefaultCatalogPageSize = 20
	MaxCatalogPageSize     = 100
)

// Normalize applies catalog paging defaults
func (q CatalogQuery) Normalize() CatalogQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultCatalogPageSize
	}
	if q.PageSize > MaxCatalogPageSize {
		q.PageSize = MaxCatalogPageSize
	}
	return q
}

func (q CatalogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// CatalogCourse is a published course enriched for listing
type CatalogCourse struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description"`
	ImageURL       *string     `json:"image_url"`
	Price          *float64    `json:"price"`
	Category       *Category   `json:"category,omitempty"`
	Owner          CourseOwner `json:"owner"`
	ChapterCount   int         `json:"chapters"`
	FirstChapterID *string     `json:"chapter_id"`
	CreatedAt      time.Time   `json:"created_at"`
}

type CourseOwner struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ProfilePic *string `json:"profile_pic"`
}

// NewCatalogCourse expects Chapters to hold only published chapters ordered by position
func NewCatalogCourse(course *Course) *CatalogCourse {
	item := &CatalogCourse{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		ImageURL:     course.ImageURL,
		Price:        course.Price,
		Category:     course.Category,
		ChapterCount: len(course.Chapters),
		CreatedAt:    course.CreatedAt,
		Owner: CourseOwner{
			ID:         course.Owner.ID,
			Name:       course.Owner.DisplayName(),
			ProfilePic: course.Owner.ProfilePic,
		},
	}
	if len(course.Chapters) > 0 {
		first := course.Chapters[0].ID
		item.FirstChapterID = &first
	}
	return item
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// NewPaginatedResponse fills the paging metadata for a page of results
func NewPaginatedResponse(content interface{}, count int, total int64, page, size int) *PaginatedResponse {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &PaginatedResponse{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             size,
		Page:             page,
		First:            page <= 1,
		Last:             page >= totalPages,
		NumberOfElements: count,
		Empty:            count == 0,
	}
}

// ===== PROGRESS =====

// ProgressPercentage is 100*completed/total, or 0 when the course has no published chapters
func ProgressPercentage(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return float64(completed) * 100 / float64(total)
}

// ===== DASHBOARDS =====

type StudentCourseSummary struct {
	CourseID          string      `json:"course_id"`
	Title             string      `json:"title"`
	ImageURL          *string     `json:"image_url"`
	Category          *Category   `json:"category,omitempty"`
	Owner             CourseOwner `json:"owner"`
	ChapterCount      int64       `json:"chapters"`
	CompletedChapters int64       `json:"completed_chapters"`
	Percentage        float64     `json:"percentage"`
}

type StudentDashboard struct {
	Courses         []StudentCourseSummary `json:"courses"`
	CompletedCount  int                    `json:"completed_count"`
	InProgressCount int                    `json:"in_progress_count"`
}

type TeacherCourseSummary struct {
	CourseID           string  `json:"course_id"`
	Title              string  `json:"title"`
	IsPublished        bool    `json:"is_published"`
	ChapterCount       int64   `json:"chapters"`
	EnrollmentCount    int64   `json:"enrollments"`
	CertificatesIssued int64   `json:"certificates_issued"`
	CompletionRate     float64 `json:"completion_rate"`
}

type TeacherDashboard struct {
	Courses          []TeacherCourseSummary `json:"courses"`
	TotalEnrollments int64                  `json:"total_enrollments"`
	TotalCertified   int64                  `json:"total_certified"`
}

// StudentProgressRow is one line of a course progress report
type StudentProgressRow struct {
	UserID            string     `json:"user_id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	CompletedChapters int64      `json:"completed_chapters"`
	TotalChapters     int64      `json:"total_chapters"`
	Percentage        float64    `json:"percentage"`
	CertifiedAt       *time.Time `json:"certified_at,omitempty"`
}
