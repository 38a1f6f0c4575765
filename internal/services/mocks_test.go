package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
)

// ===== REPOSITORY MOCKS =====

type mockRepository struct {
	user        *mockUserRepository
	category    *mockCategoryRepository
	course      *mockCourseRepository
	chapter     *mockChapterRepository
	access      *mockAccessRepository
	progress    *mockProgressRepository
	certificate *mockCertificateRepository
	dashboard   *mockDashboardRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:        &mockUserRepository{},
		category:    &mockCategoryRepository{},
		course:      &mockCourseRepository{},
		chapter:     &mockChapterRepository{},
		access:      &mockAccessRepository{},
		progress:    &mockProgressRepository{},
		certificate: &mockCertificateRepository{},
		dashboard:   &mockDashboardRepository{},
	}
}

func (m *mockRepository) User() repositories.UserRepository               { return m.user }
func (m *mockRepository) Category() repositories.CategoryRepository       { return m.category }
func (m *mockRepository) Course() repositories.CourseRepository           { return m.course }
func (m *mockRepository) Chapter() repositories.ChapterRepository         { return m.chapter }
func (m *mockRepository) Access() repositories.AccessRepository           { return m.access }
func (m *mockRepository) Progress() repositories.ProgressRepository       { return m.progress }
func (m *mockRepository) Certificate() repositories.CertificateRepository { return m.certificate }
func (m *mockRepository) Dashboard() repositories.DashboardRepository     { return m.dashboard }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByAuthID(ctx context.Context, tx *gorm.DB, authID string) (*models.User, error) {
	args := m.Called(ctx, tx, authID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, tx, ids)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return m.Called(ctx, tx, user).Error(0)
}

type mockCategoryRepository struct{ mock.Mock }

func (m *mockCategoryRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	args := m.Called(ctx, tx)
	categories, _ := args.Get(0).([]*models.Category)
	return categories, args.Error(1)
}

type mockCourseRepository struct{ mock.Mock }

func (m *mockCourseRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	args := m.Called(ctx, tx, id)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *mockCourseRepository) GetPublishedByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	args := m.Called(ctx, tx, id)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *mockCourseRepository) ListPublished(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, error) {
	args := m.Called(ctx, tx, filters)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

func (m *mockCourseRepository) CountPublished(ctx context.Context, tx *gorm.DB, search string) (int64, error) {
	args := m.Called(ctx, tx, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCourseRepository) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Course, error) {
	args := m.Called(ctx, tx, ownerID)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

type mockChapterRepository struct{ mock.Mock }

func (m *mockChapterRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Chapter, error) {
	args := m.Called(ctx, tx, id)
	chapter, _ := args.Get(0).(*models.Chapter)
	return chapter, args.Error(1)
}

func (m *mockChapterRepository) ListPublishedIDs(ctx context.Context, tx *gorm.DB, courseID string) ([]string, error) {
	args := m.Called(ctx, tx, courseID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockAccessRepository struct{ mock.Mock }

func (m *mockAccessRepository) Exists(ctx context.Context, tx *gorm.DB, courseID, userID string) (bool, error) {
	args := m.Called(ctx, tx, courseID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccessRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Access, error) {
	args := m.Called(ctx, tx, userID)
	accesses, _ := args.Get(0).([]*models.Access)
	return accesses, args.Error(1)
}

type mockProgressRepository struct{ mock.Mock }

func (m *mockProgressRepository) CountCompleted(ctx context.Context, tx *gorm.DB, userID string, chapterIDs []string) (int64, error) {
	args := m.Called(ctx, tx, userID, chapterIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProgressRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, userID, chapterID string) error {
	return m.Called(ctx, tx, userID, chapterID).Error(0)
}

type mockCertificateRepository struct{ mock.Mock }

func (m *mockCertificateRepository) GetByCourseAndUser(ctx context.Context, tx *gorm.DB, courseID, userID string) (*models.Certificate, error) {
	args := m.Called(ctx, tx, courseID, userID)
	certificate, _ := args.Get(0).(*models.Certificate)
	return certificate, args.Error(1)
}

func (m *mockCertificateRepository) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	return m.Called(ctx, tx, certificate).Error(0)
}

func (m *mockCertificateRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Certificate, error) {
	args := m.Called(ctx, tx, userID)
	certificates, _ := args.Get(0).([]*models.Certificate)
	return certificates, args.Error(1)
}

type mockDashboardRepository struct{ mock.Mock }

func (m *mockDashboardRepository) PublishedChapterCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, tx, courseIDs)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *mockDashboardRepository) EnrollmentCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, tx, courseIDs)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *mockDashboardRepository) CertificateCounts(ctx context.Context, tx *gorm.DB, courseIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, tx, courseIDs)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *mockDashboardRepository) CompletedChapterCounts(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, tx, userID, courseIDs)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

func (m *mockDashboardRepository) StudentCompletion(ctx context.Context, tx *gorm.DB, courseID string) ([]repositories.StudentCompletionData, error) {
	args := m.Called(ctx, tx, courseID)
	rows, _ := args.Get(0).([]repositories.StudentCompletionData)
	return rows, args.Error(1)
}

// ===== COLLABORATOR FAKES =====

type fakeNotifier struct {
	mu      sync.Mutex
	notices []*models.CompletionNotice
	err     error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, notice *models.CompletionNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice)
	return f.err
}

func (f *fakeNotifier) Notices() []*models.CompletionNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.CompletionNotice(nil), f.notices...)
}

type fakeReporter struct {
	mu   sync.Mutex
	errs []error
}

func (f *fakeReporter) Report(ctx context.Context, err error, fields map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *fakeReporter) Errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func strPtr(s string) *string {
	return &s
}

func teacherUser() *models.User {
	return &models.User{ID: "owner-1", AuthID: "auth-owner", Name: strPtr("Ada Lovelace"), Email: "ada@example.com", Role: models.RoleTeacher}
}

func studentUser() *models.User {
	return &models.User{ID: "student-1", AuthID: "auth-student", Email: "jane.doe@example.com", Role: models.RoleStudent}
}

func publishedCourse() *models.Course {
	owner := teacherUser()
	return &models.Course{
		ID:          "course-1",
		Title:       "Go Basics",
		IsPublished: true,
		UserID:      owner.ID,
		Owner:       *owner,
	}
}
