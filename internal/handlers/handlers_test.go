package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ===== FAKES =====

type fakeParser struct {
	claims map[string]*casdoorsdk.Claims
}

func (p *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if claims, ok := p.claims[token]; ok {
		return claims, nil
	}
	return nil, errors.New("signature is invalid")
}

type fakeIdentity struct {
	synced []models.ExternalProfile
}

func (f *fakeIdentity) Resolve(ctx context.Context, identity models.Identity) (*models.User, error) {
	if identity.IsAnonymous() {
		return nil, services.ErrAnonymous
	}
	return &models.User{ID: "u-" + identity.AuthID, AuthID: identity.AuthID, Email: identity.AuthID + "@example.com"}, nil
}

func (f *fakeIdentity) Sync(ctx context.Context, profile models.ExternalProfile) (*models.User, error) {
	f.synced = append(f.synced, profile)
	return &models.User{ID: "u-" + profile.AuthID, AuthID: profile.AuthID, Email: profile.Email, Role: profile.Role}, nil
}

type fakeAccess struct{}

func (fakeAccess) Evaluate(ctx context.Context, courseID string, identity models.Identity) (*models.AccessResult, error) {
	if identity.IsAnonymous() {
		return &models.AccessResult{IsAnonymousVisitor: true, CourseFound: true}, nil
	}
	return &models.AccessResult{HasGrantedAccess: true, CourseFound: true}, nil
}

type fakeCatalog struct {
	query     models.CatalogQuery
	refreshed bool
}

func (f *fakeCatalog) ListCourses(ctx context.Context, query models.CatalogQuery) ([]*models.CatalogCourse, error) {
	f.query = query
	return []*models.CatalogCourse{{ID: "course-1", Title: "Go Basics"}}, nil
}

func (f *fakeCatalog) CountCourses(ctx context.Context, search string) (int64, error) {
	return 41, nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return []*models.Category{{ID: "cat-1", Title: "Programming"}}, nil
}

func (f *fakeCatalog) RefreshCache(ctx context.Context, identity models.Identity) error {
	f.refreshed = true
	return nil
}

type fakeProgress struct {
	completeErr error
}

func (f *fakeProgress) GetCourseProgress(ctx context.Context, courseID string, identity models.Identity) (*services.ProgressResult, error) {
	if identity.IsAnonymous() {
		return &services.ProgressResult{CourseID: courseID}, nil
	}
	return &services.ProgressResult{CourseID: courseID, Percentage: 75, CompletedChapters: 3, TotalChapters: 4}, nil
}

func (f *fakeProgress) CompleteChapter(ctx context.Context, courseID, chapterID string, identity models.Identity) (*services.ProgressResult, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &services.ProgressResult{CourseID: courseID, Percentage: 100, CertificateIssued: true}, nil
}

type fakeCertificates struct{}

func (fakeCertificates) IssueIfAbsent(ctx context.Context, course *models.Course, user *models.User) (*services.IssueResult, error) {
	return nil, errors.New("not used")
}

func (fakeCertificates) ListForUser(ctx context.Context, identity models.Identity) ([]*models.Certificate, error) {
	return []*models.Certificate{{ID: "cert-1", Title: "Go Basics"}}, nil
}

type fakeDashboard struct{}

func (fakeDashboard) StudentDashboard(ctx context.Context, identity models.Identity) (*models.StudentDashboard, error) {
	return &models.StudentDashboard{CompletedCount: 1}, nil
}

func (fakeDashboard) TeacherDashboard(ctx context.Context, identity models.Identity) (*models.TeacherDashboard, error) {
	return &models.TeacherDashboard{TotalEnrollments: 3}, nil
}

type fakeReports struct{}

func (fakeReports) CourseProgressRows(ctx context.Context, courseID string, identity models.Identity) ([]models.StudentProgressRow, error) {
	return nil, nil
}

func (fakeReports) CourseProgressReport(ctx context.Context, courseID string, identity models.Identity) ([]byte, error) {
	if courseID == "missing" {
		return nil, services.ErrCourseNotFound
	}
	return []byte("PK-xlsx"), nil
}

type fakeServiceManager struct {
	identity *fakeIdentity
	catalog  *fakeCatalog
	progress *fakeProgress
}

func (m *fakeServiceManager) Identity() services.IdentityService       { return m.identity }
func (m *fakeServiceManager) Access() services.AccessService           { return fakeAccess{} }
func (m *fakeServiceManager) Catalog() services.CatalogService         { return m.catalog }
func (m *fakeServiceManager) Progress() services.ProgressService       { return m.progress }
func (m *fakeServiceManager) Certificate() services.CertificateService { return fakeCertificates{} }
func (m *fakeServiceManager) Dashboard() services.DashboardService     { return fakeDashboard{} }
func (m *fakeServiceManager) Report() services.ReportService           { return fakeReports{} }
func (m *fakeServiceManager) Initialize(ctx context.Context) error     { return nil }
func (m *fakeServiceManager) HealthCheck(ctx context.Context) error    { return nil }
func (m *fakeServiceManager) Shutdown(ctx context.Context) error       { return nil }

// ===== HARNESS =====

type testServer struct {
	router *gin.Engine
	sm     *fakeServiceManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	sm := &fakeServiceManager{identity: &fakeIdentity{}, catalog: &fakeCatalog{}, progress: &fakeProgress{}}
	parser := &fakeParser{claims: map[string]*casdoorsdk.Claims{
		"student-token": {User: casdoorsdk.User{Id: "auth-student", Email: "jane@example.com", Type: "normal-user"}},
		"teacher-token": {User: casdoorsdk.User{Id: "auth-teacher", Email: "ada@example.com", DisplayName: "Ada", Type: "teacher"}},
	}}

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, validator.New(), logger, NewAuthMiddlewareWithParser(parser, sm.identity, logger)).SetupRoutes(router)

	return &testServer{router: router, sm: sm}
}

func (s *testServer) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// ===== TESTS =====

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListCourses(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/courses?search=go&page=2&page_size=20", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.PaginatedResponse
	decode(t, w, &page)
	assert.Equal(t, int64(41), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.NumberOfElements)
	assert.Equal(t, models.CatalogQuery{Search: "go", Page: 2, PageSize: 20}, s.sm.catalog.query)

	w = s.do(http.MethodGet, "/api/v1/courses?page_size=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/courses?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountAndCategories(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/courses/count?search=go", "")
	require.Equal(t, http.StatusOK, w.Code)
	var count map[string]int64
	decode(t, w, &count)
	assert.Equal(t, int64(41), count["count"])

	w = s.do(http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	decode(t, w, &categories)
	assert.Len(t, categories, 1)
}

func TestOptionalAuth(t *testing.T) {
	s := newTestServer(t)

	var result models.AccessResult
	w := s.do(http.MethodGet, "/api/v1/courses/course-1/access", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.True(t, result.IsAnonymousVisitor)

	w = s.do(http.MethodGet, "/api/v1/courses/course-1/access", "forged")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.True(t, result.IsAnonymousVisitor)

	w = s.do(http.MethodGet, "/api/v1/courses/course-1/access", "student-token")
	require.Equal(t, http.StatusOK, w.Code)
	result = models.AccessResult{}
	decode(t, w, &result)
	assert.False(t, result.IsAnonymousVisitor)
	assert.True(t, result.HasGrantedAccess)

	require.NotEmpty(t, s.sm.identity.synced)
	assert.Equal(t, "jane@example.com", s.sm.identity.synced[0].Email)
	assert.Equal(t, models.RoleStudent, s.sm.identity.synced[0].Role)
}

func TestGetProgress(t *testing.T) {
	s := newTestServer(t)

	var progress services.ProgressResult
	w := s.do(http.MethodGet, "/api/v1/courses/course-1/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &progress)
	assert.Equal(t, float64(0), progress.Percentage)

	w = s.do(http.MethodGet, "/api/v1/courses/course-1/progress", "student-token")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &progress)
	assert.Equal(t, float64(75), progress.Percentage)
}

func TestCompleteChapter(t *testing.T) {
	path := "/api/v1/courses/course-1/chapters/ch-1/complete"

	t.Run("requires authentication", func(t *testing.T) {
		s := newTestServer(t)
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path, "").Code)
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, path, "forged").Code)
	})

	t.Run("success", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, path, "student-token")
		require.Equal(t, http.StatusOK, w.Code)
		var progress services.ProgressResult
		decode(t, w, &progress)
		assert.True(t, progress.CertificateIssued)
	})

	errorCases := []struct {
		name string
		err  error
		want int
	}{
		{"missing chapter", services.ErrChapterNotFound, http.StatusNotFound},
		{"missing course", services.ErrCourseNotFound, http.StatusNotFound},
		{"no grant", services.NewPermissionError("course", "complete_chapter", "no access"), http.StatusForbidden},
		{"wrong course", validator.ValidationErrors{{Field: "chapter_id", Rule: "chapter_course"}}, http.StatusBadRequest},
		{"unknown user", services.ErrUserNotFound, http.StatusNotFound},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.sm.progress.completeErr = tc.err
			w := s.do(http.MethodPost, path, "student-token")
			assert.Equal(t, tc.want, w.Code)

			var body ErrorResponse
			decode(t, w, &body)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestMeRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/me", "").Code)

	w := s.do(http.MethodGet, "/api/v1/me", "student-token")
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "auth-student", user.AuthID)

	w = s.do(http.MethodGet, "/api/v1/me/certificates", "student-token")
	require.Equal(t, http.StatusOK, w.Code)
	var certificates []models.Certificate
	decode(t, w, &certificates)
	assert.Len(t, certificates, 1)
}

func TestDashboardRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/dashboard/student", "student-token").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/dashboard/teacher", "student-token").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/dashboard/teacher", "teacher-token").Code)

	w := s.do(http.MethodGet, "/api/v1/dashboard/teacher/courses/course-1/report", "teacher-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "course-course-1-progress-")
	assert.Equal(t, "PK-xlsx", w.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/dashboard/teacher/courses/missing/report", "teacher-token").Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/dashboard/teacher/catalog/refresh", "student-token").Code)
	assert.False(t, s.sm.catalog.refreshed)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/dashboard/teacher/catalog/refresh", "teacher-token").Code)
	assert.True(t, s.sm.catalog.refreshed)
}

func TestMapCasdoorRole(t *testing.T) {
	assert.Equal(t, models.RoleTeacher, mapCasdoorRole("Instructor"))
	assert.Equal(t, models.RoleStudent, mapCasdoorRole("normal-user"))
	assert.Equal(t, models.RoleStudent, mapCasdoorRole(""))
}
