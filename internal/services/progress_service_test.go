package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

var fourChapters = []string{"ch-1", "ch-2", "ch-3", "ch-4"}

type progressFixture struct {
	repo     *mockRepository
	notifier *fakeNotifier
	reporter *fakeReporter
	service  ProgressService
}

func newProgressFixture() *progressFixture {
	repo := newMockRepository()
	logger := testLogger()
	v := validator.New()
	notifier := &fakeNotifier{}
	reporter := &fakeReporter{}

	identity := NewIdentityService(repo, nil, logger, v)
	certificates := NewCertificateService(repo, nil, logger, identity, notifier, reporter)

	return &progressFixture{
		repo:     repo,
		notifier: notifier,
		reporter: reporter,
		service:  NewProgressService(repo, nil, logger, v, cache.NewCacheManager(nil), identity, certificates),
	}
}

func (f *progressFixture) withStudentOnCourse(chapterIDs []string) {
	f.repo.user.On("GetByAuthID", mock.Anything, mock.Anything, "auth-student").Return(studentUser(), nil)
	f.repo.course.On("GetPublishedByID", mock.Anything, mock.Anything, "course-1").Return(publishedCourse(), nil)
	f.repo.chapter.On("ListPublishedIDs", mock.Anything, mock.Anything, "course-1").Return(chapterIDs, nil)
}

var studentIdentity = models.Identity{AuthID: "auth-student"}

func TestProgressService_GetCourseProgress_ZeroCases(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := newProgressFixture()
		result, err := f.service.GetCourseProgress(ctx, "course-1", models.AnonymousIdentity())
		require.NoError(t, err)
		assert.Equal(t, float64(0), result.Percentage)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newProgressFixture()
		f.repo.user.On("GetByAuthID", mock.Anything, mock.Anything, "auth-student").Return(nil, repositories.ErrRecordNotFound)

		result, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
		require.NoError(t, err)
		assert.Equal(t, float64(0), result.Percentage)
	})

	t.Run("missing or unpublished course", func(t *testing.T) {
		f := newProgressFixture()
		f.repo.user.On("GetByAuthID", mock.Anything, mock.Anything, "auth-student").Return(studentUser(), nil)
		f.repo.course.On("GetPublishedByID", mock.Anything, mock.Anything, "course-1").Return(nil, repositories.ErrRecordNotFound)

		result, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
		require.NoError(t, err)
		assert.Equal(t, float64(0), result.Percentage)
	})

	t.Run("zero published chapters is exactly zero", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse([]string{})

		result, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
		require.NoError(t, err)
		assert.Equal(t, float64(0), result.Percentage)
		assert.Equal(t, int64(0), result.TotalChapters)
		f.repo.progress.AssertNotCalled(t, "CountCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.repo.certificate.AssertNotCalled(t, "GetByCourseAndUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure degrades to zero", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse(fourChapters)
		f.repo.progress.On("CountCompleted", mock.Anything, mock.Anything, "student-1", fourChapters).Return(int64(0), errors.New("boom"))

		result, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
		require.NoError(t, err)
		assert.Equal(t, float64(0), result.Percentage)
	})
}

func TestProgressService_ThreeOfFour(t *testing.T) {
	f := newProgressFixture()
	f.withStudentOnCourse(fourChapters)
	f.repo.progress.On("CountCompleted", mock.Anything, mock.Anything, "student-1", fourChapters).Return(int64(3), nil)

	result, err := f.service.GetCourseProgress(context.Background(), "course-1", studentIdentity)
	require.NoError(t, err)

	assert.Equal(t, float64(75), result.Percentage)
	assert.Nil(t, result.Certificate)
	assert.False(t, result.CertificateIssued)
	f.repo.certificate.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.Notices())
}

func TestProgressService_CompletionIssuesOnce(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.withStudentOnCourse(fourChapters)
	f.repo.progress.On("CountCompleted", mock.Anything, mock.Anything, "student-1", fourChapters).Return(int64(4), nil)

	var stored *models.Certificate
	f.repo.certificate.On("GetByCourseAndUser", mock.Anything, mock.Anything, "course-1", "student-1").
		Return(nil, repositories.ErrRecordNotFound).Once()
	f.repo.certificate.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Certificate")).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).(*models.Certificate)
			stored.ID = "cert-1"
		}).Return(nil).Once()

	first, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
	require.NoError(t, err)
	assert.Equal(t, float64(100), first.Percentage)
	assert.True(t, first.CertificateIssued)
	require.NotNil(t, first.Certificate)
	assert.Equal(t, "Go Basics", first.Certificate.Title)

	f.repo.certificate.On("GetByCourseAndUser", mock.Anything, mock.Anything, "course-1", "student-1").Return(stored, nil)

	second, err := f.service.GetCourseProgress(ctx, "course-1", studentIdentity)
	require.NoError(t, err)
	assert.Equal(t, float64(100), second.Percentage)
	assert.False(t, second.CertificateIssued)
	assert.Equal(t, "cert-1", second.Certificate.ID)

	f.repo.certificate.AssertNumberOfCalls(t, "Create", 1)
	notices := f.notifier.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "jane.doe@example.com", notices[0].RecipientEmail)
	assert.Equal(t, "jane.doe", notices[0].StudentName)
	assert.Equal(t, "certificate/cert-1", notices[0].CertificateURL)
	assert.Equal(t, "Ada Lovelace", notices[0].InstructorName)
	assert.Equal(t, "", notices[0].InstructorPic)
}

func TestProgressService_CertificateWriteFailurePropagates(t *testing.T) {
	f := newProgressFixture()
	f.withStudentOnCourse(fourChapters)
	f.repo.progress.On("CountCompleted", mock.Anything, mock.Anything, "student-1", fourChapters).Return(int64(4), nil)
	f.repo.certificate.On("GetByCourseAndUser", mock.Anything, mock.Anything, "course-1", "student-1").Return(nil, repositories.ErrRecordNotFound)
	writeErr := errors.New("disk full")
	f.repo.certificate.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(writeErr)

	_, err := f.service.GetCourseProgress(context.Background(), "course-1", studentIdentity)
	assert.ErrorIs(t, err, writeErr)
	assert.Empty(t, f.notifier.Notices())
}

func TestProgressService_CompleteChapter(t *testing.T) {
	ctx := context.Background()
	chapter := &models.Chapter{ID: "ch-4", CourseID: "course-1", IsPublished: true}

	t.Run("grantee completes the last chapter", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse(fourChapters)
		f.repo.access.On("Exists", mock.Anything, mock.Anything, "course-1", "student-1").Return(true, nil)
		f.repo.chapter.On("GetByID", mock.Anything, mock.Anything, "ch-4").Return(chapter, nil)
		f.repo.progress.On("MarkCompleted", mock.Anything, mock.Anything, "student-1", "ch-4").Return(nil)
		f.repo.progress.On("CountCompleted", mock.Anything, mock.Anything, "student-1", fourChapters).Return(int64(4), nil)
		f.repo.certificate.On("GetByCourseAndUser", mock.Anything, mock.Anything, "course-1", "student-1").Return(nil, repositories.ErrRecordNotFound)
		f.repo.certificate.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.CompleteChapter(ctx, "course-1", "ch-4", studentIdentity)
		require.NoError(t, err)
		assert.Equal(t, float64(100), result.Percentage)
		assert.True(t, result.CertificateIssued)
		assert.Len(t, f.notifier.Notices(), 1)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		f := newProgressFixture()
		_, err := f.service.CompleteChapter(ctx, "course-1", "ch-4", models.AnonymousIdentity())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("no grant", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse(fourChapters)
		f.repo.access.On("Exists", mock.Anything, mock.Anything, "course-1", "student-1").Return(false, nil)

		_, err := f.service.CompleteChapter(ctx, "course-1", "ch-4", studentIdentity)
		var permissionErr *PermissionError
		require.ErrorAs(t, err, &permissionErr)
		assert.ErrorIs(t, err, ErrForbidden)
		f.repo.progress.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("chapter of another course", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse(fourChapters)
		f.repo.access.On("Exists", mock.Anything, mock.Anything, "course-1", "student-1").Return(true, nil)
		f.repo.chapter.On("GetByID", mock.Anything, mock.Anything, "ch-x").
			Return(&models.Chapter{ID: "ch-x", CourseID: "course-2", IsPublished: true}, nil)

		_, err := f.service.CompleteChapter(ctx, "course-1", "ch-x", studentIdentity)
		var validationErrors ValidationErrors
		require.ErrorAs(t, err, &validationErrors)
		assert.Equal(t, "chapter_course", validationErrors[0].Rule)
	})

	t.Run("missing chapter", func(t *testing.T) {
		f := newProgressFixture()
		f.withStudentOnCourse(fourChapters)
		f.repo.access.On("Exists", mock.Anything, mock.Anything, "course-1", "student-1").Return(true, nil)
		f.repo.chapter.On("GetByID", mock.Anything, mock.Anything, "nope").Return(nil, repositories.ErrRecordNotFound)

		_, err := f.service.CompleteChapter(ctx, "course-1", "nope", studentIdentity)
		assert.ErrorIs(t, err, ErrChapterNotFound)
	})

	t.Run("missing course", func(t *testing.T) {
		f := newProgressFixture()
		f.repo.user.On("GetByAuthID", mock.Anything, mock.Anything, "auth-student").Return(studentUser(), nil)
		f.repo.course.On("GetPublishedByID", mock.Anything, mock.Anything, "gone").Return(nil, repositories.ErrRecordNotFound)

		_, err := f.service.CompleteChapter(ctx, "gone", "ch-1", studentIdentity)
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}
