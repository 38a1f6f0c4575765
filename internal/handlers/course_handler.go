package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	catalog   services.CatalogService
	access    services.AccessService
	progress  services.ProgressService
	validator *validator.Validator
}

func NewCourseHandler(
	catalog services.CatalogService,
	access services.AccessService,
	progress services.ProgressService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
		access:      access,
		progress:    progress,
		validator:   validator,
	}
}

// ListCategories returns every category ordered by title
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CourseHandler) ListCategories(c *gin.Context) {
	h.LogRequest(c, "Listing categories")

	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// ListCourses returns one page of published courses
// @Summary List published courses
// @Tags catalog
// @Produce json
// @Param search query string false "Matches title, description, category or instructor"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} models.PaginatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req validator.CatalogQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	query, errs := h.validator.ValidateCatalogQuery(&req)
	if len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	h.LogRequest(c, "Listing courses", "search", query.Search, "page", query.Page)

	ctx := c.Request.Context()
	courses, err := h.catalog.ListCourses(ctx, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	total, err := h.catalog.CountCourses(ctx, query.Search)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(courses, len(courses), total, query.Page, query.PageSize))
}

// CountCourses returns the number of published courses matching search
// @Summary Count published courses
// @Tags catalog
// @Produce json
// @Param search query string false "Search term"
// @Success 200 {object} map[string]int64
// @Router /courses/count [get]
func (h *CourseHandler) CountCourses(c *gin.Context) {
	var req validator.CountQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	total, err := h.catalog.CountCourses(c.Request.Context(), req.Search)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": total})
}

// GetAccess describes the caller's relationship to a course
// @Summary Evaluate course access
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.AccessResult
// @Router /courses/{id}/access [get]
func (h *CourseHandler) GetAccess(c *gin.Context) {
	params, ok := h.bindCourseParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Evaluating course access", "course_id", params.CourseID)

	result, err := h.access.Evaluate(c.Request.Context(), params.CourseID, identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProgress returns the caller's completion percentage, issuing the certificate at 100%
// @Summary Get course progress
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.ProgressResult
// @Router /courses/{id}/progress [get]
func (h *CourseHandler) GetProgress(c *gin.Context) {
	params, ok := h.bindCourseParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting course progress", "course_id", params.CourseID)

	result, err := h.progress.GetCourseProgress(c.Request.Context(), params.CourseID, identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteChapter marks a chapter completed and returns the updated progress
// @Summary Complete chapter
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {object} services.ProgressResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/chapters/{chapter_id}/complete [post]
func (h *CourseHandler) CompleteChapter(c *gin.Context) {
	var params validator.ChapterParams
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid path parameters",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&params); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Completing chapter", "course_id", params.CourseID, "chapter_id", params.ChapterID)

	result, err := h.progress.CompleteChapter(c.Request.Context(), params.CourseID, params.ChapterID, identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CourseHandler) bindCourseParams(c *gin.Context) (validator.CourseParams, bool) {
	var params validator.CourseParams
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid course ID",
			Details: err.Error(),
		})
		return params, false
	}
	if err := h.validator.ValidateStruct(&params); err != nil {
		h.handleServiceError(c, err)
		return params, false
	}
	return params, true
}
