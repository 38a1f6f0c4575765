package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	dashboard services.DashboardService
	reports   services.ReportService
	catalog   services.CatalogService
	validator *validator.Validator
}

func NewDashboardHandler(
	dashboard services.DashboardService,
	reports services.ReportService,
	catalog services.CatalogService,
	validator *validator.Validator,
	logger utils.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		dashboard:   dashboard,
		reports:     reports,
		catalog:     catalog,
		validator:   validator,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetStudentDashboard summarizes the caller's enrolled courses
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.StudentDashboard
// @Failure 401 {object} ErrorResponse
// @Router /dashboard/student [get]
func (h *DashboardHandler) GetStudentDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting student dashboard")

	dashboard, err := h.dashboard.StudentDashboard(c.Request.Context(), identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetTeacherDashboard summarizes the caller's own courses
// @Summary Teacher dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.TeacherDashboard
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) GetTeacherDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting teacher dashboard")

	dashboard, err := h.dashboard.TeacherDashboard(c.Request.Context(), identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// DownloadCourseReport streams the per-student progress workbook of an owned course
// @Summary Course progress report
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Course ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /dashboard/teacher/courses/{id}/report [get]
func (h *DashboardHandler) DownloadCourseReport(c *gin.Context) {
	var params validator.CourseParams
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid course ID",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&params); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Generating course report", "course_id", params.CourseID)

	data, err := h.reports.CourseProgressReport(c.Request.Context(), params.CourseID, identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-%s-progress-%s.xlsx", params.CourseID, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RefreshCatalog drops cached catalog pages
// @Summary Refresh catalog cache
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/teacher/catalog/refresh [post]
func (h *DashboardHandler) RefreshCatalog(c *gin.Context) {
	h.LogRequest(c, "Refreshing catalog cache")

	if err := h.catalog.RefreshCache(c.Request.Context(), identityFromContext(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Catalog cache refreshed"})
}
