package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type HandlerManager struct {
	courseHandler    *CourseHandler
	userHandler      *UserHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *CasdoorAuthMiddleware
	serviceManager   services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		courseHandler:    NewCourseHandler(serviceManager.Catalog(), serviceManager.Access(), serviceManager.Progress(), validator, logger),
		userHandler:      NewUserHandler(serviceManager.Identity(), serviceManager.Certificate(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Report(), serviceManager.Catalog(), validator, logger),
		authMiddleware:   authMiddleware,
		serviceManager:   serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		// Public catalog, anonymous callers welcome
		v1.GET("/categories", hm.courseHandler.ListCategories)

		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/count", hm.courseHandler.CountCourses)
			courses.GET("/:id/access", hm.courseHandler.GetAccess)
			courses.GET("/:id/progress", hm.courseHandler.GetProgress)
			courses.POST("/:id/chapters/:chapter_id/complete", hm.authMiddleware.AuthMiddleware(), hm.courseHandler.CompleteChapter)
		}

		me := v1.Group("/me")
		me.Use(hm.authMiddleware.AuthMiddleware())
		{
			me.GET("", hm.userHandler.GetMe)
			me.GET("/certificates", hm.userHandler.ListMyCertificates)
		}

		dashboard := v1.Group("/dashboard")
		dashboard.Use(hm.authMiddleware.AuthMiddleware())
		{
			dashboard.GET("/student", hm.dashboardHandler.GetStudentDashboard)

			teacher := dashboard.Group("/teacher")
			teacher.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher))
			{
				teacher.GET("", hm.dashboardHandler.GetTeacherDashboard)
				teacher.GET("/courses/:id/report", hm.dashboardHandler.DownloadCourseReport)
				teacher.POST("/catalog/refresh", hm.dashboardHandler.RefreshCatalog)
			}
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "learning-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})
}
