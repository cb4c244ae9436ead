package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/middleware"
	"github.com/jp3/expedientes-api/internal/models"
	"github.com/jp3/expedientes-api/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Teachers     *TeacherHandler
	Schools      *SchoolHandler
	CaseFiles    *CaseFileHandler
	Dispositions *DispositionHandler
	Health       *HealthHandler
}

// RegisterRoutes mounts the public auth routes, the JWT-protected resource
// routes and the operational endpoints on the engine.
func RegisterRoutes(r *gin.Engine, h Handlers, authSvc *service.AuthService, metricsSvc *service.MetricsService) {
	r.GET("/health", h.Health.Health)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)

		secured := auth.Group("", middleware.JWT(authSvc))
		secured.GET("/profile", h.Auth.Profile)
		secured.GET("/verify", h.Auth.Verify)
		secured.GET("/users", middleware.RequireRoles(models.RoleAdmin), h.Auth.ListUsers)
	}

	api := r.Group("/api", middleware.JWT(authSvc))
	{
		api.GET("/health", h.Health.Health)

		api.GET("/docentes", h.Teachers.List)
		api.GET("/docentes/:id", h.Teachers.Get)
		api.POST("/docentes", h.Teachers.Create)
		api.PUT("/docentes/:id", h.Teachers.Update)
		api.DELETE("/docentes/:id", middleware.RequireRoles(models.RoleAdmin), h.Teachers.Delete)

		api.GET("/escuelas", h.Schools.List)
		api.GET("/escuelas/:id", h.Schools.Get)
		api.POST("/escuelas", h.Schools.Create)
		api.PUT("/escuelas/:id", h.Schools.Update)
		api.DELETE("/escuelas/:id", middleware.RequireRoles(models.RoleAdmin), h.Schools.Delete)

		api.GET("/expedientes", h.CaseFiles.List)
		api.GET("/expedientes/:id", h.CaseFiles.Get)
		api.POST("/expedientes", h.CaseFiles.Create)
		api.PUT("/expedientes/:id", h.CaseFiles.Update)
		api.DELETE("/expedientes/:id", middleware.RequireRoles(models.RoleAdmin), h.CaseFiles.Delete)
		api.GET("/expedientes/:id/disposiciones", h.CaseFiles.ListDispositions)
		api.POST("/expedientes/:id/relaciones", h.CaseFiles.Associate)
		api.POST("/expedientes/:id/docentes", h.CaseFiles.AssociateTeachers)
		api.DELETE("/expedientes/:id/docentes/:docenteId", h.CaseFiles.DisassociateTeacher)
		api.POST("/expedientes/:id/escuelas", h.CaseFiles.AssociateSchools)
		api.DELETE("/expedientes/:id/escuelas/:escuelaId", h.CaseFiles.DisassociateSchool)

		api.GET("/disposiciones", h.Dispositions.List)
		api.GET("/disposiciones/:id", h.Dispositions.Get)
		api.POST("/disposiciones", h.Dispositions.Create)
		api.PUT("/disposiciones/:id", h.Dispositions.Update)
		api.DELETE("/disposiciones/:id", middleware.RequireRoles(models.RoleAdmin), h.Dispositions.Delete)
	}

	if metricsSvc != nil {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}
}
