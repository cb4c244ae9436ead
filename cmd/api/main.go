package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jp3/expedientes-api/api/swagger"
	"github.com/jp3/expedientes-api/internal/authprovider"
	"github.com/jp3/expedientes-api/internal/handler"
	"github.com/jp3/expedientes-api/internal/middleware"
	"github.com/jp3/expedientes-api/internal/repository"
	"github.com/jp3/expedientes-api/internal/service"
	"github.com/jp3/expedientes-api/pkg/config"
	"github.com/jp3/expedientes-api/pkg/database"
	"github.com/jp3/expedientes-api/pkg/logger"
	corsmiddleware "github.com/jp3/expedientes-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jp3/expedientes-api/pkg/middleware/requestid"
)

// @title Expedientes API
// @version 1.0.0
// @description Records management backend for docentes, escuelas, expedientes and disposiciones
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	caseFileRepo := repository.NewCaseFileRepository(db)
	dispositionRepo := repository.NewDispositionRepository(db)

	provider := authprovider.New(authprovider.Config{
		BaseURL:        cfg.Auth.BaseURL,
		AnonKey:        cfg.Auth.AnonKey,
		ServiceRoleKey: cfg.Auth.ServiceRoleKey,
		Timeout:        cfg.Auth.Timeout,
	})

	authSvc := service.NewAuthService(provider, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		AdminAlias:  cfg.Auth.AdminAlias,
		AdminEmail:  cfg.Auth.AdminEmail,
		UserAlias:   cfg.Auth.UserAlias,
		UserEmail:   cfg.Auth.UserEmail,
	})
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	schoolSvc := service.NewSchoolService(schoolRepo, validate, logr)
	caseFileSvc := service.NewCaseFileService(caseFileRepo, teacherRepo, schoolRepo, validate, logr)
	dispositionSvc := service.NewDispositionService(dispositionRepo, teacherRepo, schoolRepo, validate, logr)
	metricsSvc := service.NewMetricsService()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Teachers:     handler.NewTeacherHandler(teacherSvc),
		Schools:      handler.NewSchoolHandler(schoolSvc),
		CaseFiles:    handler.NewCaseFileHandler(caseFileSvc, dispositionSvc),
		Dispositions: handler.NewDispositionHandler(dispositionSvc),
		Health:       handler.NewHealthHandler(db, cfg.Version, cfg.Env),
	}
	handler.RegisterRoutes(r, handlers, authSvc, metricsSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
