package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campus-forge/timetable-api/api/swagger"
	"github.com/campus-forge/timetable-api/internal/handler"
	internalmiddleware "github.com/campus-forge/timetable-api/internal/middleware"
	"github.com/campus-forge/timetable-api/internal/models"
	"github.com/campus-forge/timetable-api/internal/repository"
	"github.com/campus-forge/timetable-api/internal/service"
	"github.com/campus-forge/timetable-api/pkg/cache"
	"github.com/campus-forge/timetable-api/pkg/config"
	"github.com/campus-forge/timetable-api/pkg/database"
	"github.com/campus-forge/timetable-api/pkg/logger"
	corsmiddleware "github.com/campus-forge/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-forge/timetable-api/pkg/middleware/requestid"
	"github.com/campus-forge/timetable-api/pkg/storage"
)

// @title Campus Timetable API
// @version 1.0.0
// @description Academic timetable generation and catalog management service
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Timetable.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Timetable.CacheTTL, logr, true)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Timetable.CacheTTL, logr, false)
	}

	departmentRepo := repository.NewDepartmentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	departmentService := service.NewDepartmentService(departmentRepo, nil, logr)
	semesterService := service.NewSemesterService(semesterRepo, departmentRepo, nil, logr)
	subjectService := service.NewSubjectService(subjectRepo, semesterRepo, nil, logr)
	facultyService := service.NewFacultyService(facultyRepo, subjectRepo, nil, logr)
	roomService := service.NewRoomService(roomRepo, nil, logr)
	divisionService := service.NewDivisionService(divisionRepo, semesterRepo, nil, logr)
	calendarService := service.NewCalendarService(calendarRepo, nil, logr)
	timetableService := service.NewTimetableService(
		calendarRepo,
		divisionRepo,
		subjectRepo,
		facultyRepo,
		roomRepo,
		semesterRepo,
		timetableRepo,
		cacheService,
		metricsService,
		logr,
		cfg.Scheduler.Seed,
		cfg.Scheduler.RunTimeout,
	)
	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "timetable-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportService *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewExportService(exportJobRepo, timetableRepo, service.ExportServiceConfig{
			Store:            store,
			Signer:           signer,
			Workers:          cfg.Exports.WorkerConcurrency,
			MaxRetries:       cfg.Exports.WorkerRetries,
			DownloadBasePath: cfg.APIPrefix + "/exports/download",
			CleanupInterval:  cfg.Exports.CleanupInterval,
			FileTTL:          cfg.Exports.SignedURLTTL,
		}, nil, logr)
		exportService.Start(ctx)
		defer exportService.Stop()
	}

	authHandler := handler.NewAuthHandler(authService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	semesterHandler := handler.NewSemesterHandler(semesterService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	facultyHandler := handler.NewFacultyHandler(facultyService)
	roomHandler := handler.NewRoomHandler(roomService)
	divisionHandler := handler.NewDivisionHandler(divisionService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	timetableHandler := handler.NewTimetableHandler(timetableService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(internalmiddleware.JWT(authService))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)

	adminOnly := internalmiddleware.RequireRoles(models.RoleAdmin)

	authed.GET("/departments", departmentHandler.List)
	authed.GET("/departments/:id", departmentHandler.Get)
	authed.POST("/departments", adminOnly, departmentHandler.Create)
	authed.PUT("/departments/:id", adminOnly, departmentHandler.Update)
	authed.DELETE("/departments/:id", adminOnly, departmentHandler.Delete)

	authed.GET("/semesters", semesterHandler.List)
	authed.GET("/semesters/:id", semesterHandler.Get)
	authed.POST("/semesters", adminOnly, semesterHandler.Create)
	authed.PUT("/semesters/:id", adminOnly, semesterHandler.Update)
	authed.DELETE("/semesters/:id", adminOnly, semesterHandler.Delete)
	authed.GET("/semesters/:id/subjects", subjectHandler.ListBySemester)

	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/:id", subjectHandler.Get)
	authed.POST("/subjects", adminOnly, subjectHandler.Create)
	authed.PUT("/subjects/:id", adminOnly, subjectHandler.Update)
	authed.DELETE("/subjects/:id", adminOnly, subjectHandler.Delete)

	authed.GET("/faculty", facultyHandler.List)
	authed.GET("/faculty/:id", facultyHandler.Get)
	authed.POST("/faculty", adminOnly, facultyHandler.Create)
	authed.PUT("/faculty/:id", adminOnly, facultyHandler.Update)
	authed.DELETE("/faculty/:id", adminOnly, facultyHandler.Delete)

	authed.GET("/rooms", roomHandler.List)
	authed.GET("/rooms/:id", roomHandler.Get)
	authed.POST("/rooms", adminOnly, roomHandler.Create)
	authed.PUT("/rooms/:id", adminOnly, roomHandler.Update)
	authed.DELETE("/rooms/:id", adminOnly, roomHandler.Delete)

	authed.GET("/divisions", divisionHandler.List)
	authed.GET("/divisions/:id", divisionHandler.Get)
	authed.POST("/divisions", adminOnly, divisionHandler.Create)
	authed.PUT("/divisions/:id", adminOnly, divisionHandler.Update)
	authed.DELETE("/divisions/:id", adminOnly, divisionHandler.Delete)

	authed.GET("/calendar", calendarHandler.Get)
	authed.GET("/calendar/history", calendarHandler.History)
	authed.PUT("/calendar", adminOnly, calendarHandler.Put)

	authed.GET("/timetable", timetableHandler.List)
	authed.GET("/timetable/divisions/:id/grid", timetableHandler.Grid)
	authed.POST("/timetable/generate", adminOnly, timetableHandler.Generate)
	authed.DELETE("/timetable", adminOnly, timetableHandler.Reset)

	if exportService != nil {
		exportHandler := handler.NewExportHandler(exportService)
		authed.POST("/exports", exportHandler.Create)
		authed.GET("/exports/:id", exportHandler.Status)
		// Download auth rides on the signed token, not the JWT.
		api.GET("/exports/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
