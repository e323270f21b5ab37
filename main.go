package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dosetrack/backend/internal/audit"
	"github.com/dosetrack/backend/internal/config"
	"github.com/dosetrack/backend/internal/handler"
	"github.com/dosetrack/backend/internal/middleware"
	"github.com/dosetrack/backend/internal/repository"
	"github.com/dosetrack/backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Repositories
	medicineRepo := repository.NewMedicineRepository(pool, logger)
	intakeEventRepo := repository.NewIntakeEventRepository(pool, logger)
	scheduleCache := repository.NewScheduleCacheRepository(pool, logger)

	// Services
	auditLogger := audit.NewLogger(pool, logger)
	inventoryLedger := service.NewInventoryLedger(medicineRepo, logger)
	medicineService := service.NewMedicineService(medicineRepo, auditLogger, logger)
	scheduleService := service.NewScheduleService(medicineRepo, intakeEventRepo, scheduleCache, logger)
	intakeService := service.NewIntakeService(intakeEventRepo, medicineRepo, inventoryLedger, auditLogger, logger)

	// Handlers
	medicineHandler := handler.NewMedicineHandler(medicineService, logger)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, logger)
	intakeHandler := handler.NewIntakeHandler(intakeService, logger)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/schedule", scheduleHandler.GetDailySchedule)
		v1.GET("/schedule/upcoming", scheduleHandler.GetUpcomingDoses)

		v1.POST("/intake/:id/take", intakeHandler.TakeDose)
		v1.POST("/intake/:id/skip", intakeHandler.SkipDose)
		v1.POST("/intake/:id/miss", intakeHandler.MarkDoseMissed)

		v1.GET("/medicines", medicineHandler.ListMedicines)
		v1.POST("/medicines", medicineHandler.CreateMedicine)
		v1.PUT("/medicines/:id", medicineHandler.UpdateMedicine)
		v1.DELETE("/medicines/:id", medicineHandler.DeleteMedicine)
		v1.POST("/medicines/:id/pause", medicineHandler.PauseMedicine)
		v1.POST("/medicines/:id/resume", medicineHandler.ResumeMedicine)
	}

	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "dosetrack-backend",
		})
	})

	// Missed-dose sweeper: doses with no recorded action become MISSED once
	// the grace period has elapsed past their scheduled time.
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.Sweeper.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-sweeperCtx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-cfg.Sweeper.GracePeriod)
				if _, err := intakeService.MarkOverdueMissed(sweeperCtx, cutoff, cfg.Sweeper.BatchSize); err != nil {
					logger.Error("missed-dose sweep failed", zap.Error(err))
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
