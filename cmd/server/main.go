package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "flowcal/api/swagger"
	"flowcal/internal/handler"
	"flowcal/internal/middleware"
	"flowcal/internal/repository"
	"flowcal/internal/service"
	"flowcal/pkg/cache"
	"flowcal/pkg/config"
	"flowcal/pkg/database"
	"flowcal/pkg/logger"
	corsmiddleware "flowcal/pkg/middleware/cors"
	reqidmiddleware "flowcal/pkg/middleware/requestid"
)

// @title Flowcal API
// @version 1.0.0
// @description Single-user calendar service
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, event cache disabled", "error", err)
			cfg.Cache.Enabled = false
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	eventSvc := service.NewEventService(eventRepo, cacheRepo, validate, logr, service.EventCacheConfig{
		Enabled: cfg.Cache.Enabled,
		TTL:     cfg.Cache.TTL,
	})
	layoutSvc := service.NewLayoutService()
	metricsSvc := service.NewMetricsService()

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(eventSvc, logr)
	}

	cookie := handler.SessionCookie{
		Name:   cfg.JWT.CookieName,
		MaxAge: int(cfg.JWT.Expiration.Seconds()),
		Secure: cfg.Env == config.EnvProduction,
	}
	authHandler := handler.NewAuthHandler(authSvc, cookie)
	var eventHandler *handler.EventHandler
	if exportSvc != nil {
		eventHandler = handler.NewEventHandler(eventSvc, layoutSvc, exportSvc, metricsSvc)
	} else {
		eventHandler = handler.NewEventHandler(eventSvc, layoutSvc, nil, metricsSvc)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.Session(authSvc, cfg.JWT.CookieName), authHandler.Me)

	events := api.Group("/events")
	events.Use(middleware.Session(authSvc, cfg.JWT.CookieName))
	events.Use(middleware.WithResponseMeta())
	events.GET("", eventHandler.List)
	events.POST("", eventHandler.Create)
	events.GET("/week", eventHandler.Week)
	events.GET("/export", eventHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
