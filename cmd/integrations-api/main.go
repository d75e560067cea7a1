package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/inbalnitzani/Integrations/api/swagger"
	"github.com/inbalnitzani/Integrations/internal/handler"
	"github.com/inbalnitzani/Integrations/internal/middleware"
	"github.com/inbalnitzani/Integrations/internal/repository"
	"github.com/inbalnitzani/Integrations/internal/service"
	"github.com/inbalnitzani/Integrations/pkg/cache"
	"github.com/inbalnitzani/Integrations/pkg/config"
	"github.com/inbalnitzani/Integrations/pkg/database"
	"github.com/inbalnitzani/Integrations/pkg/logger"
	corsmiddleware "github.com/inbalnitzani/Integrations/pkg/middleware/cors"
	reqidmiddleware "github.com/inbalnitzani/Integrations/pkg/middleware/requestid"
)

// @title Integrations Catalog API
// @version 1.0.0
// @description Catalog of third-party service integrations with AI-assisted autofill
// @BasePath /
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The supplier cache is an optimisation; the API works without it.
		logr.Sugar().Warnw("redis unavailable, supplier cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "integrations-api",
	})
	integrationService := service.NewIntegrationService(integrationRepo, cacheRepo, cfg.Suppliers.CacheTTL, validate, logr)
	exportService := service.NewExportService(integrationRepo, logr)
	metricsService := service.NewMetricsService()
	autofillService := service.NewAutofillService(cfg.OpenAI, cfg.Autofill, metricsService, logr)

	authHandler := handler.NewAuthHandler(authService)
	integrationHandler := handler.NewIntegrationHandler(integrationService, exportService)
	autofillHandler := handler.NewAutofillHandler(autofillService, metricsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Function route, kept URL-compatible with the original edge function.
	// It carries its own permissive CORS headers, so the shared CORS
	// middleware is applied to the API group only.
	r.POST("/functions/generate-integration-fields", autofillHandler.Generate)
	r.OPTIONS("/functions/generate-integration-fields", autofillHandler.Preflight)

	api := r.Group(cfg.APIPrefix, corsmiddleware.New(cfg.CORS.AllowedOrigins))

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	integrations := api.Group("/integrations", middleware.JWT(authService))
	integrations.GET("", integrationHandler.List)
	integrations.GET("/suppliers", integrationHandler.Suppliers)
	integrations.GET("/export", integrationHandler.Export)
	integrations.POST("/autofill", autofillHandler.Merge)
	integrations.GET("/:id", integrationHandler.Get)
	integrations.POST("", integrationHandler.Create)
	integrations.PUT("/:id", integrationHandler.Update)
	integrations.DELETE("/:id", integrationHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
