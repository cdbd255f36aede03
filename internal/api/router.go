package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mealmind/internal/api/handlers/health"
	mealHandler "mealmind/internal/api/handlers/meal"
	"mealmind/internal/api/middleware"
	"mealmind/internal/core/meal"
	"mealmind/internal/infrastructure/config"
	"mealmind/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// timeoutDuration 單一請求的處理上限
const timeoutDuration = 30 * time.Second

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, engine *meal.Engine, healthHandler *health.Handler) (*gin.Engine, error) {
	if engine == nil {
		return nil, errors.New("meal engine is required")
	}
	if healthHandler == nil {
		healthHandler = health.NewHandler(cfg.App.Version)
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", common.HeaderRequestID, common.HeaderUserID},
		ExposeHeaders:    []string{"Content-Length", common.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.App.MaxBodyBytes > 0 {
		router.Use(middleware.BodySizeLimit(cfg.App.MaxBodyBytes))
	}
	router.Use(requestTimeout(timeoutDuration))

	// 健康檢查路由
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.UserIdentity(cfg.App.DefaultUserID))
	if cfg.RateLimit.Enabled {
		apiGroup.Use(middleware.RateLimit(
			middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
			cfg.RateLimit.Window,
		))
	}
	apiGroup.Use(middleware.Deduplication(middleware.NewDeduplicator(cfg.DedupWindow)))

	mealHandler.NewHandler(engine, cfg.App.Debug).RegisterRoutes(apiGroup)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrNotFound.ToResponse(false))
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", cfg.App.MaxBodyBytes),
	)

	return router, nil
}

// requestTimeout 設置請求超時
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrGatewayTimeout.ToResponse(false))
		}
	}
}
