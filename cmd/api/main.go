package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealmind/internal/api"
	"mealmind/internal/api/handlers/health"
	"mealmind/internal/core/cache"
	"mealmind/internal/core/meal"
	"mealmind/internal/core/service"
	"mealmind/internal/infrastructure/config"
	"mealmind/internal/infrastructure/database"
	"mealmind/internal/infrastructure/memory"
	"mealmind/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 載入設定（.env 為選用）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	healthHandler := health.NewHandler(cfg.App.Version)

	// 資料存取
	store, db, err := openStore(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize store", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			common.LogError("Failed to close database", zap.Error(err))
		}
	}()
	if db != nil {
		healthHandler.AddCheck("database", func(ctx context.Context) error {
			return database.Ping(ctx, db)
		})
	}

	// 外部回應快取
	cacheStore, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	defer cacheStore.Close()

	rng := meal.NewRand(cfg.Engine.Seed)

	// 外部食譜來源
	var source meal.RecipeSource
	if cfg.MealDB.Enabled {
		client := service.NewMealDBClient(cfg.MealDB, cacheStore, rng)
		healthHandler.AddUpstream("mealdb", client.BreakerState)
		source = client
	}

	engine := meal.NewEngine(store, source, meal.Options{
		CooldownDays:   cfg.Engine.CooldownDays,
		FuzzyCutoff:    cfg.Engine.FuzzyCutoff,
		Similarity:     meal.LevenshteinSimilarity,
		NameHitLimit:   cfg.Engine.NameHitLimit,
		AltLimit:       cfg.Engine.AltLimit,
		HistoryLimit:   cfg.Engine.HistoryLimit,
		DefaultCuisine: cfg.MealDB.DefaultCuisine,
		Discovery: meal.DiscoveryOptions{
			Total:          cfg.Discovery.Total,
			LibraryTarget:  cfg.Discovery.LibraryTarget,
			WebTarget:      cfg.Discovery.WebTarget,
			Areas:          cfg.MealDB.DiscoveryAreas,
			AreaFetchLimit: cfg.MealDB.AreaFetchLimit,
		},
		Rand: rng,
	})

	router, err := api.SetupRouter(cfg, engine, healthHandler)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo(common.MsgStartup,
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
			zap.String("database_driver", cfg.Database.Driver),
			zap.Bool("mealdb_enabled", cfg.MealDB.Enabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo(common.MsgShutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo(common.MsgExited)
}

// openStore 依設定選擇 postgres 或記憶體 Store；記憶體模式下 db 為 nil
func openStore(cfg *config.Config) (meal.Store, *gorm.DB, error) {
	if cfg.Database.Driver == "memory" {
		common.LogWarn("使用記憶體資料庫，重啟後資料會消失")
		return memory.NewStore(), nil, nil
	}

	db, err := database.Open(cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
	}
	return database.NewStore(db), db, nil
}
