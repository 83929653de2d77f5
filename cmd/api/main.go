package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/api"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/application"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/config"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/infrastructure/memory"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-cinema-seat-hold/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/metrics"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/worker"
)

func main() {
	// 設定読み込み
	cfg := config.Load()

	// ロガー初期化
	env := os.Getenv("APP_ENV")
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// ホールドストア選択
	// Redisに接続できればRedis（TTLで自然失効）、できなければ
	// インメモリ＋リーパーで代替する
	var holdStore hold.Store
	var reaper *worker.ExpiredHoldReaper

	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis接続に失敗、インメモリストアで起動", zap.Error(err))
		memStore := memory.NewHoldStore()
		holdStore = memStore
		reaper = worker.NewExpiredHoldReaper(memStore, cfg.Hold.ReapInterval)
	} else {
		defer redisClient.Close()
		holdStore = redisinfra.NewHoldStore(redisClient)
	}

	// サービス組み立て
	showtimeRepo := postgres.NewShowtimeRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	seatMapService := application.NewSeatMapService(showtimeRepo, holdStore, cfg.Hold.TTL, m)
	commitService := application.NewCommitService(db, showtimeRepo, orderRepo, holdStore)
	showtimeService := application.NewShowtimeService(showtimeRepo)

	// ハンドラー
	seatMapHandler := handler.NewSeatMapHandler(seatMapService)
	commitHandler := handler.NewCommitHandler(commitService)
	showtimeHandler := handler.NewShowtimeHandler(showtimeService)
	healthHandler := handler.NewHealthHandler()

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.Setup(e, m)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/showtimes", showtimeHandler.Create)
	v1.GET("/showtimes/:id", showtimeHandler.GetByID)
	v1.GET("/showtimes/:id/seats", seatMapHandler.GetSeats)
	v1.POST("/showtimes/:id/seats/acquire", seatMapHandler.Acquire)
	v1.POST("/showtimes/:id/seats/release", seatMapHandler.Release)
	v1.POST("/showtimes/:id/commit", commitHandler.Commit)
	v1.GET("/orders/:order_id", commitHandler.GetOrder)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	// ワーカー起動
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if reaper != nil {
		go reaper.Start(workerCtx)
	}

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	if reaper != nil {
		reaper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
