package main

import (
	"Crosswire/internal/api/config"
	"Crosswire/internal/pkg/database"
	"Crosswire/internal/pkg/logger"
	"Crosswire/internal/pkg/metricstore"
	"Crosswire/internal/pkg/redis"
	"Crosswire/internal/pkg/storage"
	"Crosswire/internal/wire"
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger()

	// 数据库连接
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		panic(err)
	}

	// Redis 连接
	redisCfg := config.Cfg.Redis
	err = redis.InitRedis(redisCfg)
	if err != nil {
		log.Error("Fatal error: failed to create redis connection", "err", err)
		panic(err)
	}

	// MinIO 连接
	err = storage.Init()
	if err != nil {
		log.Error("Fatal error: failed to initialize MinIO", "err", err)
		panic(err)
	}

	// ClickHouse 指标库连接
	sink, err := metricstore.Connect(cfg.ClickHouse)
	if err != nil {
		log.Error("Fatal error: failed to initialize ClickHouse", "err", err)
		panic(err)
	}

	// 依赖注入
	app, err := wire.BuildApplication(db, sink, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 存量凭证补种签发时间（可选，一次性）
	if cfg.Token.Backfill {
		if err = app.TokenSvc.BackfillIssuedAt(ctx); err != nil {
			log.Error("Failed to backfill credential issued_at", "err", err)
		}
	}

	// 定时任务
	if err = app.Dispatcher.Start(); err != nil {
		log.Error("Fatal error: failed to start dispatch scheduler", "err", err)
		panic(err)
	}
	if err = app.Monitor.Start(); err != nil {
		log.Error("Fatal error: failed to start performance monitor", "err", err)
		panic(err)
	}
	if err = app.TokenManager.Start(); err != nil {
		log.Error("Fatal error: failed to start token lifecycle manager", "err", err)
		panic(err)
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Schedulers stopping...")
		app.Dispatcher.Stop()
		app.Monitor.Stop()
		app.TokenManager.Stop()
		return nil
	})

	// Kafka 消费者
	g.Go(func() error {
		log.Info("Kafka Consumers starting...")
		return app.KafkaManager.Start(ctx, cfg)
	})

	// HTTP 服务器
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: app.Router,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "port", cfg.Server.Port)
		if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err = srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	log.Info("App exited successfully.")
}
