package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CareLink/internal/handler"
	"CareLink/internal/listeners"
	"CareLink/internal/models"
	"CareLink/pkg/cache"
	"CareLink/pkg/config"
	"CareLink/pkg/logger"
	"CareLink/pkg/metrics"
	"CareLink/pkg/notification"
	"CareLink/pkg/realtime"
	"CareLink/pkg/scheduler"
	"CareLink/pkg/sse"
	"CareLink/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	cacheStore, err := cache.NewCache(cache.Config{
		Type: cfg.CacheType,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		Local: cache.DefaultLocalConfig(),
	})
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	defer cacheStore.Close()

	hub := realtime.NewHub(realtime.ConfigFromEnv())
	defer hub.Close()

	var feed *sse.Feed
	if cfg.SSEEnabled {
		feed = sse.NewFeed(30 * time.Second)
	}

	// 升级通道未接入具体厂商客户端时为nil，监听器会跳过
	push := notification.NewPush(notification.PushConfig{}, nil)
	sms := notification.NewSMS(notification.SMSConfig{}, nil)
	listeners.InitAlertListeners(db, push, sms)

	sched := scheduler.New(nil)
	registerMaintenanceJobs(sched, db, cfg.AlertRetentionDays)
	sched.Start()
	defer sched.Stop()

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	handlers.NewHandlers(db, hub, cacheStore, feed).Register(engine)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// registerMaintenanceJobs 挂载维护任务：
// 每晚清理超过保留期的告警记录，每分钟刷新系统指标快照日志。
func registerMaintenanceJobs(sched *scheduler.Scheduler, db *gorm.DB, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 90
	}

	if _, err := sched.Add("0 3 * * *", scheduler.FuncJob(func(ctx context.Context) {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		res := db.WithContext(ctx).
			Where("created_at < ?", cutoff).
			Delete(&models.AlertRecord{})
		if res.Error != nil {
			logger.Error("alert retention sweep failed", zap.Error(res.Error))
			return
		}
		logger.Info("alert retention sweep done",
			zap.Int64("deleted", res.RowsAffected),
			zap.Time("cutoff", cutoff))
	})); err != nil {
		logger.Error("register retention job failed", zap.Error(err))
	}

	sched.Every(time.Minute, scheduler.FuncJob(func(ctx context.Context) {
		stats := metrics.CollectSystemStats()
		logger.Debug("system snapshot",
			zap.Float64("cpu_percent", stats.CPU.UsagePercent),
			zap.Float64("mem_percent", stats.Memory.UsagePercent),
			zap.Int("goroutines", stats.Runtime.Goroutines))
	}))
}
