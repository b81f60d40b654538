package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospilink-data/internal/beds"
	"hospilink-data/internal/config"
	httpapi "hospilink-data/internal/http"
	"hospilink-data/internal/repository"
	"hospilink-data/internal/service"
	"hospilink-data/internal/store"
	"hospilink-data/pkg/database"
	"hospilink-data/pkg/logger"
	"hospilink-data/pkg/mqtt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "hospilink-data")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	// 患者目录同步（入出院状态回写，默认禁用）
	var syncClient beds.SyncClient
	if cfg.Sync.Enabled {
		syncClient = service.NewPatientSyncClient(cfg.Sync.BaseURL, cfg.Sync.APIKey, log)
		log.Info("patient status sync enabled", zap.String("base_url", cfg.Sync.BaseURL))
	}

	// TAT 超时报警：MQTT 可用时走 broker，否则只打日志
	var notifier beds.AlertNotifier = service.NewLogAlertNotifier(log)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		if mc, err := mqtt.NewClient(&cfg.MQTT); err == nil {
			mqttClient = mc
			notifier = service.NewMQTTAlertNotifier(mc, cfg.MQTT.Topic, log)
			log.Info("MQTT alert notifier enabled", zap.String("topic", cfg.MQTT.Topic))
		} else {
			log.Warn("MQTT enabled but connection failed, falling back to log notifier", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := beds.NewTracker(kv, syncClient, notifier, log)
	if err := tracker.Load(ctx); err != nil {
		log.Error("failed to load bed snapshot", zap.Error(err))
		os.Exit(1)
	}
	go tracker.Run(ctx)

	// Optional DB-backed patient/doctor/bill APIs
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for hospilink-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	var patientsRepo repository.PatientsRepository
	var doctorsRepo repository.DoctorsRepository
	var billsRepo repository.BillsRepository
	if db != nil {
		patientsRepo = repository.NewPostgresPatientsRepository(db)
		doctorsRepo = repository.NewPostgresDoctorsRepository(db)
		billsRepo = repository.NewPostgresBillsRepository(db)
	} else {
		// DB 未就绪：内存 repo 支持联测（列表/汇总页面不再因无 DB 失败）
		patientsRepo = repository.NewMemoryPatientsRepository()
		doctorsRepo = repository.NewMemoryDoctorsRepository()
		billsRepo = repository.NewMemoryBillsRepository()
	}

	router := httpapi.NewRouter(log)
	router.RegisterBedRoutes(httpapi.NewBedHandler(tracker, log))
	router.RegisterPatientRoutes(httpapi.NewPatientHandler(patientsRepo, doctorsRepo, kv, log))
	router.RegisterBillRoutes(httpapi.NewBillHandler(billsRepo, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if db != nil {
		_ = db.Close()
	}
}
