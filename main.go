package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IT-26211-Group-1/adultna-sub002/internal/api"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/audio"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/config"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/grading"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/interviewer"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/logger"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/metrics"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/session"
	"github.com/IT-26211-Group-1/adultna-sub002/internal/storage"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const coachConfigPath = "config/coach.yaml"

func main() {
	fmt.Println("🚀 Starting AdultNa Interview Coach...")

	// Загружаем переменные окружения; файл .env необязателен
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Файл .env не найден, используются переменные окружения")
	}

	appCfg := config.LoadAppConfig()
	if err := appCfg.Validate(); err != nil {
		log.Fatalf("Ошибка конфигурации окружения: %v", err)
	}

	cfg, err := config.Load(coachConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации тренажёра: %v", err)
	}

	zlog := logger.New(appCfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, appCfg, cfg, zlog)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("тренажёр завершился с ошибкой", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
	_ = zlog.Sync()
}

func run(ctx context.Context, appCfg *config.AppConfig, cfg *config.Config, zlog *zap.Logger) error {
	store, err := storage.NewStore(ctx, appCfg.Storage)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}
	zlog.Info("хранилище инициализировано", zap.String("type", appCfg.Storage.Type))

	m := metrics.NewMetrics()
	if appCfg.Metrics.Addr != "" {
		server := serveMetrics(appCfg.Metrics.Addr, m, zlog)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	client := api.New(appCfg.API.BaseURL,
		api.WithToken(appCfg.API.Token),
		api.WithTimeout(appCfg.API.Timeout),
		api.WithRateLimit(appCfg.API.RateLimit, appCfg.API.RateBurst),
		api.WithLogger(zlog.Named("api")),
		api.WithMetrics(m),
	)

	grader := grading.New(client, grading.Policy{
		Interval:  cfg.Polling.Interval,
		MaxRounds: cfg.Polling.MaxRounds,
	}, zlog.Named("grading"), m)

	var player audio.Player = audio.NopPlayer{}
	if cfg.Audio.Enabled {
		player = audio.NewCommandPlayer(cfg.Audio.PlayerCommand)
	}
	pref := audio.LoadPreference(ctx, store, cfg.Audio.PreferenceKey, cfg.PreferenceTTL(), zlog.Named("audio"))
	coordinator := audio.NewCoordinator(client, player, pref, cfg.Audio.AutoplayDelay, zlog.Named("audio"), m)

	machine := session.New(ctx, store,
		session.WithKey(cfg.Session.StorageKey),
		session.WithTTL(cfg.SessionTTL()),
		session.WithLogger(zlog.Named("session")),
	)

	userID := appCfg.UserID
	if userID == "" {
		userID = uuid.NewString()
		zlog.Warn("ADULTNA_USER_ID не задан, используется временный идентификатор", zap.String("user_id", userID))
	}

	svc := interviewer.New(interviewer.Dependencies{
		Catalog:    cfg,
		Machine:    machine,
		Sessions:   client,
		Grader:     grader,
		Audio:      coordinator,
		Metrics:    m,
		Logger:     zlog,
		UserID:     userID,
		ResultsDir: appCfg.Storage.ResultsDir,
	}, os.Stdin, os.Stdout)

	fmt.Println("\n📋 Configuration:")
	fmt.Printf("• Fields in catalog: %d\n", len(cfg.Fields))
	fmt.Printf("• Grading poll: every %s, up to %d rounds\n", cfg.Polling.Interval, cfg.Polling.MaxRounds)
	fmt.Printf("• Storage: %s\n", appCfg.Storage.Type)

	// чтение stdin не прерывается сигналом, поэтому ждем либо сценарий, либо отмену
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		coordinator.Stop()
		fmt.Println("\n👋 Progress saved. See you next time!")
		return ctx.Err()
	}
}

func serveMetrics(addr string, m *metrics.Metrics, zlog *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("ошибка сервера метрик", zap.Error(err))
		}
	}()
	zlog.Info("метрики доступны", zap.String("addr", addr))

	return server
}
