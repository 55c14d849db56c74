package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/onerilhan/go-point-api/internal/config"
	"github.com/onerilhan/go-point-api/internal/handlers"
	"github.com/onerilhan/go-point-api/internal/idgen"
	"github.com/onerilhan/go-point-api/internal/logger"
	"github.com/onerilhan/go-point-api/internal/middleware"
	"github.com/onerilhan/go-point-api/internal/repository"
	"github.com/onerilhan/go-point-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Int("workers", cfg.WorkerCount).
		Int("queue_size", cfg.QueueSize).
		Msg("🚀 Point API başlatıldı")

	ids, err := idgen.New(cfg.HistoryIDGenerator, cfg.SnowflakeNodeID)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ History id generator oluşturulamadı")
	}

	// Repository, Service, Handler katmanları
	balanceRepo := repository.NewBalanceRepository()
	historyRepo := repository.NewHistoryRepository(ids)

	pointService := services.NewPointService(balanceRepo, historyRepo, services.NewLockRegistry())

	pointQueue := services.NewPointQueue(cfg.WorkerCount, pointService, cfg.QueueSize)
	pointQueue.Start()

	pointHandler := handlers.NewPointHandler(pointQueue, cfg.RequestTimeout)

	// Arka plan işleri (rate limiter temizliği) için
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	routerOpts := handlers.RouterOptions{
		Recovery: middleware.DefaultRecoveryConfig(),
		Logging:  middleware.DefaultLoggingConfig(),
		Metrics:  middleware.NewMetrics(nil),
	}
	if cfg.AppEnv == "development" {
		routerOpts.Recovery = middleware.DevelopmentRecoveryConfig()
	}
	if cfg.RateLimitRPM > 0 {
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerMinute = cfg.RateLimitRPM
		rateCfg.Burst = cfg.RateLimitBurst
		routerOpts.RateLimit = middleware.NewRateLimitMiddleware(bgCtx, rateCfg)
	}

	router := handlers.NewRouter(pointHandler, routerOpts)

	writeTimeout := 15 * time.Second
	if cfg.RequestTimeout > 0 {
		writeTimeout = cfg.RequestTimeout + 5*time.Second
	}

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Dur("request_timeout", cfg.RequestTimeout).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat, yeni istek alma
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Kuyruktaki işleri bitir; süre dolarsa kilit bekleyenler kesilir
	if err := pointQueue.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Point queue süresinde boşaltılamadı")
	} else {
		log.Info().Msg("✅ Point queue başarıyla kapatıldı")
	}

	log.Info().Msg("👋 Point API başarıyla kapatıldı")
}
