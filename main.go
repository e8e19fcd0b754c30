package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"fundingboard/config"
	"fundingboard/internal/dashboard"
	"fundingboard/internal/feed"
	"fundingboard/internal/metrics"
	"fundingboard/internal/poller"
	"fundingboard/internal/state"
	"fundingboard/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}
	log.WithEnv("APP_ENV", "FUNDING_API_URL").Debug("environment loaded")

	configPath := flag.String("config", config.DefaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.Fundingboard.Name,
		"version":     cfg.Fundingboard.Version,
		"environment": config.AppEnvironment(),
	}).Info("starting fundingboard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Init(cfg.Metrics.PrometheusAddress)

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(
			cfg.Metrics.CloudWatch.Region,
			cfg.Metrics.CloudWatch.Namespace,
			cfg.Metrics.CloudWatch.Dashboard,
		)
	}

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	client := feed.NewClient(cfg.Feed, log)
	store := state.NewStore(cfg.Refresh.AutoStart)

	limiter := rate.NewLimiter(rate.Every(cfg.Refresh.ManualRateEvery), cfg.Refresh.ManualRateBurst)
	p := poller.New(client, store, cfg.Refresh.Interval, limiter, log)

	srv, err := dashboard.NewServer(cfg.Dashboard, cfg.Refresh.Interval, store, p, log)
	if err != nil {
		log.WithError(err).Error("failed to create dashboard server")
		os.Exit(1)
	}

	var wg sync.WaitGroup

	p.Start(ctx)

	if srv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.Fundingboard.Name); err != nil {
				log.WithError(err).Error("dashboard server failed")
				cancel()
			}
		}()
		log.WithFields(logger.Fields{"address": srv.Address()}).Info("dashboard available")
	} else {
		log.WithComponent("main").Info("dashboard disabled; running headless")
	}

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
	case <-ctx.Done():
		log.Warn("component failure triggered shutdown")
	}

	log.Info("starting graceful shutdown")
	cancel()

	log.Info("stopping poller")
	p.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown completed")
	case <-time.After(30 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	log.Info("fundingboard stopped")
}
