// Command broker runs expiration sweeps for a simulated brokerage account:
// on each sweep the options expiration engine settles every expired option
// position and the outcome is persisted to the account store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mscarn/paperbroker/internal/config"
	"github.com/mscarn/paperbroker/internal/dashboard"
	"github.com/mscarn/paperbroker/internal/expiration"
	"github.com/mscarn/paperbroker/internal/quotes"
	"github.com/mscarn/paperbroker/internal/storage"
)

func main() {
	var (
		configPath string
		dateStr    string
		once       bool
	)
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&dateStr, "date", "", "Processing date (YYYY-MM-DD, default today)")
	flag.BoolVar(&once, "once", false, "Run a single sweep and exit")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Environment.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	processingDate := time.Now().UTC()
	if dateStr != "" {
		processingDate, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			logger.Fatalf("Invalid -date %q: %v", dateStr, err)
		}
		once = true // an explicit date only makes sense for a one-shot sweep
	}

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to build quote provider: %v", err)
	}

	engine := expiration.NewEngine(provider, expiration.Config{
		QuoteConcurrency: cfg.GetQuoteConcurrency(),
		Logger:           logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping...")
		cancel()
	}()

	var dash *dashboard.Server
	if cfg.Dashboard.Enabled {
		dash = dashboard.NewServer(dashboard.Config{
			Port:      cfg.Dashboard.Port,
			AuthToken: cfg.Dashboard.AuthToken,
		}, store, logger)
		go func() {
			if err := dash.Start(); err != nil {
				logger.WithError(err).Warn("Dashboard server stopped")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := dash.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Dashboard shutdown failed")
			}
		}()
	}

	if once {
		if err := runSweep(ctx, engine, store, processingDate, logger); err != nil {
			logger.Fatalf("Sweep failed: %v", err)
		}
		return
	}

	interval := cfg.GetSweepInterval()
	logger.Infof("Running expiration sweeps every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runSweep(ctx, engine, store, time.Now().UTC(), logger); err != nil {
			logger.WithError(err).Error("Sweep failed")
		}
		select {
		case <-ctx.Done():
			logger.Info("Broker stopped")
			return
		case <-ticker.C:
		}
	}
}

func buildProvider(cfg *config.Config, logger *logrus.Logger) (quotes.Provider, error) {
	var provider quotes.Provider
	switch cfg.Quotes.Provider {
	case "static":
		provider = quotes.NewStaticProvider(cfg.Quotes.Prices)
	case "http":
		provider = quotes.NewHTTPProvider(cfg.Quotes.APIEndpoint, cfg.Quotes.APIKey, logger)
	default:
		return nil, fmt.Errorf("unknown quotes provider: %s", cfg.Quotes.Provider)
	}
	if cfg.Quotes.UseCircuitBreaker {
		provider = quotes.NewCircuitBreakerProvider(provider, logger)
	}
	return provider, nil
}

func runSweep(
	ctx context.Context,
	engine *expiration.Engine,
	store storage.Interface,
	processingDate time.Time,
	logger *logrus.Logger,
) error {
	account, err := store.GetAccount()
	if err != nil {
		return fmt.Errorf("loading account: %w", err)
	}

	result, err := engine.ProcessAccountExpirations(ctx, account, processingDate)
	if err != nil {
		return fmt.Errorf("processing expirations: %w", err)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	for _, procErr := range result.Errors {
		logger.Error(procErr)
	}

	if result.EventCount() == 0 {
		logger.WithField("date", processingDate.Format("2006-01-02")).Info("No expirations to process")
		return nil
	}

	if err := store.ApplyResult(result); err != nil {
		return fmt.Errorf("persisting result: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"run_id":      result.RunID,
		"cash_impact": fmt.Sprintf("%.2f", result.CashImpact),
		"events":      result.EventCount(),
	}).Info("Expiration sweep applied")
	return nil
}
