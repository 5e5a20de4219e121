package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sortelab/lotogenius/internal/caixa"
	"github.com/sortelab/lotogenius/internal/config"
	"github.com/sortelab/lotogenius/internal/engine"
	"github.com/sortelab/lotogenius/internal/generator"
	"github.com/sortelab/lotogenius/internal/logger"
	"github.com/sortelab/lotogenius/internal/models"
	"github.com/sortelab/lotogenius/internal/score"
	"github.com/sortelab/lotogenius/internal/storage"
	"github.com/sortelab/lotogenius/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	runOnce    = flag.Bool("once", false, "Run a single analysis cycle and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(
		cfg.Storage.MaxResults,
		cfg.Storage.DBPath,
	)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	primary := caixa.NewClient(cfg.Caixa.BaseURL, cfg.Caixa.Timeout, cfg.Caixa.MaxRetries, cfg.Caixa.RetryDelay)
	var mirror *caixa.Client
	if cfg.Caixa.MirrorURL != "" {
		mirror = caixa.NewClient(cfg.Caixa.MirrorURL, cfg.Caixa.Timeout, cfg.Caixa.MaxRetries, cfg.Caixa.RetryDelay)
	}
	aggregator := caixa.NewAggregator(primary, mirror, cfg.Caixa.BatchSize, cfg.Caixa.BatchDelay)

	eng := engine.New(
		aggregator,
		store,
		generator.New(rand.NewSource(time.Now().UnixNano())),
		score.New(rand.NewSource(time.Now().UnixNano())),
		cfg.Analysis.MinSample,
		cfg.Caixa.MaxDraws,
	)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	logger.Info("Starting analysis service (interval: %v, variants: %v, games_per_run: %d)",
		cfg.Analysis.PollInterval,
		cfg.Analysis.Variants,
		cfg.Analysis.GamesPerRun,
	)

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Analysis cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial analysis cycle")
	handleCycleResult(runAnalysisCycle(ctx, eng, telegramClient, cfg))

	if *runOnce {
		logger.Info("Single-shot run complete")
		return
	}

	ticker := time.NewTicker(cfg.Analysis.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled analysis cycle")
			handleCycleResult(runAnalysisCycle(ctx, eng, telegramClient, cfg))
			if err := store.RotateResults(); err != nil {
				logger.Warn("Failed to rotate results: %v", err)
			}
		}
	}
}

// runAnalysisCycle analyzes every configured variant. A variant failure does
// not stop the rest of the cycle; the cycle fails only when every variant
// failed.
func runAnalysisCycle(
	ctx context.Context,
	eng *engine.Engine,
	telegramClient *telegram.Client,
	cfg *config.Config,
) error {
	startTime := time.Now()
	logger.Info("Starting analysis cycle")

	var lastErr error
	succeeded := 0
	for _, slug := range cfg.Analysis.Variants {
		variant, ok := models.VariantBySlug(slug)
		if !ok {
			// Validate catches this at startup; kept for safety.
			logger.Warn("Skipping unknown variant %q", slug)
			continue
		}

		result, err := eng.RunAnalysis(ctx, cfg.Analysis.UserID, variant, 0, cfg.Analysis.GamesPerRun)
		if err != nil {
			lastErr = fmt.Errorf("%s analysis failed: %w", slug, err)
			logger.Error("Analysis failed for %s: %v", slug, err)
			continue
		}
		succeeded++

		if cfg.Telegram.Enabled && telegramClient != nil && result.GamesGenerated > 0 {
			if err := telegramClient.Send(variant, result); err != nil {
				logger.Error("Failed to send Telegram notification for %s: %v", slug, err)
			} else {
				logger.Info("Sent %s suggestions to Telegram", slug)
			}
		}
	}

	if succeeded == 0 && lastErr != nil {
		return lastErr
	}

	duration := time.Since(startTime)
	logger.Info("Analysis cycle completed in %v (%d/%d variants)", duration, succeeded, len(cfg.Analysis.Variants))
	return nil
}
