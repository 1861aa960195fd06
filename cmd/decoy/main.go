package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/netlure/decoy/internal/api"
	"github.com/netlure/decoy/internal/bus"
	"github.com/netlure/decoy/internal/config"
	"github.com/netlure/decoy/internal/correlate"
	"github.com/netlure/decoy/internal/engine"
	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/generator"
	"github.com/netlure/decoy/internal/llm"
	"github.com/netlure/decoy/internal/notify"
	"github.com/netlure/decoy/internal/processor"
	"github.com/netlure/decoy/internal/replay"
	"github.com/netlure/decoy/internal/safety"
	"github.com/netlure/decoy/internal/signals"
	"github.com/netlure/decoy/internal/store"
)

func main() {
	_ = godotenv.Load()

	replayDir := flag.String("replay", "", "re-extract identifiers from exported chat JSONL in this directory, then exit")
	replayState := flag.String("replay-state", "decoy-replay-state.json", "replay progress state file")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("decoy starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	extractor := extract.NewEngine(cfg.DefaultRegion)

	// Offline replay mode.
	if *replayDir != "" {
		runner := replay.NewRunner(extractor, db, slog.Default())
		if err := runner.Run(ctx, *replayDir, *replayState); err != nil {
			slog.Error("replay failed", "error", err)
			os.Exit(1)
		}
		slog.Info("replay complete")
		return
	}

	// Safety screen: external service when configured, local probe screen
	// otherwise.
	var screen safety.Screen = safety.NewProbeScreen()
	if cfg.SafetyURL != "" {
		screen = safety.NewHTTPScreen(cfg.SafetyURL, cfg.SafetyTimeout)
		slog.Info("external safety screen configured", "url", cfg.SafetyURL)
	}

	// Response generators. The template generator always runs; the LLM
	// generator joins when an API key is configured.
	generators := []generator.Generator{generator.NewTemplateGenerator()}
	if cfg.AnthropicAPIKey != "" {
		client := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		generators = append(generators, generator.NewLLMGenerator(client))
		slog.Info("llm generator ready", "model", cfg.AnthropicModel)
	}

	eng := engine.New(extractor, screen, generators, signals.Defaults(), engine.Config{
		SafetyTimeout:    cfg.SafetyTimeout,
		GeneratorTimeout: cfg.GeneratorTimeout,
		PersonaHints:     splitHints(cfg.PersonaHints),
	}, slog.Default())

	// NATS
	busClient, err := bus.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Slack intel reports are optional: decoy works without Slack, just no
	// analyst notifications.
	var poster *notify.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		poster = notify.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack intel reports ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, running without intel reports")
	}

	proc := processor.New(db, eng, busClient, poster, slog.Default())

	if err := busClient.Subscribe(bus.SubjectMessageReceived, proc.HandleMessageReceived); err != nil {
		slog.Error("failed to subscribe to inbound messages", "error", err)
		os.Exit(1)
	}
	if err := busClient.Subscribe(bus.SubjectAbortSession, proc.HandleAbort); err != nil {
		slog.Error("failed to subscribe to abort events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	corr := correlate.New(db, slog.Default())
	srv := api.NewServer(cfg.Port, db, corr)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("decoy ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("decoy stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func splitHints(raw string) []string {
	if raw == "" {
		return nil
	}
	var hints []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}
