// Command docsmcp runs the documentation aggregation service: it wires
// configuration, the process-wide state container, the knowledge overlay,
// every provider, the tool registry, and the JSON-RPC stdio transport
// before handing control to the stdio run loop.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"docsmcp/internal/config"
	"docsmcp/internal/feedback"
	"docsmcp/internal/knowledge"
	"docsmcp/internal/provider"
	"docsmcp/internal/provider/apple"
	"docsmcp/internal/provider/cocoon"
	"docsmcp/internal/provider/huggingface"
	"docsmcp/internal/provider/mdn"
	"docsmcp/internal/provider/mlx"
	"docsmcp/internal/provider/quicknode"
	"docsmcp/internal/provider/rust"
	"docsmcp/internal/provider/telegram"
	"docsmcp/internal/provider/ton"
	"docsmcp/internal/provider/webframeworks"
	"docsmcp/internal/state"
	"docsmcp/internal/telemetry"
	"docsmcp/internal/telemetry/metrics"
	"docsmcp/internal/tool"
	"docsmcp/internal/transport"
	"docsmcp/pkg/models"
)

// defaultRustCrates is the curated docs.rs crate list this deployment
// indexes, since docs.rs exposes no endpoint enumerating every crate
// (provider/rust.New's doc comment).
var defaultRustCrates = []string{"tokio", "serde", "axum", "reqwest", "clap"}

// defaultWebFrameworks is the curated "framework index table" set spec §1
// names by example.
var defaultWebFrameworks = []webframeworks.FrameworkSpec{
	{ID: "react", Title: "React", IndexURL: "https://react.dev/reference/react", DocsBase: "https://react.dev"},
	{ID: "vue", Title: "Vue", IndexURL: "https://vuejs.org/api/", DocsBase: "https://vuejs.org"},
	{ID: "svelte", Title: "Svelte", IndexURL: "https://svelte.dev/docs/svelte", DocsBase: "https://svelte.dev"},
	{ID: "nextjs", Title: "Next.js", IndexURL: "https://nextjs.org/docs", DocsBase: "https://nextjs.org"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := telemetry.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	metricsProvider := newMetricsProvider(cfg.MetricsBackend)

	st := state.New()

	var knowledgeStore *knowledge.Store
	if cfg.KnowledgeDir != "" {
		knowledgeStore, err = knowledge.NewStore(cfg.KnowledgeDir)
		if err != nil {
			logger.ErrorCtx(context.Background(), "knowledge store load failed", "error", err)
			os.Exit(1)
		}
		if _, err := knowledgeStore.Watch(cfg.KnowledgeDir); err != nil {
			logger.WarnCtx(context.Background(), "knowledge hot-reload unavailable", "error", err)
		}
	}

	feedbackStore := feedback.NewStore(cfg.FeedbackDir)

	providers, err := buildProviders(cfg, st)
	if err != nil {
		logger.ErrorCtx(context.Background(), "provider setup failed", "error", err)
		os.Exit(1)
	}

	registry := tool.NewRegistry()
	queryHandler := tool.NewQueryHandler(st, knowledgeStore, models.ProviderApple, providers...)
	registry.Register(queryHandler.Definition(), queryHandler.Handle)
	feedbackHandler := tool.NewFeedbackHandler(feedbackStore)
	registry.Register(feedbackHandler.Definition(), feedbackHandler.Handle)

	executor := tool.NewExecutor(registry, st, tool.WithMetrics(metricsProvider))

	if cfg.Headless {
		logger.InfoCtx(context.Background(), "headless mode: skipping stdio transport")
		return
	}

	server := transport.New(transport.ServerInfo{
		Name:         "docsmcp",
		Version:      "0.1.0",
		Instructions: "Query documentation across Apple, MDN, Rust, Telegram, TON, Hugging Face, MLX, Cocoon, QuickNode and web framework sources.",
	}, registry, executor, logger, !cfg.DisableFeedbackPrompt)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		logger.ErrorCtx(ctx, "transport loop exited with error", "error", err)
		os.Exit(1)
	}
}

// buildProviders constructs every configured documentation provider, each
// with its own disk cache subdirectory (spec §6's per-provider disk
// layout via config.ProviderCacheDir).
func buildProviders(cfg config.Config, st *state.State) ([]provider.Provider, error) {
	budget := cfg.Cache.DiskBudgetBytes

	rustProvider, err := rust.New(cfg.ProviderCacheDir("rust"), budget, defaultRustCrates)
	if err != nil {
		return nil, err
	}
	hfProvider, err := huggingface.New(cfg.ProviderCacheDir("huggingface"), budget)
	if err != nil {
		return nil, err
	}
	mdnProvider, err := mdn.New(cfg.ProviderCacheDir("mdn"), budget)
	if err != nil {
		return nil, err
	}
	mlxProvider, err := mlx.New(cfg.ProviderCacheDir("mlx"), budget)
	if err != nil {
		return nil, err
	}
	quicknodeProvider, err := quicknode.New(cfg.ProviderCacheDir("quicknode"), budget)
	if err != nil {
		return nil, err
	}
	webframeworksProvider, err := webframeworks.New(cfg.ProviderCacheDir("webframeworks"), budget, defaultWebFrameworks)
	if err != nil {
		return nil, err
	}

	appleProvider := apple.New(cfg.ProviderCacheDir("apple"), budget, st.ActiveTechnology)
	tonProvider := ton.New(cfg.ProviderCacheDir("ton"), budget)
	telegramProvider := telegram.New(cfg.ProviderCacheDir("telegram"), budget)
	cocoonProvider := cocoon.New(cfg.ProviderCacheDir("cocoon"), budget, cocoon.Config{
		Owner: "mdn", Repo: "content", Ref: "main", Root: "files",
	})

	return []provider.Provider{
		appleProvider,
		mdnProvider,
		rustProvider,
		telegramProvider,
		tonProvider,
		hfProvider,
		mlxProvider,
		cocoonProvider,
		quicknodeProvider,
		webframeworksProvider,
	}, nil
}

func newMetricsProvider(backend string) metrics.Provider {
	switch strings.ToLower(backend) {
	case "otel":
		return metrics.NewOTelProvider()
	case "noop":
		return metrics.NewNoopProvider()
	default:
		return metrics.NewPrometheusProvider()
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
