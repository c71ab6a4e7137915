package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/article"
	"newsbrief/internal/config"
	"newsbrief/internal/logging"
	"newsbrief/internal/pipeline"
	"newsbrief/internal/search"
	"newsbrief/internal/summarizer"
	"newsbrief/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	searcher := initSearcher(ctx, cfg, log)

	fetcher, err := article.NewFetcher(cfg.FetchTimeout, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize article fetcher",
			"error", err)

		return
	}

	p := pipeline.New(pipeline.Deps{
		Searcher:   searcher,
		Fetcher:    fetcher,
		Summarizer: initOpenAISummarizer(ctx, cfg, log),
	}, pipeline.Options{
		ResultLimit: cfg.ResultLimit,
		Concurrency: cfg.Concurrency,
	}, log)
	log.InfoContext(ctx, "Pipeline is initialized",
		"resultLimit", cfg.ResultLimit,
		"concurrency", cfg.Concurrency)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewRouter(p, web.Options{RequestTimeout: cfg.RequestTimeout}, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.Addr,
		"requestTimeoutSeconds", cfg.RequestTimeout.Seconds())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err := <-serveErr:
		log.ErrorContext(ctx, "Server failed",
			"error", err,
			"addr", cfg.Addr)
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err)

		return
	}
	log.InfoContext(shutdownCtx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initSearcher(ctx context.Context, cfg config.Config, log *slog.Logger) pipeline.Searcher {
	if cfg.SearchProvider == config.SearchProviderRSS {
		log.InfoContext(ctx, "RSS search client is initialized",
			"endpoint", cfg.RSSSearchURL,
			"language", cfg.NewsLanguage)

		return search.NewRSSClient(search.RSSOptions{
			Endpoint: cfg.RSSSearchURL,
			Language: cfg.NewsLanguage,
			Timeout:  cfg.SearchTimeout,
		}, log)
	}

	if cfg.NewsAPIKey == "" {
		log.WarnContext(ctx, "NEWS_API_KEY is missing so every search will come back empty",
			"envVar", "NEWS_API_KEY")
	}

	log.InfoContext(ctx, "News API search client is initialized",
		"endpoint", cfg.NewsAPIURL,
		"language", cfg.NewsLanguage)

	return search.NewNewsAPIClient(search.NewsAPIOptions{
		Endpoint: cfg.NewsAPIURL,
		APIKey:   cfg.NewsAPIKey,
		Language: cfg.NewsLanguage,
		Timeout:  cfg.SearchTimeout,
	}, log)
}

func initOpenAISummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	if cfg.OpenAIAPIKey == "" {
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so fallback will be used",
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIOptions{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Language:    cfg.SummaryLanguage,
		Temperature: cfg.SummaryTemperature,
		Timeout:     cfg.SummaryTimeout,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI summarizer so fallback will be used",
			"error", err,
			"envVar", "OPENAI_API_KEY")

		return nil
	}

	log.InfoContext(ctx, "OpenAI summarizer is initialized",
		"provider", "openai",
		"model", cfg.OpenAIModel)

	return s
}
