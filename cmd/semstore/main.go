// Package main is the semstore CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/contentarch/semstore/internal/config"
	"github.com/contentarch/semstore/internal/embedding"
	"github.com/contentarch/semstore/internal/keyword"
	"github.com/contentarch/semstore/internal/models"
	"github.com/contentarch/semstore/internal/server"
	"github.com/contentarch/semstore/internal/storage"
	"github.com/contentarch/semstore/internal/store"
	"github.com/contentarch/semstore/internal/watcher"
	"github.com/contentarch/semstore/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/semstore/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		// No config file is fine for the in-memory defaults.
		if errors.Is(err, os.ErrNotExist) {
			cfg = &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "store":
		runStore()
	case "search":
		runSearch()
	case "analytics":
		runAnalytics()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("semstore version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	st, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Watch.Directories) > 0 {
		w := watcher.NewWatcher(st, cfg.Watch.Directories,
			time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(st, &cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

// buildStore assembles the storage backend, embedder, and optional keyword
// index from config.
func buildStore(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	var st storage.Storage
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite storage: %w", err)
		}
		st = s
	case "memory", "":
		st = storage.NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var emb embedding.Embedder
	switch cfg.Embedding.Provider {
	case "openai":
		e, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		emb = e
	case "hash", "":
		emb = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	emb = embedding.NewCache(emb, cfg.Embedding.CacheSize)

	opts := []store.Option{
		store.WithSearchDefaults(models.SearchDefaults{
			Limit:     cfg.Search.DefaultLimit,
			MaxLimit:  cfg.Search.MaxLimit,
			Threshold: cfg.Search.DefaultThreshold,
		}),
		store.WithAnalyticsWindow(cfg.Analytics.DefaultWindowDays),
	}
	if cfg.Keyword.Enabled {
		idx, err := keyword.NewBleveIndex(cfg.Keyword.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("keyword index: %w", err)
		}
		opts = append(opts, store.WithKeywordIndex(idx))
	}
	return store.New(st, emb, logger, opts...), nil
}

func runStore() {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	file := fs.String("file", "", "payload JSON file (defaults to stdin)")
	_ = fs.Parse(os.Args[2:])

	var data []byte
	var err error
	if *file != "" {
		data, err = os.ReadFile(*file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Printf("Failed to read payload: %v\n", err)
		os.Exit(1)
	}
	var payload models.ContentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		fmt.Printf("Invalid payload JSON: %v\n", err)
		os.Exit(1)
	}
	body, _ := json.Marshal(map[string]any{"payload": &payload})
	printResponse(http.Post(*serverURL+"/api/v1/content", "application/json", bytes.NewReader(body)))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "maximum results")
	threshold := fs.Float64("threshold", models.DefaultThreshold, "minimum similarity")
	contentType := fs.String("type", "", "content type filter")
	keywordMode := fs.Bool("keyword", false, "keyword search instead of semantic")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: semstore search [flags] <query>")
		os.Exit(1)
	}
	queryText := fs.Arg(0)

	if *keywordMode {
		u := fmt.Sprintf("%s/api/v1/search/keyword?q=%s&limit=%d",
			*serverURL, url.QueryEscape(queryText), *limit)
		printResponse(http.Get(u))
		return
	}

	query := models.SearchQuery{
		Query:       queryText,
		Limit:       *limit,
		Threshold:   threshold,
		ContentType: *contentType,
	}
	body, _ := json.Marshal(&query)
	printResponse(http.Post(*serverURL+"/api/v1/search", "application/json", bytes.NewReader(body)))
}

func runAnalytics() {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	days := fs.Int("days", models.DefaultAnalyticsWindow, "time range in days")
	_ = fs.Parse(os.Args[2:])

	u := fmt.Sprintf("%s/api/v1/analytics?time_range_days=%d", *serverURL, *days)
	printResponse(http.Get(u))
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: semstore delete [flags] <content-id>")
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodDelete,
		*serverURL+"/api/v1/content/"+url.PathEscape(fs.Arg(0)), nil)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	printResponse(http.DefaultClient.Do(req))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	printResponse(http.Get(*serverURL + "/api/v1/status"))
}

// printResponse pretty-prints a JSON API response or exits on error.
func printResponse(resp *http.Response, err error) {
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Failed to read response: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(body))
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`semstore - semantic content store

Usage:
  semstore server [-config path] [-debug]     start the API server
  semstore store [-file payload.json]         store content (payload from file or stdin)
  semstore search [flags] <query>             similarity search (-keyword for exact terms)
  semstore analytics [-days n]                search analytics over a rolling window
  semstore delete <content-id>                delete content
  semstore status                             server status
  semstore version                            print version`)
}
