package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  backend: sqlite
  database_path: ./data/content.db
embedding:
  provider: hash
  dimensions: 256
keyword:
  enabled: true
  index_path: ./data/keyword.bleve
watch:
  directories:
    - ./drop
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("Debug not set")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server=%+v", cfg.Server)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend=%q", cfg.Storage.Backend)
	}
	if want := filepath.Join(dir, "data/content.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("DatabasePath=%q, want %q", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data/keyword.bleve"); cfg.Keyword.IndexPath != want {
		t.Errorf("IndexPath=%q, want %q", cfg.Keyword.IndexPath, want)
	}
	if len(cfg.Watch.Directories) != 1 || cfg.Watch.Directories[0] != filepath.Join(dir, "drop") {
		t.Errorf("Directories=%v", cfg.Watch.Directories)
	}
	if cfg.Embedding.Dimensions != 256 {
		t.Errorf("Dimensions=%d", cfg.Embedding.Dimensions)
	}
	// Unset fields still get defaults.
	if cfg.Embedding.CacheSize != 10000 || cfg.Search.DefaultThreshold != 0.7 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Embedding, cfg.Search)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server=%+v", cfg.Server)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend=%q", cfg.Storage.Backend)
	}
	if cfg.Embedding.Provider != "hash" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding=%+v", cfg.Embedding)
	}
	if cfg.Embedding.APIKeyEnv != "SEMSTORE_EMBEDDING_API_KEY" {
		t.Errorf("APIKeyEnv=%q", cfg.Embedding.APIKeyEnv)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 || cfg.Search.DefaultThreshold != 0.7 {
		t.Errorf("search=%+v", cfg.Search)
	}
	if cfg.Analytics.DefaultWindowDays != 7 {
		t.Errorf("analytics=%+v", cfg.Analytics)
	}
	if cfg.Watch.DebounceMS != 400 {
		t.Errorf("watch=%+v", cfg.Watch)
	}
	// Memory backend needs no database path.
	if cfg.Storage.DatabasePath != "" {
		t.Errorf("DatabasePath=%q", cfg.Storage.DatabasePath)
	}
}

func TestApplyDefaults_SQLitePath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Backend: "sqlite"}}
	ApplyDefaults(cfg)
	if cfg.Storage.DatabasePath == "" {
		t.Error("expected a default database path for sqlite")
	}
}
