package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Scan.Languages) != 1 || cfg.Scan.Languages[0] != "go" {
		t.Errorf("expected default language [go], got %v", cfg.Scan.Languages)
	}

	if len(cfg.Scan.Exclude) != 8 {
		t.Errorf("expected 8 exclude patterns, got %d", len(cfg.Scan.Exclude))
	}

	if cfg.Parser.TimeoutSeconds != 30 {
		t.Errorf("expected timeout_seconds 30, got %d", cfg.Parser.TimeoutSeconds)
	}

	if cfg.Parser.SubprocessPoolSize != 4 {
		t.Errorf("expected subprocess_pool_size 4, got %d", cfg.Parser.SubprocessPoolSize)
	}

	if cfg.Storage.CompressionCodec != "uncompressed" {
		t.Errorf("expected compression_codec uncompressed, got %s", cfg.Storage.CompressionCodec)
	}

	if cfg.Storage.LockTimeoutSeconds != 10 {
		t.Errorf("expected lock_timeout_seconds 10, got %d", cfg.Storage.LockTimeoutSeconds)
	}

	if cfg.Hub.QueryCacheSize != 256 {
		t.Errorf("expected query_cache_size 256, got %d", cfg.Hub.QueryCacheSize)
	}

	if cfg.Hub.QueryTimeoutSeconds != 30 {
		t.Errorf("expected query_timeout_seconds 30, got %d", cfg.Hub.QueryTimeoutSeconds)
	}
}

func TestIsValidCodec(t *testing.T) {
	tests := []struct {
		codec string
		valid bool
	}{
		{"uncompressed", true},
		{"snappy", true},
		{"gzip", true},
		{"lz4", false},
		{"", false},
		{"UNCOMPRESSED", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			result := IsValidCodec(tt.codec)
			if result != tt.valid {
				t.Errorf("IsValidCodec(%q) = %v, want %v", tt.codec, result, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid compression codec",
			modify:  func(cfg *Config) { cfg.Storage.CompressionCodec = "lz4" },
			wantErr: true,
		},
		{
			name:    "zero lock timeout",
			modify:  func(cfg *Config) { cfg.Storage.LockTimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "negative parser timeout",
			modify:  func(cfg *Config) { cfg.Parser.TimeoutSeconds = -1 },
			wantErr: true,
		},
		{
			name:    "zero subprocess pool size",
			modify:  func(cfg *Config) { cfg.Parser.SubprocessPoolSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative query cache size",
			modify:  func(cfg *Config) { cfg.Hub.QueryCacheSize = -1 },
			wantErr: true,
		},
		{
			name:    "zero query timeout",
			modify:  func(cfg *Config) { cfg.Hub.QueryTimeoutSeconds = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindConfigDir(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, ConfigDirName), 0755); err != nil {
		t.Fatalf("creating config dir: %v", err)
	}

	found, err := FindConfigDir(sub)
	if err != nil {
		t.Fatalf("FindConfigDir: %v", err)
	}
	if found != filepath.Join(root, ConfigDirName) {
		t.Errorf("expected to find config dir at repo root by walking up, got %q", found)
	}
}

func TestFindConfigDirNotFound(t *testing.T) {
	root := t.TempDir()
	_, err := FindConfigDir(root)
	if err != ErrConfigNotFound {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.CompressionCodec != "uncompressed" {
		t.Errorf("expected Load with no config dir to fall back to defaults")
	}
}

func TestSaveDefaultThenLoad(t *testing.T) {
	root := t.TempDir()
	path, err := SaveDefault(root)
	if err != nil {
		t.Fatalf("SaveDefault: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist at %s: %v", path, err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Scan.Languages[0] != "go" {
		t.Errorf("expected round-tripped config to preserve defaults, got %v", cfg.Scan.Languages)
	}
}

func TestSaveDefaultRefusesToOverwrite(t *testing.T) {
	root := t.TempDir()
	if _, err := SaveDefault(root); err != nil {
		t.Fatalf("first SaveDefault: %v", err)
	}
	if _, err := SaveDefault(root); err == nil {
		t.Errorf("expected second SaveDefault to refuse to overwrite an existing config file")
	}
}
