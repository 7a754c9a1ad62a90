package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the devac configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the devac configuration directory.
const ConfigDirName = ".devac"

// Config holds all devac configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Parser  ParserConfig  `yaml:"parser"`
	Storage StorageConfig `yaml:"storage"`
	Hub     HubConfig     `yaml:"hub"`
}

// ScanConfig controls which languages the Parser Orchestrator dispatches to
// and which paths it skips before handing files to a front-end (§4.1).
type ScanConfig struct {
	Languages []string `yaml:"languages"`
	Exclude   []string `yaml:"exclude"`
}

// ParserConfig tunes the orchestrator (§4.1 "Concurrency"). TimeoutSeconds
// is its per-file parse deadline; SubprocessPoolSize is validated but not
// read by the orchestrator.
type ParserConfig struct {
	TimeoutSeconds     int `yaml:"timeout_seconds"`
	SubprocessPoolSize int `yaml:"subprocess_pool_size"`
}

// StorageConfig holds the seed writer's settings (§4.4). Both are validated
// but not read by the writer: it always writes uncompressed partitions and
// waits a fixed 30 seconds for the seed lock.
type StorageConfig struct {
	CompressionCodec  string `yaml:"compression_codec"`
	LockTimeoutSeconds int    `yaml:"lock_timeout_seconds"`
}

// HubConfig holds the federation hub's settings (§4.6). Both are validated
// but not read by the hub: its query cache has no size bound and queries
// run without a timeout.
type HubConfig struct {
	QueryCacheSize     int `yaml:"query_cache_size"`
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .devac/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .devac directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .devac directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are within their valid ranges.
func Validate(cfg *Config) error {
	if !IsValidCodec(cfg.Storage.CompressionCodec) {
		return fmt.Errorf("%w: compression_codec must be one of %v, got %q",
			ErrInvalidConfig, ValidCodecs, cfg.Storage.CompressionCodec)
	}

	if cfg.Storage.LockTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: lock_timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Storage.LockTimeoutSeconds)
	}

	if cfg.Parser.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Parser.TimeoutSeconds)
	}

	if cfg.Parser.SubprocessPoolSize <= 0 {
		return fmt.Errorf("%w: subprocess_pool_size must be positive, got %d",
			ErrInvalidConfig, cfg.Parser.SubprocessPoolSize)
	}

	if cfg.Hub.QueryCacheSize < 0 {
		return fmt.Errorf("%w: query_cache_size must be non-negative, got %d",
			ErrInvalidConfig, cfg.Hub.QueryCacheSize)
	}

	if cfg.Hub.QueryTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: query_timeout_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Hub.QueryTimeoutSeconds)
	}

	return nil
}

// SaveDefault writes the default configuration to .devac/config.yaml in
// workDir. Creates the .devac directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# devac configuration\n# See spec.md for field documentation\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
