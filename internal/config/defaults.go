package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Languages: []string{"go"},
			Exclude: []string{
				"vendor/**",
				"node_modules/**",
				"dist/**",
				"build/**",
				"*_test.go",
				"**/*_mock.go",
				"**/testdata/**",
				".devac/**",
			},
		},
		Parser: ParserConfig{
			TimeoutSeconds:     30,
			SubprocessPoolSize: 4,
		},
		Storage: StorageConfig{
			CompressionCodec:    "uncompressed",
			LockTimeoutSeconds:  10,
		},
		Hub: HubConfig{
			QueryCacheSize:      256,
			QueryTimeoutSeconds: 30,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Scan:    mergeScanConfig(loaded.Scan, defaults.Scan),
		Parser:  mergeParserConfig(loaded.Parser, defaults.Parser),
		Storage: mergeStorageConfig(loaded.Storage, defaults.Storage),
		Hub:     mergeHubConfig(loaded.Hub, defaults.Hub),
	}
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{}

	if len(loaded.Languages) > 0 {
		result.Languages = loaded.Languages
	} else {
		result.Languages = defaults.Languages
	}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	return result
}

func mergeParserConfig(loaded, defaults ParserConfig) ParserConfig {
	result := ParserConfig{}

	if loaded.TimeoutSeconds != 0 {
		result.TimeoutSeconds = loaded.TimeoutSeconds
	} else {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	if loaded.SubprocessPoolSize != 0 {
		result.SubprocessPoolSize = loaded.SubprocessPoolSize
	} else {
		result.SubprocessPoolSize = defaults.SubprocessPoolSize
	}

	return result
}

func mergeStorageConfig(loaded, defaults StorageConfig) StorageConfig {
	result := StorageConfig{}

	if loaded.CompressionCodec != "" {
		result.CompressionCodec = loaded.CompressionCodec
	} else {
		result.CompressionCodec = defaults.CompressionCodec
	}

	if loaded.LockTimeoutSeconds != 0 {
		result.LockTimeoutSeconds = loaded.LockTimeoutSeconds
	} else {
		result.LockTimeoutSeconds = defaults.LockTimeoutSeconds
	}

	return result
}

func mergeHubConfig(loaded, defaults HubConfig) HubConfig {
	result := HubConfig{}

	if loaded.QueryCacheSize != 0 {
		result.QueryCacheSize = loaded.QueryCacheSize
	} else {
		result.QueryCacheSize = defaults.QueryCacheSize
	}

	if loaded.QueryTimeoutSeconds != 0 {
		result.QueryTimeoutSeconds = loaded.QueryTimeoutSeconds
	} else {
		result.QueryTimeoutSeconds = defaults.QueryTimeoutSeconds
	}

	return result
}

// ValidCodecs lists the compression codec names config validation accepts.
// The seed writer does not read the setting and always writes UNCOMPRESSED
// partitions (§4.4).
var ValidCodecs = []string{"uncompressed", "snappy", "gzip"}

// IsValidCodec checks if the given codec name is valid.
func IsValidCodec(codec string) bool {
	for _, valid := range ValidCodecs {
		if codec == valid {
			return true
		}
	}
	return false
}
