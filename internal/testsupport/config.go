package testsupport

import (
	"path/filepath"
	"testing"

	"gutencorpus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Download.DataPath = filepath.Join(base, "rawdata")
	cfg.Metadata.CachePath = filepath.Join(base, "metadata.json.gz")
	cfg.Database.Database = filepath.Join(base, "gutenberg.db3")
	cfg.API.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBatchSize overrides the commit batch size.
func WithBatchSize(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Database.BatchSize = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Download.DataPath)
}
