package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"gutencorpus/internal/config"
	"gutencorpus/internal/etext"
	"gutencorpus/internal/logging"
	"gutencorpus/internal/metadata"
	"gutencorpus/internal/store"
)

// Corpus binds a configuration to the metadata index and the store.
type Corpus struct {
	cfg    *config.Config
	logger *slog.Logger
	index  *metadata.Index
}

// New returns a Corpus for cfg. The metadata index is created once and
// reused for every call on the returned value.
func New(cfg *config.Config, logger *slog.Logger) *Corpus {
	if logger == nil {
		logger = logging.NewNop()
	}
	var provider metadata.Provider
	if cfg.Metadata.CatalogPath != "" {
		provider = metadata.CatalogProvider{Path: cfg.Metadata.CatalogPath}
	}
	return &Corpus{
		cfg:    cfg,
		logger: logger,
		index:  metadata.NewIndex(cfg.Metadata.CachePath, provider, logger),
	}
}

// UsingConfig loads the configuration at path over the defaults and returns
// a Corpus for it.
func UsingConfig(path string, logger *slog.Logger) (*Corpus, error) {
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger), nil
}

// Config returns the settings in use. Callers may mutate Download.Offset.
func (c *Corpus) Config() *config.Config {
	return c.cfg
}

// WriteConfig serializes the current settings to path.
func (c *Corpus) WriteConfig(path string) error {
	return c.cfg.Write(path)
}

// Metadata returns the memoized metadata mapping.
func (c *Corpus) Metadata(ctx context.Context) (map[int]metadata.Record, error) {
	return c.index.Get(ctx)
}

// Index exposes the metadata index.
func (c *Corpus) Index() *metadata.Index {
	return c.index
}

// OpenStore connects to the configured database and ensures the schema.
func (c *Corpus) OpenStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, c.cfg, store.DefaultSchema(), c.logger)
}

// Persist ingests every file in the configured data directory.
func (c *Corpus) Persist(ctx context.Context) (Result, error) {
	st, err := c.OpenStore(ctx)
	if err != nil {
		return Result{}, err
	}
	defer st.Close()
	c.logger.Info("ingesting corpus",
		logging.String(logging.FieldPath, c.cfg.Download.DataPath),
		logging.String("store", st.Location()))

	in := NewIngester(st, etext.NewDeriver(c.logger), c.logger,
		WithBatchSize(c.cfg.Database.BatchSize))
	result, err := in.Ingest(ctx, c.cfg.Download.DataPath, c.index)
	if err != nil {
		return result, fmt.Errorf("ingest %s: %w", c.cfg.Download.DataPath, err)
	}
	return result, nil
}
