package metadata

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gutencorpus/internal/logging"
)

// Record holds the bibliographic fields known for one e-text. Empty strings
// mean the field is unavailable.
type Record struct {
	Author   string   `json:"author,omitempty"`
	Title    string   `json:"title,omitempty"`
	Language []string `json:"language,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// Provider computes the full metadata mapping. It is expensive and is only
// consulted when the cache artifact is missing.
type Provider interface {
	Fetch(ctx context.Context) (map[int]Record, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (map[int]Record, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context) (map[int]Record, error) {
	return f(ctx)
}

// ErrNoProvider is returned when the cache is cold and no provider is configured.
var ErrNoProvider = errors.New("metadata cache missing and no provider configured")

// Index memoizes the identifier to Record mapping for the life of the value.
type Index struct {
	path     string
	provider Provider
	logger   *slog.Logger

	mu      sync.Mutex
	records map[int]Record
}

// NewIndex returns an Index backed by the cache artifact at path. Nothing is
// read until Get is first called.
func NewIndex(path string, provider Provider, logger *slog.Logger) *Index {
	return &Index{
		path:     path,
		provider: provider,
		logger:   logging.NewComponentLogger(logger, "metadata"),
	}
}

// NewStatic returns an Index that serves records without touching storage.
func NewStatic(records map[int]Record) *Index {
	if records == nil {
		records = map[int]Record{}
	}
	return &Index{records: records, logger: logging.NewNop()}
}

// Path returns the cache artifact location.
func (ix *Index) Path() string {
	return ix.path
}

// Get returns the mapping, loading or computing it on the first successful call.
// The returned map must not be modified.
func (ix *Index) Get(ctx context.Context) (map[int]Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.records != nil {
		return ix.records, nil
	}

	records, err := ix.readCache()
	switch {
	case err == nil:
		ix.logger.Debug("loaded metadata cache",
			logging.String(logging.FieldPath, ix.path),
			logging.Int("entry_count", len(records)))
	case errors.Is(err, fs.ErrNotExist):
		records, err = ix.rebuild(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	ix.records = records
	return records, nil
}

// Lookup returns the Record for id. The bool reports whether the identifier is
// present in the mapping at all.
func (ix *Index) Lookup(ctx context.Context, id int) (Record, bool, error) {
	records, err := ix.Get(ctx)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := records[id]
	return rec, ok, nil
}

// Invalidate drops the memoized mapping so the next Get reloads it.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.records = nil
	ix.mu.Unlock()
}

// Rebuild fetches from the provider and overwrites the cache artifact even
// when one exists. The new mapping replaces the memo.
func (ix *Index) Rebuild(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	records, err := ix.rebuild(ctx)
	if err != nil {
		return err
	}
	ix.records = records
	return nil
}

func (ix *Index) rebuild(ctx context.Context) (map[int]Record, error) {
	if ix.provider == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, ix.path)
	}
	ix.logger.Info("metadata cache missing, rebuilding from provider",
		logging.String(logging.FieldPath, ix.path))

	records, err := ix.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if records == nil {
		records = map[int]Record{}
	}
	if err := writeCache(ix.path, records); err != nil {
		return nil, err
	}
	ix.logger.Info("metadata cache written",
		logging.String(logging.FieldPath, ix.path),
		logging.Int("entry_count", len(records)))
	return records, nil
}

func (ix *Index) readCache() (map[int]Record, error) {
	if ix.path == "" {
		return nil, fs.ErrNotExist
	}
	file, err := os.Open(ix.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("open metadata cache: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if isGzip(ix.path) {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open metadata cache %s: %w", ix.path, err)
		}
		defer gz.Close()
		reader = gz
	}

	// Keys are stored as text; decoding into an int-keyed map converts them
	// and rejects any key that is not an integer.
	var records map[int]Record
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse metadata cache %s: %w", ix.path, err)
	}
	if records == nil {
		records = map[int]Record{}
	}
	return records, nil
}

func writeCache(path string, records map[int]Record) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata cache directory: %w", err)
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata cache: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create metadata cache: %w", err)
	}
	var writer io.WriteCloser = nopWriteCloser{file}
	if isGzip(path) {
		writer = gzip.NewWriter(file)
	}
	if _, err := writer.Write(data); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write metadata cache: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush metadata cache: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close metadata cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename metadata cache: %w", err)
	}
	return nil
}

func isGzip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gz")
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
