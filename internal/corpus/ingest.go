package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gutencorpus/internal/etext"
	"gutencorpus/internal/fileutil"
	"gutencorpus/internal/logging"
	"gutencorpus/internal/metadata"
)

// DefaultBatchSize is the number of accepted records per commit.
const DefaultBatchSize = 100

// Repository is the persistence surface the ingestion loop needs.
type Repository interface {
	AllIdentifiers(ctx context.Context) (map[int]struct{}, error)
	// Insert stages rec and reports whether it was written. It must not fail
	// because ctx is cancelled.
	Insert(ctx context.Context, rec etext.Record) (bool, error)
	Commit(ctx context.Context) error
}

// MetadataSource supplies the identifier to metadata mapping.
type MetadataSource interface {
	Get(ctx context.Context) (map[int]metadata.Record, error)
}

// Lister enumerates candidate files under a directory.
type Lister func(dir string) ([]string, error)

// Failure records one skipped file.
type Failure struct {
	Path string
	Kind string
	Err  error
}

// Result summarizes an ingestion run.
type Result struct {
	RunID      string
	Scanned    int
	Added      int
	Duplicates int
	Failed     []Failure
	Commits    int
	Duration   time.Duration
}

// Ingester runs the ingestion loop against a Repository.
type Ingester struct {
	repo      Repository
	deriver   *etext.Deriver
	list      Lister
	batchSize int
	logger    *slog.Logger
}

// Option customises an Ingester.
type Option func(*Ingester)

// WithBatchSize sets how many accepted records are committed together.
func WithBatchSize(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.batchSize = n
		}
	}
}

// WithLister replaces the directory listing used to find candidates.
func WithLister(fn Lister) Option {
	return func(in *Ingester) {
		if fn != nil {
			in.list = fn
		}
	}
}

// NewIngester returns an Ingester writing to repo.
func NewIngester(repo Repository, deriver *etext.Deriver, logger *slog.Logger, opts ...Option) *Ingester {
	if deriver == nil {
		deriver = etext.NewDeriver(logger)
	}
	in := &Ingester{
		repo:      repo,
		deriver:   deriver,
		list:      fileutil.ListFiles,
		batchSize: DefaultBatchSize,
		logger:    logging.NewComponentLogger(logger, "ingest"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest loads every candidate file under dir into the repository exactly
// once across runs. Per-file derivation errors are logged and collected in
// Result.Failed; listing, metadata, and storage errors abort the run after
// the last successful commit.
func (in *Ingester) Ingest(ctx context.Context, dir string, source MetadataSource) (Result, error) {
	started := time.Now()
	result := Result{RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, in.logger)

	existing, err := in.repo.AllIdentifiers(ctx)
	if err != nil {
		return result, err
	}
	files, err := in.list(dir)
	if err != nil {
		return result, err
	}
	logger.Info("ingestion started",
		logging.String(logging.FieldPath, dir),
		logging.Int("candidates", len(files)),
		logging.Int("stored", len(existing)))

	var meta map[int]metadata.Record
	if len(files) > 0 {
		if meta, err = source.Get(ctx); err != nil {
			return result, fmt.Errorf("load metadata: %w", err)
		}
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			if commitErr := in.commit(ctx, &result, logger); commitErr != nil {
				return result, commitErr
			}
			return result, err
		}
		result.Scanned++
		logger.Debug("processing file", logging.String(logging.FieldPath, path))

		rec, err := in.deriver.FromFile(path, meta)
		if err != nil {
			kind := etext.KindOf(err)
			result.Failed = append(result.Failed, Failure{Path: path, Kind: kind, Err: err})
			logging.ErrorWithContext(logger, "skipping file", "derivation_failed",
				logging.String(logging.FieldPath, path),
				logging.String(logging.FieldErrorKind, kind),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the file; it will be retried on the next run"))
			continue
		}

		if _, seen := existing[rec.ID]; seen {
			result.Duplicates++
			logger.Debug("already ingested",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldEtextID, rec.ID))
			continue
		}

		// Insert ignores cancellation so a record derived while the run was
		// being interrupted is still staged and flushed below.
		inserted, err := in.repo.Insert(ctx, rec)
		if err != nil {
			return result, err
		}
		existing[rec.ID] = struct{}{}
		if !inserted {
			result.Duplicates++
			logger.Debug("stored by another writer",
				logging.String(logging.FieldPath, path),
				logging.Int(logging.FieldEtextID, rec.ID))
			continue
		}
		result.Added++
		logger.Debug("staged record", logging.String("record", rec.String()))
		if result.Added%in.batchSize == 0 {
			if err := in.commit(ctx, &result, logger); err != nil {
				return result, err
			}
		}
	}

	if err := in.commit(ctx, &result, logger); err != nil {
		return result, err
	}
	result.Duration = time.Since(started)
	logger.Info("ingestion finished",
		logging.Int("added", result.Added),
		logging.Int("duplicates", result.Duplicates),
		logging.Int("failed", len(result.Failed)),
		logging.Int("commits", result.Commits),
		logging.Duration("duration", result.Duration))
	return result, nil
}

func (in *Ingester) commit(ctx context.Context, result *Result, logger *slog.Logger) error {
	logger.Debug("committing", logging.Int("added", result.Added))
	// Commit must not be skipped because the run was cancelled.
	if err := in.repo.Commit(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	result.Commits++
	return nil
}
