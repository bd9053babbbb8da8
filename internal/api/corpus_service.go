package api

import (
	"context"

	"gutencorpus/internal/etext"
	"gutencorpus/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Reader abstracts the store queries needed by the API.
type Reader interface {
	Get(ctx context.Context, id int) (etext.Record, error)
	List(ctx context.Context, offset, limit int) ([]store.Summary, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// CorpusService exposes read-only corpus operations returning API DTOs.
type CorpusService struct {
	store Reader
}

// NewCorpusService constructs a CorpusService around the provided reader.
func NewCorpusService(reader Reader) *CorpusService {
	if reader == nil {
		return nil
	}
	return &CorpusService{store: reader}
}

// List returns one page of summaries. Out of range paging values are clamped.
func (s *CorpusService) List(ctx context.Context, offset, limit int) (EtextListResponse, error) {
	offset, limit = clampPage(offset, limit)
	resp := EtextListResponse{Items: []EtextSummary{}, Offset: offset, Limit: limit}
	if s == nil || s.store == nil {
		return resp, nil
	}
	items, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return resp, err
	}
	resp.Items = FromSummaries(items)
	return resp, nil
}

// Describe fetches a single record. Missing identifiers return an error
// wrapping store.ErrNotFound.
func (s *CorpusService) Describe(ctx context.Context, id int) (Etext, error) {
	if s == nil || s.store == nil {
		return Etext{}, store.ErrNotFound
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Etext{}, err
	}
	return FromRecord(rec), nil
}

// Stats returns corpus counts.
func (s *CorpusService) Stats(ctx context.Context) (CorpusStats, error) {
	if s == nil || s.store == nil {
		return CorpusStats{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return CorpusStats{}, err
	}
	return FromStats(stats), nil
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}
