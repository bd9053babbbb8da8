package api

import (
	"gutencorpus/internal/etext"
	"gutencorpus/internal/store"
)

// FromRecord converts a stored record to its API representation.
func FromRecord(rec etext.Record) Etext {
	return Etext{
		ID:       rec.ID,
		Author:   rec.Author,
		Title:    rec.Title,
		FullText: rec.FullText,
	}
}

// FromSummaries converts store summaries into API DTOs. The result is never
// nil so empty pages encode as [].
func FromSummaries(items []store.Summary) []EtextSummary {
	out := make([]EtextSummary, 0, len(items))
	for _, item := range items {
		out = append(out, EtextSummary{
			ID:       item.ID,
			Author:   item.Author,
			Title:    item.Title,
			TextSize: item.TextSize,
		})
	}
	return out
}

// FromStats converts store statistics.
func FromStats(stats store.Stats) CorpusStats {
	return CorpusStats{
		Total:         stats.Total,
		MissingAuthor: stats.MissingAuthor,
		MissingTitle:  stats.MissingTitle,
	}
}
