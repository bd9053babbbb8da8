// Package api exposes the stored corpus over a small read-only HTTP API.
//
// # Key Types
//
// Etext and EtextSummary: transport representations of a stored record, with
// and without its full text.
//
// CorpusService: wraps a Reader (normally *store.Store) and returns DTOs.
//
// Server: chi router with /healthz, /etexts, /etexts/{id} and /stats, plus an
// optional bearer token check.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Missing author or title is rendered as an
// absent field rather than an empty string. Listing never includes full text;
// pagination is offset/limit with a default page of 50 and a ceiling of 500.
package api
