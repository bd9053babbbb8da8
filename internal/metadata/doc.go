// Package metadata provides the e-text metadata index: a lazily built,
// memoized mapping from e-text identifier to bibliographic fields.
//
// The index is read from a JSON cache artifact (gzip-compressed when the path
// ends in .gz). When the artifact is absent the mapping is rebuilt from a
// Provider, written back to the artifact, and returned. Any other cache read
// error is surfaced to the caller rather than treated as a miss.
package metadata
