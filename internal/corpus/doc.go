// Package corpus drives ingestion of downloaded e-texts into the corpus store.
//
// An Ingester loads the identifiers already stored, walks the data directory
// in lexicographic order, derives a record per file, skips identifiers it has
// already seen, and commits accepted records in fixed-size batches with a
// final flush at the end. A file that cannot be derived is logged and
// skipped; storage failures end the run. Re-running after a crash is safe:
// committed identifiers are skipped on the next pass.
//
// Corpus ties the pieces to a config.Config the way the CLI uses them.
package corpus
