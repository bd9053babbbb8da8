// Package etext derives corpus records from raw Project Gutenberg text files.
//
// A Deriver reads a source as Latin-1 lines, hands the same line sequence to
// an identifier extractor and to a header/footer stripper, and joins the
// result with the metadata known for the identifier. Missing author or title
// metadata is logged as a warning; failure to identify or read a source is
// returned as a *DerivationError so callers can skip the file.
package etext
