package etext

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"gutencorpus/internal/fileutil"
	"gutencorpus/internal/logging"
	"gutencorpus/internal/metadata"
)

// IDExtractor finds the e-text identifier in a line sequence.
type IDExtractor func(lines iter.Seq[string]) (int, error)

// HeaderStripper returns the body lines of a text without boilerplate.
type HeaderStripper func(lines iter.Seq[string]) iter.Seq[string]

// Deriver builds Records from raw sources.
type Deriver struct {
	extract  IDExtractor
	strip    HeaderStripper
	encoding encoding.Encoding
	logger   *slog.Logger
}

// Option customises a Deriver.
type Option func(*Deriver)

// WithExtractor replaces the identifier extractor.
func WithExtractor(fn IDExtractor) Option { return func(d *Deriver) { d.extract = fn } }

// WithStripper replaces the header/footer stripper.
func WithStripper(fn HeaderStripper) Option { return func(d *Deriver) { d.strip = fn } }

// WithEncoding replaces the source encoding. Latin-1 is the default.
func WithEncoding(enc encoding.Encoding) Option { return func(d *Deriver) { d.encoding = enc } }

// NewDeriver returns a Deriver using ExtractIdentifier and StripHeaders unless
// overridden.
func NewDeriver(logger *slog.Logger, opts ...Option) *Deriver {
	d := &Deriver{
		extract:  ExtractIdentifier,
		strip:    StripHeaders,
		encoding: charmap.ISO8859_1,
		logger:   logging.NewComponentLogger(logger, "etext"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromFile opens path and derives a Record from it.
func (d *Deriver) FromFile(path string, meta map[int]metadata.Record) (Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return Record{}, &DerivationError{Path: path, Kind: KindRead, Err: err}
	}
	defer file.Close()

	rec, err := d.derive(file, meta)
	var derr *DerivationError
	if errors.As(err, &derr) {
		derr.Path = path
	}
	return rec, err
}

// FromReader derives a Record from an already open source.
func (d *Deriver) FromReader(r io.Reader, meta map[int]metadata.Record) (Record, error) {
	return d.derive(r, meta)
}

func (d *Deriver) derive(r io.Reader, meta map[int]metadata.Record) (Record, error) {
	lines, err := decodeLines(r, d.encoding)
	if err != nil {
		return Record{}, err
	}

	// Both passes observe the same decoded lines.
	id, err := d.extract(slices.Values(lines))
	if err != nil {
		return Record{}, &DerivationError{Kind: KindIdentify, Err: err}
	}
	if id <= 0 {
		return Record{}, &DerivationError{Kind: KindIdentify, Err: fmt.Errorf("invalid identifier %d", id)}
	}
	text := strings.Join(slices.Collect(d.strip(slices.Values(lines))), "\n")

	info := meta[id]
	if info.Author == "" {
		logging.WarnWithContext(d.logger, "no author available", "metadata_missing_field",
			logging.Int(logging.FieldEtextID, id),
			logging.String("field", "author"),
			logging.String(logging.FieldErrorHint, "refresh the metadata cache if the catalog has this e-text"))
	}
	if info.Title == "" {
		logging.WarnWithContext(d.logger, "no title available", "metadata_missing_field",
			logging.Int(logging.FieldEtextID, id),
			logging.String("field", "title"),
			logging.String(logging.FieldErrorHint, "refresh the metadata cache if the catalog has this e-text"))
	}

	return Record{
		ID:       id,
		Author:   info.Author,
		Title:    info.Title,
		FullText: text,
	}, nil
}

func decodeLines(r io.Reader, enc encoding.Encoding) ([]string, error) {
	decoder := enc.NewDecoder()
	var lines []string
	for raw, err := range fileutil.Lines(r) {
		if err != nil {
			return nil, &DerivationError{Kind: KindRead, Err: err}
		}
		text, err := decoder.Bytes(raw)
		if err != nil {
			return nil, &DerivationError{Kind: KindDecode, Err: err}
		}
		lines = append(lines, string(text))
	}
	return lines, nil
}
