package etext_test

import (
	"errors"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"gutencorpus/internal/etext"
	"gutencorpus/internal/metadata"
	"gutencorpus/internal/testsupport"
)

func TestFromFileDerivesRecord(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteEtext(t, dir, "moby.txt", 2701, "Call me Ishmael.\r\nSome years ago.  ")
	recorder, logger := testsupport.NewLogRecorder()

	meta := map[int]metadata.Record{2701: {Author: "Melville, Herman", Title: "Moby Dick"}}
	rec, err := etext.NewDeriver(logger).FromFile(path, meta)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if rec.ID != 2701 {
		t.Fatalf("unexpected id %d", rec.ID)
	}
	if rec.Author != "Melville, Herman" || rec.Title != "Moby Dick" {
		t.Fatalf("unexpected metadata: %+v", rec)
	}
	if rec.FullText != "Call me Ishmael.\nSome years ago." {
		t.Fatalf("unexpected full text %q", rec.FullText)
	}
	if n := recorder.CountLevel(slog.LevelWarn); n != 0 {
		t.Fatalf("expected no warnings, got %d", n)
	}
}

func TestFromReaderDecodesLatin1(t *testing.T) {
	raw := []byte(testsupport.EtextBody(5, "caf\xe9 na\xefve \xa3"))
	rec, err := etext.NewDeriver(nil).FromReader(strings.NewReader(string(raw)), map[int]metadata.Record{5: {Author: "A", Title: "T"}})
	if err != nil {
		t.Fatalf("FromReader failed: %v", err)
	}
	if rec.FullText != "café naïve £" {
		t.Fatalf("expected latin-1 decoding, got %q", rec.FullText)
	}
}

func TestFromFileWarnsOnMissingMetadata(t *testing.T) {
	path := testsupport.WriteEtext(t, t.TempDir(), "x.txt", 77, "body")
	recorder, logger := testsupport.NewLogRecorder()

	rec, err := etext.NewDeriver(logger).FromFile(path, map[int]metadata.Record{})
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if rec.Author != "" || rec.Title != "" {
		t.Fatalf("expected empty metadata, got %+v", rec)
	}
	if n := recorder.Count(slog.LevelWarn, "no author available"); n != 1 {
		t.Fatalf("expected one author warning, got %d", n)
	}
	if n := recorder.Count(slog.LevelWarn, "no title available"); n != 1 {
		t.Fatalf("expected one title warning, got %d", n)
	}
}

func TestFromFilePartialMetadata(t *testing.T) {
	path := testsupport.WriteEtext(t, t.TempDir(), "x.txt", 78, "body")
	recorder, logger := testsupport.NewLogRecorder()

	rec, err := etext.NewDeriver(logger).FromFile(path, map[int]metadata.Record{78: {Title: "Anonymous Work"}})
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if rec.Title != "Anonymous Work" || rec.Author != "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if recorder.CountLevel(slog.LevelWarn) != 1 || recorder.Count(slog.LevelWarn, "no author available") != 1 {
		t.Fatalf("expected only the author warning, got %+v", recorder.Entries())
	}
}

func TestFromFileIdentificationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, path, []byte("just some notes\nwithout any identifier\n"))

	_, err := etext.NewDeriver(nil).FromFile(path, nil)
	var derr *etext.DerivationError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DerivationError, got %v", err)
	}
	if derr.Kind != etext.KindIdentify || derr.Path != path {
		t.Fatalf("unexpected error details: %+v", derr)
	}
	if !errors.Is(err, etext.ErrNoIdentifier) {
		t.Fatalf("expected ErrNoIdentifier in chain, got %v", err)
	}
	if etext.KindOf(err) != "identify" {
		t.Fatalf("KindOf = %q", etext.KindOf(err))
	}
}

func TestFromFileMissingSource(t *testing.T) {
	_, err := etext.NewDeriver(nil).FromFile(filepath.Join(t.TempDir(), "absent.txt"), nil)
	if etext.KindOf(err) != string(etext.KindRead) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestCustomCollaborators(t *testing.T) {
	deriver := etext.NewDeriver(nil,
		etext.WithExtractor(func(lines iter.Seq[string]) (int, error) {
			for line := range lines {
				if line == "id=9" {
					return 9, nil
				}
			}
			return 0, etext.ErrNoIdentifier
		}),
		etext.WithStripper(func(lines iter.Seq[string]) iter.Seq[string] {
			return func(yield func(string) bool) {
				for line := range lines {
					if strings.HasPrefix(line, "id=") {
						continue
					}
					if !yield(strings.ToUpper(line)) {
						return
					}
				}
			}
		}),
	)
	rec, err := deriver.FromReader(strings.NewReader("id=9\nhello\nworld"), map[int]metadata.Record{9: {Author: "a", Title: "t"}})
	if err != nil {
		t.Fatalf("FromReader failed: %v", err)
	}
	if rec.ID != 9 || rec.FullText != "HELLO\nWORLD" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

var errNonASCII = errors.New("byte outside ASCII")

// asciiOnly decodes 7-bit input and rejects everything else.
type asciiOnly struct{ transform.NopResetter }

func (asciiOnly) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	n := 0
	for _, b := range src {
		if b >= 0x80 {
			return n, n, errNonASCII
		}
		if n >= len(dst) {
			return n, n, transform.ErrShortDst
		}
		dst[n] = b
		n++
	}
	return n, n, nil
}

type asciiEncoding struct{}

func (asciiEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: asciiOnly{}}
}
func (asciiEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: asciiOnly{}}
}

func TestFromReaderDecodeFailure(t *testing.T) {
	deriver := etext.NewDeriver(nil, etext.WithEncoding(asciiEncoding{}))

	rec, err := deriver.FromReader(strings.NewReader(testsupport.EtextBody(3, "plain")), nil)
	if err != nil {
		t.Fatalf("ASCII input should decode: %v", err)
	}
	if rec.ID != 3 {
		t.Fatalf("unexpected id %d", rec.ID)
	}

	_, err = deriver.FromReader(strings.NewReader(testsupport.EtextBody(3, "caf\xe9")), nil)
	if etext.KindOf(err) != string(etext.KindDecode) {
		t.Fatalf("expected decode failure, got %v", err)
	}
	if !errors.Is(err, errNonASCII) {
		t.Fatalf("expected wrapped decoder error, got %v", err)
	}
}
