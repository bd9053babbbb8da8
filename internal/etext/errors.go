package etext

import (
	"errors"
	"fmt"
)

// Kind classifies why a record could not be derived.
type Kind string

const (
	// KindRead covers failures opening or reading the source.
	KindRead Kind = "read"
	// KindDecode covers failures converting source bytes to text. Latin-1
	// accepts every byte, so only an encoding set with WithEncoding that
	// rejects input produces it.
	KindDecode Kind = "decode"
	// KindIdentify covers sources without a recognizable identifier.
	KindIdentify Kind = "identify"
)

// ErrNoIdentifier is returned by identifier extractors that find no match.
var ErrNoIdentifier = errors.New("no etext identifier found")

// DerivationError reports a per-file failure. It is never fatal to a batch.
type DerivationError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *DerivationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("derive record [%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("derive record from %s [%s]: %v", e.Path, e.Kind, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or "unknown" when err is not a
// DerivationError.
func KindOf(err error) string {
	var derr *DerivationError
	if errors.As(err, &derr) {
		return string(derr.Kind)
	}
	return "unknown"
}
