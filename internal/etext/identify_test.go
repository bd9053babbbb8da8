package etext

import (
	"errors"
	"slices"
	"testing"
)

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  int
		err   error
	}{
		{name: "bracketed ebook", lines: []string{"Title: Pride and Prejudice", "Release Date: August 26, 2008 [EBook #1342]"}, want: 1342},
		{name: "etext", lines: []string{"June, 1994  [Etext #74]"}, want: 74},
		{name: "lowercase with no", lines: []string{"this is ebook no. 12 in the series"}, want: 12},
		{name: "hyphenated", lines: []string{"E-Book #300"}, want: 300},
		{name: "first match wins", lines: []string{"[EBook #5]", "[EBook #6]"}, want: 5},
		{name: "none", lines: []string{"The Project Gutenberg EBook of Nothing"}, err: ErrNoIdentifier},
		{name: "empty", lines: nil, err: ErrNoIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractIdentifier(slices.Values(tt.lines))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestStripHeaders(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name: "markers and credits",
			lines: []string{
				"header", "*** START OF THIS PROJECT GUTENBERG EBOOK X ***", "",
				"Produced by Someone", "and Friends", "",
				"Chapter 1  ", "", "Text.", "",
				"*** END OF THIS PROJECT GUTENBERG EBOOK X ***", "footer",
			},
			want: []string{"Chapter 1", "", "Text."},
		},
		{
			name:  "small print header",
			lines: []string{"legal", "*END*THE SMALL PRINT! FOR PUBLIC DOMAIN ETEXTS*Ver.04.29.93*END*", "Body", "End of the Project Gutenberg Etext"},
			want:  []string{"Body"},
		},
		{
			name:  "no markers",
			lines: []string{"", "plain", "text", ""},
			want:  []string{"plain", "text"},
		},
		{
			name:  "only footer",
			lines: []string{"body", "End of Project Gutenberg's Thing"},
			want:  []string{"body"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(StripHeaders(slices.Values(tt.lines)))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}
