package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable([]string{"ID", "Title"}, [][]string{{"7", "Short"}, {"1234", "A longer title", "extra"}}, []int{1})

	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 table lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "    7 │ Short") {
		t.Fatalf("expected right-aligned id, got %q", lines[3])
	}
	if strings.Contains(out, "extra") {
		t.Fatalf("cells past the header width should be dropped:\n%s", out)
	}
}

func TestWriteRowsFallsBackToTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRows(&buf, []string{"ID", "Title"}, [][]string{{"7", "tab\there"}, {"8"}}, 1); err != nil {
		t.Fatalf("writeRows returned error: %v", err)
	}
	want := "ID\tTitle\n7\ttab here\n8\t\n"
	if buf.String() != want {
		t.Fatalf("writeRows = %q, want %q", buf.String(), want)
	}
}
