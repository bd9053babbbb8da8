package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EtextBody renders a minimal Project Gutenberg style text for id with the
// usual header and footer markers around body.
func EtextBody(id int, body string) string {
	return fmt.Sprintf("The Project Gutenberg EBook of Test %d\r\n\r\n"+
		"Release Date: January 1, 2000 [EBook #%d]\r\n\r\n"+
		"*** START OF THIS PROJECT GUTENBERG EBOOK TEST ***\r\n\r\n"+
		"Produced by Test Volunteers\r\n\r\n"+
		"%s\r\n\r\n"+
		"*** END OF THIS PROJECT GUTENBERG EBOOK TEST ***\r\n"+
		"License boilerplate\r\n", id, id, body)
}

// WriteFile creates path (and its parents) with the given content.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteEtext writes an e-text file named name under dir and returns its path.
func WriteEtext(t testing.TB, dir, name string, id int, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, []byte(EtextBody(id, body)))
	return path
}
