package metadata

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleRDF = `<?xml version="1.0" encoding="utf-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
  xmlns:pgterms="http://www.gutenberg.org/2009/pgterms/"
  xmlns:dcterms="http://purl.org/dc/terms/">
  <pgterms:ebook rdf:about="ebooks/11">
    <dcterms:title>Alice's Adventures
 in Wonderland</dcterms:title>
    <dcterms:creator>
      <pgterms:agent rdf:about="2009/agents/7">
        <pgterms:name>Carroll, Lewis</pgterms:name>
      </pgterms:agent>
    </dcterms:creator>
    <dcterms:language>
      <rdf:Description>
        <rdf:value>en</rdf:value>
      </rdf:Description>
    </dcterms:language>
    <dcterms:subject>
      <rdf:Description>
        <rdf:value>Fantasy fiction</rdf:value>
      </rdf:Description>
    </dcterms:subject>
  </pgterms:ebook>
</rdf:RDF>
`

const untitledRDF = `<?xml version="1.0" encoding="utf-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
  xmlns:pgterms="http://www.gutenberg.org/2009/pgterms/">
  <pgterms:ebook rdf:about="ebooks/99"/>
</rdf:RDF>
`

func TestCatalogProviderReadsTarArchive(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, body := range map[string]string{
		"cache/epub/11/pg11.rdf": sampleRDF,
		"cache/epub/99/pg99.rdf": untitledRDF,
		"cache/README":           "ignored",
	} {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatalf("write body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	archive := filepath.Join(t.TempDir(), "rdf-files.tar")
	if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	got, err := CatalogProvider{Path: archive}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	want := map[int]Record{
		11: {
			Author:   "Carroll, Lewis",
			Title:    "Alice's Adventures in Wonderland",
			Language: []string{"en"},
			Subjects: []string{"Fantasy fiction"},
		},
		99: {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected records:\n got %#v\nwant %#v", got, want)
	}
}

func TestCatalogProviderReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "11", "pg11.rdf")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte(sampleRDF), 0o644); err != nil {
		t.Fatalf("write rdf: %v", err)
	}

	got, err := CatalogProvider{Path: dir}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got[11].Title != "Alice's Adventures in Wonderland" || got[11].Author != "Carroll, Lewis" {
		t.Fatalf("unexpected record: %#v", got[11])
	}
}

func TestCatalogProviderRequiresPath(t *testing.T) {
	if _, err := (CatalogProvider{}).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for empty catalog path")
	}
}
