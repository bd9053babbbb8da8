package metadata

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// CatalogProvider builds the mapping from a local copy of the Project
// Gutenberg RDF catalog. Path may name a .tar, .tar.gz, or .tar.bz2 archive
// or a directory tree of .rdf files.
type CatalogProvider struct {
	Path string
}

// Fetch parses every RDF document in the catalog.
func (p CatalogProvider) Fetch(ctx context.Context) (map[int]Record, error) {
	if strings.TrimSpace(p.Path) == "" {
		return nil, fmt.Errorf("catalog path not configured")
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	records := make(map[int]Record)
	if info.IsDir() {
		err = p.walkDir(ctx, records)
	} else {
		err = p.walkArchive(ctx, records)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p CatalogProvider) walkDir(ctx context.Context, records map[int]Record) error {
	return filepath.WalkDir(p.Path, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(name, ".rdf") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open catalog entry: %w", err)
		}
		defer file.Close()
		return collectRDF(file, name, records)
	})
}

func (p CatalogProvider) walkArchive(ctx context.Context, records map[int]Record) error {
	file, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	lower := strings.ToLower(p.Path)
	switch {
	case strings.HasSuffix(lower, ".bz2"):
		reader = bzip2.NewReader(file)
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read catalog archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, ".rdf") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := collectRDF(tr, header.Name, records); err != nil {
			return err
		}
	}
}

type rdfDocument struct {
	Ebooks []rdfEbook `xml:"http://www.gutenberg.org/2009/pgterms/ ebook"`
}

type rdfEbook struct {
	About     string        `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	Titles    []string      `xml:"http://purl.org/dc/terms/ title"`
	Creators  []rdfCreator  `xml:"http://purl.org/dc/terms/ creator"`
	Languages []rdfValueBox `xml:"http://purl.org/dc/terms/ language"`
	Subjects  []rdfValueBox `xml:"http://purl.org/dc/terms/ subject"`
}

type rdfCreator struct {
	Agents []struct {
		Names []string `xml:"http://www.gutenberg.org/2009/pgterms/ name"`
	} `xml:"http://www.gutenberg.org/2009/pgterms/ agent"`
}

type rdfValueBox struct {
	Descriptions []struct {
		Value string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# value"`
	} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

func collectRDF(r io.Reader, name string, records map[int]Record) error {
	var doc rdfDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("parse catalog entry %s: %w", name, err)
	}
	for _, book := range doc.Ebooks {
		id, err := strconv.Atoi(path.Base(strings.TrimSpace(book.About)))
		if err != nil || id <= 0 {
			continue
		}
		records[id] = book.record()
	}
	return nil
}

func (b rdfEbook) record() Record {
	var rec Record
	if len(b.Titles) > 0 {
		rec.Title = normalizeSpace(b.Titles[0])
	}
	var authors []string
	for _, creator := range b.Creators {
		for _, agent := range creator.Agents {
			for _, name := range agent.Names {
				if name = normalizeSpace(name); name != "" {
					authors = append(authors, name)
				}
			}
		}
	}
	rec.Author = strings.Join(authors, "; ")
	rec.Language = boxValues(b.Languages)
	rec.Subjects = boxValues(b.Subjects)
	return rec
}

func boxValues(boxes []rdfValueBox) []string {
	var out []string
	for _, box := range boxes {
		for _, desc := range box.Descriptions {
			if v := normalizeSpace(desc.Value); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
