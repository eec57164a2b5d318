// Package loader streams documents out of a Wikipedia-style dump XML.
package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// AddDocumentFunc receives each parsed (title, body) pair.
type AddDocumentFunc func(title, body string) error

// parser state: which part of the article XML is being read.
type dumpState int

const (
	inDocument dumpState = iota
	inPage
	inPageTitle
	inPageID
	inPageRevision
	inPageRevisionText
)

// Load reads the dump at path and passes every article to fn, stopping
// after maxDocuments articles (negative means no limit). Dumps with a
// .gz suffix are decompressed on the fly.
func Load(path string, maxDocuments int, fn AddDocumentFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dump %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip dump %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	return parse(r, maxDocuments, fn)
}

func parse(r io.Reader, maxDocuments int, fn AddDocumentFunc) error {
	decoder := xml.NewDecoder(r)
	state := inDocument
	var title, body strings.Builder
	articleCount := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse dump xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch state {
			case inDocument:
				if t.Name.Local == "page" {
					state = inPage
				}
			case inPage:
				switch t.Name.Local {
				case "title":
					state = inPageTitle
					title.Reset()
				case "id":
					state = inPageID
				case "revision":
					state = inPageRevision
				}
			case inPageRevision:
				if t.Name.Local == "text" {
					state = inPageRevisionText
					body.Reset()
				}
			}
		case xml.EndElement:
			switch state {
			case inPage:
				if t.Name.Local == "page" {
					state = inDocument
				}
			case inPageTitle:
				if t.Name.Local == "title" {
					state = inPage
				}
			case inPageID:
				if t.Name.Local == "id" {
					state = inPage
				}
			case inPageRevision:
				if t.Name.Local == "revision" {
					state = inPage
				}
			case inPageRevisionText:
				if t.Name.Local == "text" {
					state = inPageRevision
					if err := fn(title.String(), body.String()); err != nil {
						return err
					}
					articleCount++
					if maxDocuments >= 0 && articleCount >= maxDocuments {
						return nil
					}
				}
			}
		case xml.CharData:
			switch state {
			case inPageTitle:
				title.Write(t)
			case inPageRevisionText:
				body.Write(t)
			}
		}
	}
}
