package annotate

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/imgajeed76/relstamp/internal/util"
)

// Page is a parsed HTML document that can be annotated once.
type Page struct {
	doc       *goquery.Document
	annotated bool
}

// Load parses an HTML document. Bytes that are not valid UTF-8 are read
// as Latin-1.
func Load(r io.Reader) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(util.ToValidUTF8Bytes(data)))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Annotated reports whether a pass has already run over the page.
func (p *Page) Annotated() bool {
	return p.annotated
}

// Render writes the document as HTML.
func (p *Page) Render(w io.Writer) error {
	for _, n := range p.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns the rendered document.
func (p *Page) HTML() (string, error) {
	var sb strings.Builder
	if err := p.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Document exposes the underlying goquery document for inspection.
func (p *Page) Document() *goquery.Document {
	return p.doc
}
