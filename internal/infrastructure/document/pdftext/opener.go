// Package pdftext opens source documents and reads the embedded PDF text
// layer when there is one.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/document"
)

// PageCounter counts the pages of a PDF the text parser could not read.
type PageCounter func(path string) (int, error)

type Opener struct {
	maxPages int
	fallback PageCounter
}

type Option func(*Opener)

// WithFallbackCounter lets a document open without a text layer when the
// text parser rejects it but the counter (the rasterizer's engine) does not.
func WithFallbackCounter(counter PageCounter) Option {
	return func(o *Opener) {
		o.fallback = counter
	}
}

// NewOpener builds an opener. maxPages <= 0 disables the page limit.
func NewOpener(maxPages int, opts ...Option) *Opener {
	o := &Opener{maxPages: maxPages}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Opener) Open(ctx context.Context, path, mimeType string) (domain.SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.SourceDocument{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("stat source document: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return domain.SourceDocument{}, errors.New("source document is empty")
	}

	switch document.Detect(path, mimeType) {
	case document.KindPDF:
		doc, err := o.openPDF(path)
		if err == nil || errors.Is(err, errPageLimit) || o.fallback == nil {
			return doc, err
		}
		return o.openWithoutText(path, err)
	case document.KindImage:
		return domain.SourceDocument{Path: path, MimeType: mimeType, PageCount: 1, TextLayer: []string{""}}, nil
	default:
		return domain.SourceDocument{}, fmt.Errorf("unsupported source format %q", mimeType)
	}
}

var errPageLimit = errors.New("page limit exceeded")

// openWithoutText counts pages with the fallback counter and leaves every
// page without a text layer.
func (o *Opener) openWithoutText(path string, parseErr error) (domain.SourceDocument, error) {
	pages, err := o.fallback(path)
	if err != nil {
		return domain.SourceDocument{}, errors.Join(parseErr, fmt.Errorf("count pages: %w", err))
	}
	if pages <= 0 {
		return domain.SourceDocument{}, errors.New("pdf has no pages")
	}
	if o.maxPages > 0 && pages > o.maxPages {
		return domain.SourceDocument{}, fmt.Errorf("%w: pdf has %d pages, limit is %d", errPageLimit, pages, o.maxPages)
	}
	return domain.SourceDocument{
		Path:      path,
		MimeType:  "application/pdf",
		PageCount: pages,
		TextLayer: make([]string, pages),
	}, nil
}

func (o *Opener) openPDF(path string) (doc domain.SourceDocument, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			doc = domain.SourceDocument{}
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages <= 0 {
		return domain.SourceDocument{}, errors.New("pdf has no pages")
	}
	if o.maxPages > 0 && pages > o.maxPages {
		return domain.SourceDocument{}, fmt.Errorf("%w: pdf has %d pages, limit is %d", errPageLimit, pages, o.maxPages)
	}

	texts := make([]string, pages)
	for i := 1; i <= pages; i++ {
		texts[i-1] = pageText(r, i)
	}

	return domain.SourceDocument{
		Path:      path,
		MimeType:  "application/pdf",
		PageCount: pages,
		TextLayer: texts,
	}, nil
}

// pageText returns the text layer of page n (1-based), or "" for scanned
// pages and pages the parser cannot decode.
func pageText(r *pdf.Reader, n int) string {
	return safeText(func() (string, error) {
		page := r.Page(n)
		if page.V.IsNull() {
			return "", nil
		}
		return page.GetPlainText(nil)
	})
}

// safeText runs one page extraction, turning a parser panic into no text.
func safeText(extract func() (string, error)) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	text, err := extract()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
