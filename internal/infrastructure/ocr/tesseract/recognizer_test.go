package tesseract

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

type clientFake struct {
	image     []byte
	languages []string
	variables map[string]string
	text      string
	textErr   error
	closed    bool
}

func (c *clientFake) SetImageFromBytes(data []byte) error {
	c.image = data
	return nil
}

func (c *clientFake) SetLanguage(langs ...string) error {
	c.languages = langs
	return nil
}

func (c *clientFake) SetVariable(key gosseract.SettableVariable, value string) error {
	if c.variables == nil {
		c.variables = map[string]string{}
	}
	c.variables[string(key)] = value
	return nil
}

func (c *clientFake) Text() (string, error) {
	return c.text, c.textErr
}

func (c *clientFake) Close() error {
	c.closed = true
	return nil
}

func writePage(t *testing.T) domain.PageImage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page_0000.png")
	if err := imaging.Save(imaging.New(20, 20, color.White), path); err != nil {
		t.Fatalf("save page: %v", err)
	}
	return domain.PageImage{Index: 3, Path: path}
}

func TestExtractTextConfiguresClient(t *testing.T) {
	client := &clientFake{text: "  FORM OPM\n"}
	r := NewWithClient(func() Client { return client }, Options{DPI: 200, Enhance: true})

	got := r.ExtractText(context.Background(), writePage(t))
	if got != "FORM OPM" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
	if !client.closed {
		t.Fatalf("expected client to be closed")
	}
	if strings.Join(client.languages, "+") != "ind" {
		t.Fatalf("expected default language ind, got %v", client.languages)
	}
	if client.variables["user_defined_dpi"] != "200" {
		t.Fatalf("expected dpi variable, got %v", client.variables)
	}
	if !bytes.HasPrefix(client.image, []byte("\x89PNG")) {
		t.Fatalf("expected PNG-encoded image")
	}
}

func TestExtractTextDegradesToEmpty(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	client := &clientFake{textErr: errors.New("tesseract crashed")}
	r := NewWithClient(func() Client { return client }, Options{Logger: logger})
	if got := r.ExtractText(context.Background(), writePage(t)); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if !strings.Contains(logs.String(), "ocr_failed") {
		t.Fatalf("expected ocr_failed log, got %s", logs.String())
	}

	missing := domain.PageImage{Path: filepath.Join(t.TempDir(), "missing.png")}
	if got := r.ExtractText(context.Background(), missing); got != "" {
		t.Fatalf("expected empty text for missing raster, got %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := r.ExtractText(ctx, writePage(t)); got != "" {
		t.Fatalf("expected empty text for cancelled context, got %q", got)
	}
}
