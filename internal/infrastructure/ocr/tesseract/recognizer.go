// Package tesseract extracts page text with the Tesseract OCR engine.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

// Client is the subset of the gosseract client used for recognition.
type Client interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(langs ...string) error
	SetVariable(key gosseract.SettableVariable, value string) error
	Text() (string, error)
	Close() error
}

type Options struct {
	Languages []string
	DPI       int
	Enhance   bool
	Logger    *slog.Logger
}

// Recognizer implements ports.TextRecognizer. Recognition failures are logged
// and yield empty text.
type Recognizer struct {
	newClient func() Client
	opts      Options
}

var _ ports.TextRecognizer = (*Recognizer)(nil)

func New(opts Options) *Recognizer {
	return NewWithClient(func() Client { return gosseract.NewClient() }, opts)
}

func NewWithClient(newClient func() Client, opts Options) *Recognizer {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"ind"}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Recognizer{newClient: newClient, opts: opts}
}

func (r *Recognizer) ExtractText(ctx context.Context, page domain.PageImage) string {
	if ctx.Err() != nil {
		return ""
	}
	text, err := r.recognize(page.Path)
	if err != nil {
		r.opts.Logger.Warn("ocr_failed", "page", page.Index, "error", err)
		return ""
	}
	return text
}

func (r *Recognizer) recognize(path string) (string, error) {
	data, err := r.load(path)
	if err != nil {
		return "", err
	}

	c := r.newClient()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(r.opts.Languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if r.opts.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(r.opts.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// load reads the page raster, optionally boosting contrast and sharpness for
// faint scans, and returns it PNG-encoded.
func (r *Recognizer) load(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page raster: %w", err)
	}
	if r.opts.Enhance {
		gray := imaging.Grayscale(img)
		gray = imaging.AdjustContrast(gray, 30)
		img = imaging.Sharpen(gray, 1.5)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode page raster: %w", err)
	}
	return buf.Bytes(), nil
}
