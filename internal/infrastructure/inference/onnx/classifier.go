// Package onnx classifies page rasters with an exported image model run
// through ONNX Runtime.
package onnx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

const DefaultInputSize = 224

type Config struct {
	ModelPath         string
	LabelsPath        string
	SharedLibraryPath string
	InputSize         int
}

// Session runs the model on one preprocessed input tensor.
type Session interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// Loader opens a model session. It is called at most once per handle.
type Loader func(cfg Config, outputs int) (Session, error)

// Classifier lazily loads the model on first use and shares the handle across
// concurrent pipelines. Close drops the handle; the next Infer loads it again.
type Classifier struct {
	cfg  Config
	load Loader

	mu     sync.Mutex
	handle *handle
}

type handle struct {
	once    sync.Once
	session Session
	labels  []string
	err     error

	// run serializes session use; closed is set under run once Close has
	// destroyed the session.
	run    sync.Mutex
	closed bool
}

var errSessionClosed = errors.New("model session closed")

var _ ports.LabelInferencer = (*Classifier)(nil)

func New(cfg Config) *Classifier {
	return NewWithLoader(cfg, loadRuntimeSession)
}

func NewWithLoader(cfg Config, load Loader) *Classifier {
	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultInputSize
	}
	return &Classifier{cfg: cfg, load: load}
}

// Infer returns the most probable label and its probability.
func (c *Classifier) Infer(ctx context.Context, page domain.PageImage) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	h := c.acquire()
	if h.err != nil {
		return "", 0, domain.WrapError(domain.ErrInferenceUnavailable, "load model", h.err)
	}

	input, err := Preprocess(page.Path, c.cfg.InputSize)
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrInferenceUnavailable, "preprocess page", err)
	}

	scores, err := h.infer(input)
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrInferenceUnavailable, "run model", err)
	}

	best, prob := argmax(probabilities(scores))
	if best < 0 || best >= len(h.labels) {
		return "", 0, domain.WrapError(domain.ErrInferenceUnavailable, "run model",
			fmt.Errorf("model produced %d scores for %d labels", len(scores), len(h.labels)))
	}
	return h.labels[best], prob, nil
}

// Close releases the loaded session, if any.
func (c *Classifier) Close() error {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	h.run.Lock()
	defer h.run.Unlock()
	h.closed = true
	if h.session == nil {
		return nil
	}
	return h.session.Close()
}

// infer runs the session unless Close got to it first.
func (h *handle) infer(input []float32) ([]float32, error) {
	h.run.Lock()
	defer h.run.Unlock()
	if h.closed {
		return nil, errSessionClosed
	}
	return h.session.Run(input)
}

func (c *Classifier) acquire() *handle {
	c.mu.Lock()
	if c.handle == nil {
		c.handle = &handle{}
	}
	h := c.handle
	c.mu.Unlock()

	h.once.Do(func() {
		labels, err := LoadLabels(c.cfg.LabelsPath)
		if err != nil {
			h.err = fmt.Errorf("load labels: %w", err)
			return
		}
		session, err := c.load(c.cfg, len(labels))
		if err != nil {
			h.err = err
			return
		}
		h.labels = labels
		h.session = session
	})
	return h
}

// LoadLabels reads class names either as a JSON array or as an index-keyed
// object such as {"0": "BAUT"}.
func LoadLabels(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("labels path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, errors.New("labels file is empty")
	}
	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// probabilities passes through scores that already form a distribution and
// applies softmax to raw logits.
func probabilities(scores []float32) []float64 {
	out := make([]float64, len(scores))
	sum := 0.0
	distribution := true
	for i, s := range scores {
		v := float64(s)
		out[i] = v
		sum += v
		if v < 0 || v > 1 {
			distribution = false
		}
	}
	if distribution && math.Abs(sum-1) < 1e-3 {
		return out
	}

	maxLogit := math.Inf(-1)
	for _, v := range out {
		maxLogit = math.Max(maxLogit, v)
	}
	sum = 0
	for i, v := range out {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(values []float64) (int, float64) {
	best := -1
	bestValue := math.Inf(-1)
	for i, v := range values {
		if v > bestValue {
			best, bestValue = i, v
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestValue
}
