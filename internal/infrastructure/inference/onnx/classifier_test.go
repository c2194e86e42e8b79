package onnx

import (
	"context"
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

type sessionFake struct {
	scores []float32
	inputs int
	runs   atomic.Int32
	closed atomic.Bool
}

func (s *sessionFake) Run(input []float32) ([]float32, error) {
	s.runs.Add(1)
	s.inputs = len(input)
	return s.scores, nil
}

func (s *sessionFake) Close() error {
	s.closed.Store(true)
	return nil
}

func writeLabels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_names.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	return path
}

func writePage(t *testing.T) domain.PageImage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page_0000.png")
	if err := imaging.Save(imaging.New(40, 60, color.White), path); err != nil {
		t.Fatalf("save page: %v", err)
	}
	return domain.PageImage{Index: 0, Path: path}
}

func TestInferLoadsModelOnceAcrossConcurrentCalls(t *testing.T) {
	var loads atomic.Int32
	session := &sessionFake{scores: []float32{0.1, 0.8, 0.1}}
	c := NewWithLoader(Config{LabelsPath: writeLabels(t, `["BAUT","OTDR_REPORT","RLD"]`), InputSize: 8},
		func(_ Config, outputs int) (Session, error) {
			loads.Add(1)
			if outputs != 3 {
				t.Errorf("expected 3 outputs, got %d", outputs)
			}
			return session, nil
		})
	page := writePage(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			label, confidence, err := c.Infer(context.Background(), page)
			if err != nil || label != "OTDR_REPORT" || math.Abs(confidence-0.8) > 1e-6 {
				t.Errorf("Infer() = %q, %v, %v", label, confidence, err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Fatalf("expected one load, got %d", loads.Load())
	}
	if session.inputs != 8*8*3 {
		t.Fatalf("expected 192 input values, got %d", session.inputs)
	}
}

func TestCloseResetsHandle(t *testing.T) {
	var loads atomic.Int32
	var sessions []*sessionFake
	c := NewWithLoader(Config{LabelsPath: writeLabels(t, `{"1":"RLD","0":"BAUT"}`), InputSize: 4},
		func(Config, int) (Session, error) {
			loads.Add(1)
			s := &sessionFake{scores: []float32{2, 1}}
			sessions = append(sessions, s)
			return s, nil
		})
	page := writePage(t)

	label, _, err := c.Infer(context.Background(), page)
	if err != nil || label != "BAUT" {
		t.Fatalf("Infer() = %q, %v", label, err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !sessions[0].closed.Load() {
		t.Fatalf("expected first session to be closed")
	}
	if _, _, err := c.Infer(context.Background(), page); err != nil {
		t.Fatalf("Infer() after Close error = %v", err)
	}
	if loads.Load() != 2 {
		t.Fatalf("expected reload after Close, got %d loads", loads.Load())
	}
	if err := (&Classifier{}).Close(); err != nil {
		t.Fatalf("Close() on unused classifier error = %v", err)
	}
}

func TestCloseStopsAcquiredHandle(t *testing.T) {
	session := &sessionFake{scores: []float32{2, 1}}
	c := NewWithLoader(Config{LabelsPath: writeLabels(t, `["BAUT","RLD"]`), InputSize: 4},
		func(Config, int) (Session, error) { return session, nil })

	// A caller holding the handle when Close runs must not reach the session.
	h := c.acquire()
	if h.err != nil {
		t.Fatalf("acquire() error = %v", h.err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := h.infer(make([]float32, 4*4*3)); !errors.Is(err, errSessionClosed) {
		t.Fatalf("expected closed session error, got %v", err)
	}
	if session.runs.Load() != 0 || !session.closed.Load() {
		t.Fatalf("expected closed session never run, got %d runs", session.runs.Load())
	}
}

func TestInferReportsUnavailableModel(t *testing.T) {
	c := NewWithLoader(Config{LabelsPath: writeLabels(t, `["BAUT"]`)}, func(Config, int) (Session, error) {
		return nil, errors.New("library missing")
	})

	_, _, err := c.Infer(context.Background(), writePage(t))
	if !domain.IsKind(err, domain.ErrInferenceUnavailable) {
		t.Fatalf("expected ErrInferenceUnavailable, got %v", err)
	}

	missingLabels := NewWithLoader(Config{LabelsPath: filepath.Join(t.TempDir(), "none.json")}, func(Config, int) (Session, error) {
		t.Fatalf("loader must not run without labels")
		return nil, nil
	})
	if _, _, err := missingLabels.Infer(context.Background(), writePage(t)); !domain.IsKind(err, domain.ErrInferenceUnavailable) {
		t.Fatalf("expected ErrInferenceUnavailable, got %v", err)
	}
}

func TestInferRejectsScoreLabelMismatch(t *testing.T) {
	c := NewWithLoader(Config{LabelsPath: writeLabels(t, `["BAUT"]`), InputSize: 4}, func(Config, int) (Session, error) {
		return &sessionFake{scores: []float32{0.1, 0.9}}, nil
	})
	if _, _, err := c.Infer(context.Background(), writePage(t)); !domain.IsKind(err, domain.ErrInferenceUnavailable) {
		t.Fatalf("expected ErrInferenceUnavailable, got %v", err)
	}
}

func TestProbabilitiesAppliesSoftmaxToLogits(t *testing.T) {
	probs := probabilities([]float32{2, 0, -1})
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected probabilities to sum to 1, got %v", sum)
	}
	if idx, _ := argmax(probs); idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}

	passthrough := probabilities([]float32{0.25, 0.75})
	if math.Abs(passthrough[1]-0.75) > 1e-6 {
		t.Fatalf("expected distribution to pass through, got %v", passthrough)
	}
	if idx, _ := argmax(nil); idx != -1 {
		t.Fatalf("expected -1 for empty scores, got %d", idx)
	}
}

func TestLoadLabelsRejectsBadIndexes(t *testing.T) {
	if _, err := LoadLabels(writeLabels(t, `{"0":"BAUT","5":"RLD"}`)); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := LoadLabels(writeLabels(t, `{"x":"BAUT"}`)); err == nil {
		t.Fatalf("expected invalid index error")
	}
	if _, err := LoadLabels(""); err == nil {
		t.Fatalf("expected empty path error")
	}
}

func TestPreprocessScalesGrayscale(t *testing.T) {
	input, err := Preprocess(writePage(t).Path, 2)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if len(input) != 12 {
		t.Fatalf("expected 12 values, got %d", len(input))
	}
	for _, v := range input {
		if v != 1 {
			t.Fatalf("expected white page to map to 1, got %v", v)
		}
	}
}
