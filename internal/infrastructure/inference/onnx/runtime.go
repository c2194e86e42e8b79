package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var environmentMu sync.Mutex

type runtimeSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func loadRuntimeSession(cfg Config, outputs int) (Session, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", cfg.ModelPath, err)
	}
	if err := initEnvironment(cfg); err != nil {
		return nil, err
	}

	inputName, outputName, err := tensorNames(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.InputSize), int64(cfg.InputSize), 3))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(outputs)))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &runtimeSession{session: session, input: input, output: output}, nil
}

func (s *runtimeSession) Run(in []float32) ([]float32, error) {
	dst := s.input.GetData()
	if len(in) != len(dst) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(in), len(dst))
	}
	copy(dst, in)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	return append([]float32(nil), s.output.GetData()...), nil
}

func (s *runtimeSession) Close() error {
	return errors.Join(s.session.Destroy(), s.input.Destroy(), s.output.Destroy())
}

func initEnvironment(cfg Config) error {
	environmentMu.Lock()
	defer environmentMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	lib := resolveSharedLibraryPath(cfg)
	if lib == "" {
		return errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(lib)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

func tensorNames(modelPath string) (string, string, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return "", "", fmt.Errorf("inspect model: %w", err)
	}
	if len(inputs) != 1 || len(outputs) == 0 {
		return "", "", fmt.Errorf("expected one input and at least one output, got %d and %d", len(inputs), len(outputs))
	}
	return inputs[0].Name, outputs[0].Name, nil
}

func resolveSharedLibraryPath(cfg Config) string {
	if p := strings.TrimSpace(cfg.SharedLibraryPath); p != "" {
		return p
	}
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{"libonnxruntime.so", "libonnxruntime.dylib", "onnxruntime.dll"}
	dirs := []string{filepath.Dir(cfg.ModelPath), ".", "/usr/local/lib", "/usr/lib", "/opt/homebrew/lib"}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
