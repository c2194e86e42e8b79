package keywords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides adjusts match thresholds without changing rule order.
// Keyword overrides win over category overrides.
type Overrides struct {
	DefaultThreshold float64            `yaml:"default_threshold"`
	Categories       map[string]float64 `yaml:"categories"`
	Keywords         map[string]float64 `yaml:"keywords"`
}

// LoadOverrides reads a YAML overrides file. An empty path yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read keyword overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes and validates YAML overrides.
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("decode keyword overrides: %w", err)
	}
	if err := checkThreshold("default_threshold", o.DefaultThreshold, true); err != nil {
		return Overrides{}, err
	}
	for name, v := range o.Categories {
		if err := checkThreshold("categories."+name, v, false); err != nil {
			return Overrides{}, err
		}
	}
	for phrase, v := range o.Keywords {
		if err := checkThreshold("keywords."+phrase, v, false); err != nil {
			return Overrides{}, err
		}
	}
	return o, nil
}

func checkThreshold(field string, v float64, allowZero bool) error {
	if allowZero && v == 0 {
		return nil
	}
	if v <= 0 || v > 100 {
		return fmt.Errorf("keyword overrides: %s must be in (0,100], got %v", field, v)
	}
	return nil
}
