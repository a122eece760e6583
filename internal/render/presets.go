package render

import (
	_ "embed"
	"fmt"
	"os"

	"back_scan/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Presets are per-symbology style defaults
type Presets struct {
	Default     *models.StyleOptions                      `yaml:"default"`
	Symbologies map[models.Symbology]*models.StyleOptions `yaml:"symbologies"`
}

// DefaultPresets returns the built-in presets
func DefaultPresets() *Presets {
	p, err := ParsePresets(defaultPresets)
	if err != nil {
		panic(fmt.Sprintf("built-in presets are invalid: %v", err))
	}
	return p
}

// LoadPresets reads presets from a YAML file, or returns the built-in ones when path is empty
func LoadPresets(path string) (*Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return ParsePresets(data)
}

func ParsePresets(data []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for sym := range p.Symbologies {
		if !sym.Valid() {
			return nil, fmt.Errorf("presets: unknown symbology %q", sym)
		}
	}
	return &p, nil
}

// Apply fills unset fields of style from the symbology preset, then the default preset.
// It never modifies style and is safe on a nil receiver.
func (p *Presets) Apply(sym models.Symbology, style *models.StyleOptions) *models.StyleOptions {
	out := style.Merge(nil)
	if p == nil {
		return out
	}
	return out.Merge(p.Symbologies[sym]).Merge(p.Default)
}
