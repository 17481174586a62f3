// Package vocabulary holds the fixed choice lists of the data-entry form and
// the default lookup rows for a new catalog.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/materials-backend/internal/domain/catalog"
)

//go:embed vocabulary.yaml
var defaultYAML []byte

type Vocabulary struct {
	SampleTypes    []catalog.Choice `yaml:"sample_types" json:"sample_types"`
	CrystalSystems []catalog.Choice `yaml:"crystal_systems" json:"crystal_systems"`
	Phases         []string         `yaml:"phases" json:"phases"`
	Properties     []string         `yaml:"properties" json:"properties"`
	Units          []string         `yaml:"units" json:"units"`
}

// Default returns the embedded vocabulary.
func Default() (*Vocabulary, error) {
	return Parse(defaultYAML)
}

// Load reads path when set, otherwise the embedded default.
func Load(path string) (*Vocabulary, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vocabulary) validate() error {
	for name, choices := range map[string][]catalog.Choice{
		"sample_types":    v.SampleTypes,
		"crystal_systems": v.CrystalSystems,
	} {
		if len(choices) == 0 {
			return fmt.Errorf("vocabulary: %s is empty", name)
		}
		seen := map[int]bool{}
		for _, c := range choices {
			if seen[c.Code] {
				return fmt.Errorf("vocabulary: duplicate %s code %d", name, c.Code)
			}
			seen[c.Code] = true
		}
	}
	return nil
}

// ValidSampleType reports whether code is one of the configured sample types.
func (v *Vocabulary) ValidSampleType(code int) bool { return hasCode(v.SampleTypes, code) }

func (v *Vocabulary) ValidCrystalSystem(code int) bool { return hasCode(v.CrystalSystems, code) }

func hasCode(choices []catalog.Choice, code int) bool {
	for _, c := range choices {
		if c.Code == code {
			return true
		}
	}
	return false
}
