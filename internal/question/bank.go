package question

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is one question template from the bank. A declared difficulty
// always wins over the selector's random draw.
type Template struct {
	Text       string     `yaml:"q"`
	Keywords   []string   `yaml:"keywords"`
	Difficulty Difficulty `yaml:"difficulty"`
}

// Bank holds the fixed question templates, partitioned by category.
// Technical templates are additionally keyed by lowercase skill tag,
// with a "general" fallback bucket.
type Bank struct {
	Technical      map[string][]Template `yaml:"technical"`
	Behavioral     []Template            `yaml:"behavioral"`
	Project        []Template            `yaml:"project"`
	Scenario       []Template            `yaml:"scenario"`
	ProblemSolving []Template            `yaml:"problem_solving"`
}

// LoadBank parses the embedded template bank.
func LoadBank() (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(templatesYAML, &b); err != nil {
		return nil, fmt.Errorf("parse template bank: %w", err)
	}
	if len(b.Technical["general"]) == 0 {
		return nil, fmt.Errorf("template bank has no technical general bucket")
	}
	return &b, nil
}

// MustLoadBank parses the embedded bank or panics. The bank ships inside the
// binary, so a parse failure is a build defect, not a runtime condition.
func MustLoadBank() *Bank {
	b, err := LoadBank()
	if err != nil {
		panic(err)
	}
	return b
}
