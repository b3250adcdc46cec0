package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presentation bin mapping. Thresholds are data, not scattered
// literals: the default tables below can be overridden wholesale from
// a YAML file at startup.

// Field names accepted by BinFor.
const (
	FieldChange   = "change"
	FieldGapPct   = "gap_pct"
	FieldVolume   = "volume"
	FieldFloatPct = "float_pct"
	FieldATR      = "atr"
	FieldRVol     = "rvol"
)

// BinStep is one ascending boundary of a scale. A value falls into the
// step when value < Upper, or value <= Upper for inclusive steps.
type BinStep struct {
	Upper     float64 `yaml:"upper"`
	Inclusive bool    `yaml:"inclusive,omitempty"`
	Label     string  `yaml:"label"`
}

// BinScale is a full threshold table for one field. Steps are
// evaluated in order; Zero, when set, labels an exact zero before any
// later step can claim it; Else labels everything past the last step.
type BinScale struct {
	Steps []BinStep `yaml:"steps"`
	Zero  string    `yaml:"zero,omitempty"`
	Else  string    `yaml:"else"`
}

// BinThresholds maps field name to its scale.
type BinThresholds map[string]BinScale

// bin resolves a value against the scale.
func (s BinScale) bin(v float64) string {
	for _, step := range s.Steps {
		if v < step.Upper || (step.Inclusive && v == step.Upper) {
			return step.Label
		}
		// The zero label sits between the descending and ascending
		// halves of a signed scale (change), so it is checked once the
		// negative steps are exhausted.
		if s.Zero != "" && v == 0 && step.Upper >= 0 {
			return s.Zero
		}
	}
	if s.Zero != "" && v == 0 {
		return s.Zero
	}
	return s.Else
}

// BinFor maps (field, value) to a discrete bin label. Unknown fields
// map to no bin.
func (t BinThresholds) BinFor(field string, value float64) string {
	scale, ok := t[field]
	if !ok {
		return ""
	}
	return scale.bin(value)
}

// DefaultBinThresholds returns the standard presentation tables.
func DefaultBinThresholds() BinThresholds {
	return BinThresholds{
		FieldChange: {
			Steps: []BinStep{
				{Upper: -50, Inclusive: true, Label: "extreme-down"},
				{Upper: -10, Inclusive: true, Label: "strong-down"},
				{Upper: 0, Label: "mild-down"},
				{Upper: 5, Label: "mild-up"},
				{Upper: 15, Label: "moderate-up"},
				{Upper: 30, Label: "strong-up"},
			},
			Zero: "neutral",
			Else: "extreme-up",
		},
		FieldGapPct: {
			Steps: []BinStep{
				{Upper: 0, Label: "negative"},
				{Upper: 5, Label: "neutral"},
				{Upper: 15, Label: "mild"},
				{Upper: 30, Label: "moderate"},
				{Upper: 50, Label: "strong"},
				{Upper: 100, Label: "very-strong"},
			},
			Else: "extreme",
		},
		FieldVolume: {
			Steps: []BinStep{
				{Upper: 500_000, Label: "low"},
				{Upper: 2_000_000, Label: "mild"},
				{Upper: 5_000_000, Label: "moderate"},
				{Upper: 10_000_000, Label: "strong"},
				{Upper: 50_000_000, Label: "very-strong"},
			},
			Else: "extreme",
		},
		FieldFloatPct: {
			Steps: []BinStep{
				{Upper: 5, Label: "low"},
				{Upper: 10, Label: "mild"},
				{Upper: 20, Label: "moderate"},
				{Upper: 50, Label: "strong"},
			},
			Else: "very-strong",
		},
		FieldATR: {
			Steps: []BinStep{
				{Upper: 0.5, Label: "low"},
				{Upper: 1.0, Label: "moderate"},
				{Upper: 2.0, Label: "elevated"},
			},
			Else: "high",
		},
		FieldRVol: {
			Steps: []BinStep{
				{Upper: 1, Label: "low"},
				{Upper: 2, Label: "mild"},
				{Upper: 3, Label: "moderate"},
				{Upper: 5, Label: "strong"},
			},
			Else: "extreme",
		},
	}
}

// LoadBinThresholds reads a full threshold table set from a YAML file.
func LoadBinThresholds(path string) (BinThresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bin thresholds: %w", err)
	}

	var t BinThresholds
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse bin thresholds: %w", err)
	}

	for field, scale := range t {
		if len(scale.Steps) == 0 || scale.Else == "" {
			return nil, fmt.Errorf("bin thresholds: field %q needs steps and an else label", field)
		}
	}

	return t, nil
}
