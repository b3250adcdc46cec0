package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBinForChange(t *testing.T) {
	bins := DefaultBinThresholds()

	tests := []struct {
		value float64
		want  string
	}{
		{-80, "extreme-down"},
		{-50, "extreme-down"}, // inclusive bound
		{-49.9, "strong-down"},
		{-10, "strong-down"}, // inclusive bound
		{-9.9, "mild-down"},
		{-0.01, "mild-down"},
		{0, "neutral"},
		{0.01, "mild-up"},
		{4.99, "mild-up"},
		{5, "moderate-up"},
		{14.99, "moderate-up"},
		{15, "strong-up"},
		{29.99, "strong-up"},
		{30, "extreme-up"},
		{200, "extreme-up"},
	}

	for _, tt := range tests {
		if got := bins.BinFor(FieldChange, tt.value); got != tt.want {
			t.Errorf("BinFor(change, %v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestBinForGapPct(t *testing.T) {
	bins := DefaultBinThresholds()

	tests := []struct {
		value float64
		want  string
	}{
		{-3, "negative"},
		{0, "neutral"},
		{4.9, "neutral"},
		{5, "mild"},
		{15, "moderate"},
		{30, "strong"},
		{50, "very-strong"},
		{100, "extreme"},
		{250, "extreme"},
	}

	for _, tt := range tests {
		if got := bins.BinFor(FieldGapPct, tt.value); got != tt.want {
			t.Errorf("BinFor(gap_pct, %v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestBinForVolumeMonotone(t *testing.T) {
	bins := DefaultBinThresholds()

	tests := []struct {
		value float64
		want  string
	}{
		{400_000, "low"},
		{600_000, "mild"},
		{3_000_000, "moderate"},
		{7_000_000, "strong"},
		{20_000_000, "very-strong"},
		{60_000_000, "extreme"},
	}

	// Severity order for the monotonicity check
	rank := map[string]int{
		"low": 0, "mild": 1, "moderate": 2, "strong": 3, "very-strong": 4, "extreme": 5,
	}

	prev := -1
	for _, tt := range tests {
		got := bins.BinFor(FieldVolume, tt.value)
		if got != tt.want {
			t.Errorf("BinFor(volume, %v) = %q, want %q", tt.value, got, tt.want)
		}
		if rank[got] < prev {
			t.Errorf("severity decreased at volume=%v", tt.value)
		}
		prev = rank[got]
	}
}

func TestBinForFloatPctAndATRAndRVol(t *testing.T) {
	bins := DefaultBinThresholds()

	tests := []struct {
		field string
		value float64
		want  string
	}{
		{FieldFloatPct, 3, "low"},
		{FieldFloatPct, 7, "mild"},
		{FieldFloatPct, 15, "moderate"},
		{FieldFloatPct, 30, "strong"},
		{FieldFloatPct, 80, "very-strong"},
		{FieldATR, 0.3, "low"},
		{FieldATR, 0.7, "moderate"},
		{FieldATR, 1.5, "elevated"},
		{FieldATR, 3.0, "high"},
		{FieldRVol, 0.5, "low"},
		{FieldRVol, 1.5, "mild"},
		{FieldRVol, 2.5, "moderate"},
		{FieldRVol, 4, "strong"},
		{FieldRVol, 9, "extreme"},
	}

	for _, tt := range tests {
		if got := bins.BinFor(tt.field, tt.value); got != tt.want {
			t.Errorf("BinFor(%s, %v) = %q, want %q", tt.field, tt.value, got, tt.want)
		}
	}
}

func TestBinForUnknownField(t *testing.T) {
	bins := DefaultBinThresholds()

	if got := bins.BinFor("nope", 10); got != "" {
		t.Errorf("BinFor(unknown) = %q, want empty", got)
	}
}

func TestLoadBinThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bins.yaml")

	yaml := `
rvol:
  steps:
    - upper: 2
      label: quiet
    - upper: 4
      label: busy
  else: wild
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	bins, err := LoadBinThresholds(path)
	if err != nil {
		t.Fatalf("LoadBinThresholds() failed: %v", err)
	}

	if got := bins.BinFor(FieldRVol, 1); got != "quiet" {
		t.Errorf("BinFor(rvol, 1) = %q, want quiet", got)
	}
	if got := bins.BinFor(FieldRVol, 10); got != "wild" {
		t.Errorf("BinFor(rvol, 10) = %q, want wild", got)
	}
}

func TestLoadBinThresholdsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bins.yaml")

	// Missing else label
	if err := os.WriteFile(path, []byte("rvol:\n  steps:\n    - upper: 2\n      label: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBinThresholds(path); err == nil {
		t.Error("expected error for scale without else label")
	}

	if _, err := LoadBinThresholds(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
