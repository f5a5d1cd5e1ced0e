package calculator

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestRollingMean_ShrinkingWindow(t *testing.T) {
	got, err := RollingMean([]float64{1, 2, 3, 4, 5, 6}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 1.5, 2, 3, 4, 5}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("index %d: expected %.4f, got %.4f", i, want[i], got[i])
		}
	}
}

func TestRollingMean_InvalidWindow(t *testing.T) {
	if _, err := RollingMean([]float64{1}, 0); err == nil {
		t.Fatal("expected error for zero window")
	}
}

func TestRollingStd_SingleObservationIsZero(t *testing.T) {
	got, err := RollingStd([]float64{10, 12, 14}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("expected 0 for single observation, got %v", got[0])
	}
	if !almostEqual(got[1], math.Sqrt2) {
		t.Errorf("expected sqrt(2), got %v", got[1])
	}
	if !almostEqual(got[2], 2) {
		t.Errorf("expected 2, got %v", got[2])
	}
}

func TestDiff(t *testing.T) {
	got := Diff([]float64{3, 5, 4})
	want := []float64{0, 2, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if len(Diff(nil)) != 0 {
		t.Error("expected empty diff for empty input")
	}
}

func TestEWMSpan_Adjusted(t *testing.T) {
	// span 3 => alpha 0.5; second value = (2 + 0.5*1) / (1 + 0.5)
	got, err := EWMSpan([]float64{1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 2.5 / 1.5, (3 + 0.5*2 + 0.25*1) / 1.75}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("index %d: expected %.6f, got %.6f", i, want[i], got[i])
		}
	}
}

func TestEWMCom_HalfCenterOfMass(t *testing.T) {
	// com 0.5 => alpha 2/3, decay 1/3
	got, err := EWMCom([]float64{3, 6}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (6 + 3.0/3) / (1 + 1.0/3)
	if !almostEqual(got[0], 3) || !almostEqual(got[1], want) {
		t.Errorf("expected [3 %.6f], got %v", want, got)
	}
}

func TestEWM_ConstantSeriesStaysConstant(t *testing.T) {
	vals := []float64{7, 7, 7, 7, 7}
	got, _ := EWMSpan(vals, 26)
	for i, v := range got {
		if !almostEqual(v, 7) {
			t.Errorf("index %d: expected 7, got %v", i, v)
		}
	}
}
