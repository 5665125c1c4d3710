package render

import "testing"

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResamplePeakHold(t *testing.T) {
	if got := Resample([]float64{-80, -10, -80}, 1, DownsamplePeak); !equalFloats(got, []float64{-10}) {
		t.Fatalf("expected peak -10, got %v", got)
	}
	got := Resample([]float64{1, 5, 2, 2, 9, 3}, 3, DownsamplePeak)
	if !equalFloats(got, []float64{5, 2, 9}) {
		t.Fatalf("expected [5 2 9], got %v", got)
	}
}

func TestResampleAverage(t *testing.T) {
	got := Resample([]float64{1, 5, 2, 2, 9, 3}, 3, DownsampleAverage)
	if !equalFloats(got, []float64{3, 2, 6}) {
		t.Fatalf("expected [3 2 6], got %v", got)
	}
}

func TestResampleUnevenRunsCoverEveryValue(t *testing.T) {
	values := make([]float64, 10)
	values[9] = 1
	got := Resample(values, 3, DownsamplePeak)
	if got[2] != 1 {
		t.Fatalf("expected last value in last column, got %v", got)
	}
}

func TestResampleInterpolatesUpwards(t *testing.T) {
	got := Resample([]float64{0, 10}, 5, DownsamplePeak)
	if !equalFloats(got, []float64{0, 2.5, 5, 7.5, 10}) {
		t.Fatalf("expected linear ramp, got %v", got)
	}
	if got := Resample([]float64{4}, 3, DownsampleAverage); !equalFloats(got, []float64{4, 4, 4}) {
		t.Fatalf("expected constant row, got %v", got)
	}
}

func TestResampleIndices(t *testing.T) {
	got := ResampleIndices([]uint8{1, 2}, 4)
	want := []uint8{1, 1, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
