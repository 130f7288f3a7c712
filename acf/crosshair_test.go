package acf

import (
	"math"
	"testing"
)

func TestNearestIndex(t *testing.T) {
	axis := []float64{-2, -1, 0, 1, 2}
	tests := []struct {
		v    float64
		want int
	}{
		{0, 2},
		{0.4, 2},
		{0.6, 3},
		{-100, 0},
		{100, 4},
		// Ties resolve to the smallest index.
		{0.5, 2},
		{-1.5, 0},
	}
	for _, tt := range tests {
		if got := NearestIndex(tt.v, axis); got != tt.want {
			t.Errorf("NearestIndex(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestResolveOrigin(t *testing.T) {
	for _, n := range []int{250, 251, 2, 17} {
		g := mustGrid(t, 150, 1.5, n)
		fi, ci := Resolve(0, 0, g.Freq, g.Code)
		for name, c := range map[string]struct {
			idx  int
			axis Axis
		}{"freq": {fi, g.Freq}, "code": {ci, g.Code}} {
			best := math.Abs(c.axis[c.idx])
			for k, v := range c.axis {
				if math.Abs(v) < best || (math.Abs(v) == best && k < c.idx) {
					t.Fatalf("n=%d %s: index %d is not the first closest to zero (%d is)", n, name, c.idx, k)
				}
			}
		}
	}
	g := mustGrid(t, 150, 1.5, 251)
	if fi, ci := Resolve(0, 0, g.Freq, g.Code); fi != 125 || ci != 125 {
		t.Fatalf("odd grid resolves origin to (%d, %d), want (125, 125)", fi, ci)
	}
}

func TestSliceScenario(t *testing.T) {
	g := mustGrid(t, 150, 1.5, 250)
	s := g.Surface(0.01, testMultipath)
	fi, ci := Resolve(20, 0.5, g.Freq, g.Code)
	if math.Abs(g.Freq[fi]-20) > g.Freq.Step()/2 || math.Abs(g.Code[ci]-0.5) > g.Code.Step()/2 {
		t.Fatalf("resolved (%v, %v) too far from (20, 0.5)", g.Freq[fi], g.Code[ci])
	}
	sl := Slice(s, fi, ci)
	if sl.Value != s.At(ci, fi) {
		t.Fatalf("slice value %v != surface value %v", sl.Value, s.At(ci, fi))
	}
	if len(sl.Freq) != len(g.Freq) || len(sl.Code) != len(g.Code) {
		t.Fatalf("slice lengths %d, %d", len(sl.Freq), len(sl.Code))
	}
	if sl.Freq[fi] != sl.Value || sl.Code[ci] != sl.Value {
		t.Fatal("slices do not cross at the crosshair value")
	}
	for j := range sl.Freq {
		if sl.Freq[j] != s.At(ci, j) {
			t.Fatalf("freq slice[%d] mismatch", j)
		}
	}
	for i := range sl.Code {
		if sl.Code[i] != s.At(i, fi) {
			t.Fatalf("code slice[%d] mismatch", i)
		}
	}
}

func TestNewCrosshair(t *testing.T) {
	g := mustGrid(t, 150, 1.5, 250)
	c := g.NewCrosshair(-149.9, 1.499)
	if c.FreqIdx != 0 || c.CodeIdx != 249 {
		t.Fatalf("crosshair %+v, want indices (0, 249)", c)
	}
	if c.Freq != -149.9 || c.Code != 1.499 {
		t.Fatalf("crosshair lost its position: %+v", c)
	}
}
