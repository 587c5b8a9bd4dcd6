package main

import (
	"math"
	"testing"
	"time"
)

func TestLogBinsEvenInLogSpace(t *testing.T) {
	edges := logBins(1e3, 1e9, 30)
	if len(edges) != 30 {
		t.Fatalf("expected 30 edges, got %d", len(edges))
	}
	if edges[0] != 1e3 {
		t.Errorf("first edge %v not pinned to min", edges[0])
	}
	if edges[len(edges)-1] != 1e9 {
		t.Errorf("last edge %v not pinned to max", edges[len(edges)-1])
	}
	// ratios between consecutive edges must be constant in a log grid
	ratio := edges[1] / edges[0]
	for i := 2; i < len(edges); i++ {
		r := edges[i] / edges[i-1]
		if math.Abs(r-ratio)/ratio > 1e-6 {
			t.Fatalf("edge ratio drifts at %d: %v vs %v", i, r, ratio)
		}
	}
}

func TestBinCountsAccountForEveryValue(t *testing.T) {
	edges := logBins(1, 1000, 7)
	values := []float64{1, 2, 5, 30, 100, 999, 1000}
	counts := binCounts(values, edges)
	if len(counts) != len(edges)-1 {
		t.Fatalf("expected %d bins, got %d", len(edges)-1, len(counts))
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != len(values) {
		t.Fatalf("counts sum to %d, want %d", total, len(values))
	}
	// the max value is inclusive in the last bin
	last := counts[len(counts)-1]
	if last < 2 {
		t.Errorf("expected 999 and 1000 in the last bin, got %d", last)
	}
}

func TestBinCountsClampOutliers(t *testing.T) {
	edges := []float64{10, 100, 1000}
	counts := binCounts([]float64{1, 5000}, edges)
	if counts[0] != 1 {
		t.Errorf("below-range value should clamp to first bin, got %v", counts)
	}
	if counts[1] != 1 {
		t.Errorf("above-range value should clamp to last bin, got %v", counts)
	}
}

func TestBuildEnergyBarsEmptyAndInvalid(t *testing.T) {
	if _, ok := buildEnergyBars(nil, energyBins); ok {
		t.Error("expected no bars for empty input")
	}
	if _, ok := buildEnergyBars([]float64{0, 100}, energyBins); ok {
		t.Error("expected no bars when the minimum energy is not positive")
	}
	if _, ok := buildEnergyBars([]float64{10, 20}, 1); ok {
		t.Error("expected no bars with fewer than 2 edges")
	}
}

func TestBuildEnergyBarsIdenticalValues(t *testing.T) {
	bars, ok := buildEnergyBars([]float64{1e6, 1e6, 1e6}, energyBins)
	if !ok {
		t.Fatalf("identical energies must still produce a histogram")
	}
	if len(bars) != energyBins-1 {
		t.Fatalf("expected %d bars, got %d", energyBins-1, len(bars))
	}
	total := 0.0
	for _, b := range bars {
		total += b.Value
	}
	if total != 3 {
		t.Errorf("bar values sum to %v, want 3", total)
	}
}

func TestBuildEnergyBarsSparseLabels(t *testing.T) {
	energies := make([]float64, 0, 100)
	for i := 0; i < 100; i++ {
		energies = append(energies, math.Pow(10, 3+float64(i)*0.06))
	}
	bars, ok := buildEnergyBars(energies, energyBins)
	if !ok {
		t.Fatalf("expected bars for a spread of energies")
	}
	for i, b := range bars {
		if i%7 == 0 && b.Label == "" {
			t.Errorf("bar %d should carry an edge label", i)
		}
		if i%7 != 0 && b.Label != "" {
			t.Errorf("bar %d should be unlabeled, got %q", i, b.Label)
		}
	}
}

func TestFormatEnergy(t *testing.T) {
	if got := formatEnergy(3.16e7); got != "3e+07" {
		t.Errorf("formatEnergy(3.16e7) = %q, want %q", got, "3e+07")
	}
}

func TestBarWidthNeverTooThin(t *testing.T) {
	if w := barWidth(700, 29); w < 3 {
		t.Errorf("bar width %d below minimum", w)
	}
	if w := barWidth(100, 500); w != 3 {
		t.Errorf("expected clamp to 3, got %d", w)
	}
	if w := barWidth(500, 0); w != 10 {
		t.Errorf("expected fallback width for zero bars, got %d", w)
	}
}

func TestMinMaxSkipsNaN(t *testing.T) {
	lo, hi := minMax([]float64{3.2, math.NaN(), 1.1, 7.7})
	if lo != 1.1 || hi != 7.7 {
		t.Errorf("minMax = (%v, %v), want (1.1, 7.7)", lo, hi)
	}
}

func TestAxisTimeRangeWidensLoneEvent(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	lo, hi := axisTimeRange([]time.Time{at})
	if !lo.Before(at) || !hi.After(at) {
		t.Fatalf("lone event not bracketed: [%v, %v] around %v", lo, hi, at)
	}
	if !hi.After(lo) {
		t.Fatalf("axis span still zero: [%v, %v]", lo, hi)
	}

	// A real span passes through untouched.
	lo2, hi2 := axisTimeRange([]time.Time{at, at.Add(time.Hour)})
	if !lo2.Equal(at) || !hi2.Equal(at.Add(time.Hour)) {
		t.Errorf("multi-event range modified: [%v, %v]", lo2, hi2)
	}
}

func TestTimeRange(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ts := []time.Time{base.Add(time.Hour), base, base.Add(30 * time.Minute)}
	lo, hi := timeRange(ts)
	if !lo.Equal(base) {
		t.Errorf("min = %v, want %v", lo, base)
	}
	if !hi.Equal(base.Add(time.Hour)) {
		t.Errorf("max = %v, want %v", hi, base.Add(time.Hour))
	}
}

func TestNoDataProducesImageOfRequestedSize(t *testing.T) {
	img := noData(400, 200, "Magnitude vs Time (No Data)")
	b := img.Bounds()
	if b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("noData size = %dx%d, want 400x200", b.Dx(), b.Dy())
	}
}

func TestDrawHintPreservesBounds(t *testing.T) {
	base := blank(300, 150)
	out := drawHint(base, "Hint: test")
	if out.Bounds() != base.Bounds() {
		t.Errorf("hint changed image bounds: %v vs %v", out.Bounds(), base.Bounds())
	}
	if got := drawHint(base, "   "); got != base {
		t.Error("blank hint text should return the input image unchanged")
	}
}
