package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"math"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/quakewatch/QuakeWatch/src/logx"
)

// energyBins is the number of log-spaced bin edges for the histogram.
const energyBins = 30

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

func redrawCharts(state *uiState) {
	cw, chh := chartSize(state)
	if img := renderMagnitudeChart(state); img != nil {
		state.magImgCanvas.Image = img
		state.magImgCanvas.SetMinSize(fyne.NewSize(float32(cw), float32(chh)))
		state.magImgCanvas.Refresh()
	}
	if img := renderEnergyChart(state); img != nil {
		state.energyImgCanvas.Image = img
		state.energyImgCanvas.SetMinSize(fyne.NewSize(float32(cw), float32(chh)))
		state.energyImgCanvas.Refresh()
	}
}

// chartSize computes a chart size from the window width; the charts
// live in the right split pane.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return 560, 300
	}
	sz := state.window.Canvas().Size()
	w := int(sz.Width*0.55) - 12
	if w < 480 {
		w = 480
	}
	h := int(float32(w) * 0.55)
	if h < 240 {
		h = 240
	}
	if h > 420 {
		h = 420
	}
	return w, h
}

func padBottom(state *uiState) int {
	if state != nil && state.showHints {
		return 46
	}
	return 28
}

func renderMagnitudeChart(state *uiState) image.Image {
	cw, chh := chartSize(state)
	times := state.series.Times
	mags := state.series.Mags
	if len(times) == 0 {
		return noData(cw, chh, "Magnitude vs Time (No Data)")
	}

	minT, maxT := axisTimeRange(times)
	step, labFmt := pickTimeStep(maxT.Sub(minT))
	ticks := makeNiceTimeTicks(minT, maxT, step, labFmt)
	minX := float64(chart.TimeToFloat64(minT))
	maxX := float64(chart.TimeToFloat64(maxT))

	minY, maxY := minMax(mags)
	nMin, nMax := niceAxisBounds(minY, maxY)

	ch := chart.Chart{
		Title:      "Magnitude vs Time (UTC)",
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: padBottom(state)}},
		XAxis:      chart.XAxis{Name: "Time", Ticks: ticks, Range: &chart.ContinuousRange{Min: minX, Max: maxX}},
		YAxis:      chart.YAxis{Name: "Magnitude", Range: &chart.ContinuousRange{Min: nMin, Max: nMax}, Ticks: niceTicks(nMin, nMax, 6)},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Magnitude", XValues: times, YValues: mags, Style: pointStyle(chart.ColorBlue)},
		},
	}
	ch.Width = cw
	ch.Height = chh

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		logx.Warnf("magnitude chart render error: %v", err)
		return blank(cw, chh)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logx.Warnf("magnitude chart decode error: %v", err)
		return blank(cw, chh)
	}
	if state.showHints {
		return drawHint(img, "Hint: each dot is one recorded quake; clusters hint at aftershock sequences.")
	}
	return img
}

func renderEnergyChart(state *uiState) image.Image {
	cw, chh := chartSize(state)
	bars, ok := buildEnergyBars(state.series.Energies, energyBins)
	if !ok {
		return noData(cw, chh, "Energy Distribution (No Data)")
	}

	maxCount := 0.0
	for _, b := range bars {
		if b.Value > maxCount {
			maxCount = b.Value
		}
	}
	_, nMax := niceAxisBounds(0, maxCount)

	bc := chart.BarChart{
		Title:      "Energy Distribution (Log Scale)",
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: padBottom(state)}},
		Width:      cw,
		Height:     chh,
		BarWidth:   barWidth(cw, len(bars)),
		BarSpacing: 2,
		XAxis:      chart.Style{},
		YAxis:      chart.YAxis{Name: "Count", Range: &chart.ContinuousRange{Min: 0, Max: nMax}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		logx.Warnf("energy chart render error: %v", err)
		return blank(cw, chh)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logx.Warnf("energy chart decode error: %v", err)
		return blank(cw, chh)
	}
	if state.showHints {
		return drawHint(img, "Hint: energy index is 10^(1.5·mag); one magnitude step is ~32× the energy.")
	}
	return img
}

// buildEnergyBars bins energies into log-spaced buckets between the
// observed min and max. Returns false when there is nothing to plot or
// the minimum energy is not strictly positive (defensive: the energy
// formula cannot produce that, but the chart must not divide by it).
func buildEnergyBars(energies []float64, nEdges int) ([]chart.Value, bool) {
	if len(energies) == 0 || nEdges < 2 {
		return nil, false
	}
	emin, emax := minMax(energies)
	if !(emin > 0) {
		return nil, false
	}
	if emax <= emin {
		// all values identical: widen one decade so binning stays defined
		emax = emin * 10
	}
	edges := logBins(emin, emax, nEdges)
	counts := binCounts(energies, edges)

	bars := make([]chart.Value, len(counts))
	for i := range counts {
		v := chart.Value{Value: float64(counts[i])}
		if i%7 == 0 {
			v.Label = formatEnergy(edges[i])
		}
		bars[i] = v
	}
	return bars, true
}

// logBins returns n edges spaced evenly in log10 between min and max
// inclusive.
func logBins(min, max float64, n int) []float64 {
	lo := math.Log10(min)
	hi := math.Log10(max)
	edges := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range edges {
		edges[i] = math.Pow(10, lo+float64(i)*step)
	}
	// pin the ends so rounding cannot exclude the extremes
	edges[0] = min
	edges[n-1] = max
	return edges
}

// binCounts assigns each value to the bin whose edges bracket it; the
// last bin is inclusive on the right. Values outside the edges clamp to
// the nearest bin.
func binCounts(values, edges []float64) []int {
	counts := make([]int, len(edges)-1)
	for _, v := range values {
		idx := len(counts) - 1
		for i := 0; i < len(counts); i++ {
			if v < edges[i+1] {
				idx = i
				break
			}
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return counts
}

func formatEnergy(v float64) string {
	return fmt.Sprintf("%.0e", v)
}

func barWidth(chartWidth, bars int) int {
	if bars <= 0 {
		return 10
	}
	w := (chartWidth - 60) / bars
	if w < 3 {
		w = 3
	}
	return w
}

func minMax(vs []float64) (float64, float64) {
	min := math.MaxFloat64
	max := -math.MaxFloat64
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// axisTimeRange widens a zero-span range so a lone event still gets a
// usable X axis. Only the axis is padded; the series plots unchanged.
func axisTimeRange(ts []time.Time) (time.Time, time.Time) {
	minT, maxT := timeRange(ts)
	if !maxT.After(minT) {
		minT = minT.Add(-30 * time.Second)
		maxT = maxT.Add(30 * time.Second)
	}
	return minT, maxT
}

func timeRange(ts []time.Time) (time.Time, time.Time) {
	minT := ts[0]
	maxT := ts[0]
	for _, t := range ts[1:] {
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
	}
	return minT, maxT
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}
	return img
}

// noData renders a blank chart area with a centered label.
func noData(w, h int, text string) image.Image {
	base := blank(w, h).(*image.RGBA)
	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  base,
		Src:  image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255}),
		Face: face,
	}
	tw := dr.MeasureString(text).Ceil()
	x := (w - tw) / 2
	if x < 0 {
		x = 0
	}
	y := h / 2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return base
}

// drawHint draws a small hint string onto the provided image near the bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
