// Package quake derives display rows and plotting series from raw feed
// events. Everything here is pure: the dashboard controller decides
// what to parse and how to order the result.
package quake

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quakewatch/QuakeWatch/src/types"
)

const (
	// MaxTableRows caps the table at the most recent events.
	MaxTableRows = 50

	maxPlaceRunes = 40
	unknownPlace  = "Unknown location"
)

// Row is one table entry. Time keeps the full timestamp for sorting;
// the remaining fields are pre-formatted for display.
type Row struct {
	Time  time.Time
	Clock string
	Mag   string
	Depth string
	Place string
}

// Series holds the three parallel chart inputs rebuilt on each refresh.
type Series struct {
	Times    []time.Time
	Mags     []float64
	Energies []float64
}

// Energy returns the relative energy index 10^(1.5*mag). It orders
// events by released energy on a log scale; it is not physical joules.
func Energy(mag float64) float64 {
	return math.Pow(10, 1.5*mag)
}

// Parse converts raw events into rows and series, skipping any event
// without a magnitude, without a timestamp, or with fewer than three
// coordinates. Output order matches input order.
func Parse(events []types.Event) ([]Row, Series) {
	rows := make([]Row, 0, len(events))
	var series Series

	for _, ev := range events {
		mag, ok := ev.Mag()
		if !ok {
			continue
		}
		depth, ok := ev.Depth()
		if !ok {
			continue
		}
		if ev.Properties.Time == nil {
			continue
		}
		at := time.UnixMilli(*ev.Properties.Time).UTC()

		place := ev.Properties.Place
		if place == "" {
			place = unknownPlace
		}

		rows = append(rows, Row{
			Time:  at,
			Clock: at.Format("15:04:05"),
			Mag:   fmt.Sprintf("%.1f", mag),
			Depth: fmt.Sprintf("%.1f", depth),
			Place: truncate(place, maxPlaceRunes),
		})
		series.Times = append(series.Times, at)
		series.Mags = append(series.Mags, mag)
		series.Energies = append(series.Energies, Energy(mag))
	}
	return rows, series
}

// SortRows orders rows by event time, most recent first.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.After(rows[j].Time)
	})
}

// CapRows truncates rows to at most n entries.
func CapRows(rows []Row, n int) []Row {
	if n >= 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// AtOrAbove filters events for display by minimum magnitude. Zero or
// negative thresholds pass everything through; the stored history is
// never filtered.
func AtOrAbove(events []types.Event, min float64) []types.Event {
	if min <= 0 {
		return events
	}
	out := make([]types.Event, 0, len(events))
	for _, ev := range events {
		if mag, ok := ev.Mag(); ok && mag >= min {
			out = append(out, ev)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
