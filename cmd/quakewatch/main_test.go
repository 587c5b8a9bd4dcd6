package main

import (
	"testing"

	"github.com/quakewatch/QuakeWatch/src/feed"
	"github.com/quakewatch/QuakeWatch/src/quake"
)

func TestCellTextHeaderRow(t *testing.T) {
	want := []string{"Time", "Mag", "Depth", "Place"}
	for col, w := range want {
		if got := cellText(nil, 0, col); got != w {
			t.Errorf("header col %d = %q, want %q", col, got, w)
		}
	}
	if got := cellText(nil, 0, 4); got != "" {
		t.Errorf("out-of-range header col = %q, want empty", got)
	}
}

func TestCellTextDataRows(t *testing.T) {
	rows := []quake.Row{
		{Clock: "12:34:56", Mag: "5.2", Depth: "10.0", Place: "36 km W of somewhere"},
	}
	cases := []struct {
		col  int
		want string
	}{
		{0, "12:34:56"},
		{1, "5.2"},
		{2, "10.0"},
		{3, "36 km W of somewhere"},
	}
	for _, c := range cases {
		if got := cellText(rows, 1, c.col); got != c.want {
			t.Errorf("col %d = %q, want %q", c.col, got, c.want)
		}
	}
	if got := cellText(rows, 2, 0); got != "" {
		t.Errorf("row past data = %q, want empty", got)
	}
	if got := cellText(rows, 1, 9); got != "" {
		t.Errorf("col past data = %q, want empty", got)
	}
}

func TestFeedLabelRoundtrip(t *testing.T) {
	for _, w := range feed.Windows() {
		label := labelForSlug(w.Slug)
		if label != w.Label {
			t.Errorf("labelForSlug(%q) = %q, want %q", w.Slug, label, w.Label)
		}
		if got := slugForLabel(label); got != w.Slug {
			t.Errorf("slugForLabel(%q) = %q, want %q", label, got, w.Slug)
		}
	}
	if got := labelForSlug("no_such_window"); got != feed.DefaultWindow.Label {
		t.Errorf("unknown slug should fall back to default label, got %q", got)
	}
	if got := slugForLabel("No Such Label"); got != "" {
		t.Errorf("unknown label should map to empty slug, got %q", got)
	}
}

func TestParseMinMag(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"All", 0},
		{"M2.5+", 2.5},
		{"M4.5+", 4.5},
		{"M6.0+", 6.0},
		{"garbage", 0},
		{"M-1.0+", 0},
	}
	for _, c := range cases {
		if got := parseMinMag(c.label); got != c.want {
			t.Errorf("parseMinMag(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestLabelForMinMagRoundtrip(t *testing.T) {
	for _, label := range magFilterLabels() {
		if got := labelForMinMag(parseMinMag(label)); got != label {
			t.Errorf("labelForMinMag(parseMinMag(%q)) = %q", label, got)
		}
	}
	if got := labelForMinMag(3.3); got != "All" {
		t.Errorf("unlisted threshold should fall back to All, got %q", got)
	}
}
