package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	png "image/png"
	"strconv"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/quakewatch/QuakeWatch/src/dashboard"
	"github.com/quakewatch/QuakeWatch/src/feed"
	"github.com/quakewatch/QuakeWatch/src/history"
	"github.com/quakewatch/QuakeWatch/src/logx"
	"github.com/quakewatch/QuakeWatch/src/quake"
)

const (
	windowWidth  = 1000
	windowHeight = 600
)

type uiState struct {
	app    fyne.App
	window fyne.Window
	ctrl   *dashboard.Controller

	// latest snapshot, written only on the UI thread
	rows   []quake.Row
	series quake.Series
	total  int

	// toggles and modes
	feedSlug     string
	minMag       float64
	showHints    bool
	autoRefresh  bool
	refreshEvery time.Duration
	autoCancel   context.CancelFunc

	// widgets
	table           *widget.Table
	statusLabel     *widget.Label
	magImgCanvas    *canvas.Image
	energyImgCanvas *canvas.Image
}

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func main() {
	var feedFlag string
	var historyFlag string
	var logLevel string
	var refreshEvery time.Duration
	flag.StringVar(&feedFlag, "feed", "", "Override feed URL (default: USGS summary for the selected window)")
	flag.StringVar(&historyFlag, "history", "", "Path to the history file (default: per-user app data dir)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.DurationVar(&refreshEvery, "refresh", 5*time.Minute, "Auto-refresh interval when the Auto toggle is on")
	flag.Parse()

	logx.SetLevel(logLevel)

	a := app.NewWithID("com.quakewatch.app")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("Live Earthquake Dashboard")
	w.Resize(fyne.NewSize(windowWidth, windowHeight))

	state := &uiState{
		app:          a,
		window:       w,
		feedSlug:     feed.DefaultWindow.Slug,
		refreshEvery: refreshEvery,
	}
	loadPrefs(state)

	histPath := historyFlag
	if histPath == "" {
		histPath = history.DefaultPath()
	}
	store := history.NewStore(histPath)

	feedURL := feedFlag
	if feedURL == "" {
		feedURL = feed.URL(state.feedSlug)
	}
	client := feed.NewClient(feedURL, feed.DefaultTimeout)
	logx.Infof("polling %s", client.URL())
	state.ctrl = dashboard.NewController(client, store, fyne.Do)
	state.ctrl.SetMinMagnitude(state.minMag)

	// top bar controls
	refreshBtn := widget.NewButton("Refresh Data", func() { triggerRefresh(state) })
	feedSelect := widget.NewSelect(feedLabels(), nil)
	feedSelect.Selected = labelForSlug(state.feedSlug)
	magSelect := widget.NewSelect(magFilterLabels(), nil)
	magSelect.Selected = labelForMinMag(state.minMag)
	autoChk := widget.NewCheck("Auto", nil)
	autoChk.SetChecked(state.autoRefresh)
	hintsChk := widget.NewCheck("Hints", nil)
	hintsChk.SetChecked(state.showHints)
	state.statusLabel = widget.NewLabel("Loading…")

	// event table
	state.table = widget.NewTable(
		func() (int, int) { return len(state.rows) + 1, 4 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(cellText(state.rows, id.Row, id.Col))
		},
	)
	state.table.SetColumnWidth(0, 90)
	state.table.SetColumnWidth(1, 60)
	state.table.SetColumnWidth(2, 70)
	state.table.SetColumnWidth(3, 330)

	// chart placeholders
	state.magImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.magImgCanvas.FillMode = canvas.ImageFillContain
	state.magImgCanvas.SetMinSize(fyne.NewSize(520, 260))
	state.energyImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.energyImgCanvas.FillMode = canvas.ImageFillContain
	state.energyImgCanvas.SetMinSize(fyne.NewSize(520, 260))

	// results arrive on the UI thread via the controller's fyne.Do hook
	state.ctrl.SetSinks(
		func(snap dashboard.Snapshot) { applySnapshot(state, snap) },
		func(error) { state.statusLabel.SetText("Failed to fetch data") },
	)

	// layout
	top := container.NewHBox(
		refreshBtn,
		widget.NewLabel("Feed:"), feedSelect,
		widget.NewLabel("Min Mag:"), magSelect,
		autoChk, hintsChk,
		widget.NewLabel("  "),
		state.statusLabel,
	)
	chartsColumn := container.NewVBox(
		state.magImgCanvas,
		widget.NewSeparator(),
		state.energyImgCanvas,
	)
	chartsScroll := container.NewVScroll(chartsColumn)
	chartsScroll.SetMinSize(fyne.NewSize(540, 520))
	split := container.NewHSplit(state.table, chartsScroll)
	split.SetOffset(0.42)
	w.SetContent(container.NewBorder(top, nil, nil, nil, split))

	// callbacks wired after canvases exist
	feedSelect.OnChanged = func(label string) {
		slug := slugForLabel(label)
		if slug == "" || slug == state.feedSlug {
			return
		}
		state.feedSlug = slug
		savePrefs(state)
		state.ctrl.SetFetcher(feed.NewClient(feed.URL(slug), feed.DefaultTimeout))
		triggerRefresh(state)
	}
	magSelect.OnChanged = func(label string) {
		state.minMag = parseMinMag(label)
		savePrefs(state)
		state.ctrl.SetMinMagnitude(state.minMag)
		state.ctrl.Rebuild()
	}
	autoChk.OnChanged = func(on bool) {
		state.autoRefresh = on
		savePrefs(state)
		if on {
			startAutoRefresh(state)
		} else {
			stopAutoRefresh(state)
		}
	}
	hintsChk.OnChanged = func(on bool) {
		state.showHints = on
		savePrefs(state)
		redrawCharts(state)
	}

	buildMenus(state)
	watchResize(state)
	if state.autoRefresh {
		startAutoRefresh(state)
	}

	// one refresh at startup, like every later manual trigger
	triggerRefresh(state)

	w.ShowAndRun()
}

func triggerRefresh(state *uiState) {
	if state.ctrl.Refresh(context.Background()) {
		state.statusLabel.SetText("Loading…")
	}
}

func applySnapshot(state *uiState, snap dashboard.Snapshot) {
	state.rows = snap.Rows
	state.series = snap.Series
	state.total = snap.Total
	state.table.Refresh()
	redrawCharts(state)
	state.statusLabel.SetText(fmt.Sprintf("Last updated: %s UTC (%d events)",
		snap.At.Format("15:04:05"), snap.Total))
}

func startAutoRefresh(state *uiState) {
	stopAutoRefresh(state)
	ctx, cancel := context.WithCancel(context.Background())
	state.autoCancel = cancel
	go state.ctrl.Run(ctx, state.refreshEvery)
	logx.Infof("auto-refresh every %s", state.refreshEvery)
}

func stopAutoRefresh(state *uiState) {
	if state.autoCancel != nil {
		state.autoCancel()
		state.autoCancel = nil
	}
}

// watchResize redraws charts when the window width changes so they keep
// using the available space. The ticker stops when the window closes.
func watchResize(state *uiState) {
	c := state.window.Canvas()
	if c == nil {
		return
	}
	prevW := int(c.Size().Width)
	done := make(chan struct{})
	state.window.SetOnClosed(func() {
		savePrefs(state)
		stopAutoRefresh(state)
		close(done)
	})
	go func() {
		t := time.NewTicker(300 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				cv := state.window.Canvas()
				if cv == nil {
					continue
				}
				curW := int(cv.Size().Width)
				if curW != prevW {
					prevW = curW
					fyne.Do(func() { redrawCharts(state) })
				}
			}
		}
	}()
}

// menus and shortcuts
func buildMenus(state *uiState) {
	if state == nil || state.window == nil {
		return
	}
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Refresh", func() { triggerRefresh(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Magnitude Chart…", func() {
			exportChartPNG(state, state.magImgCanvas, "magnitude_chart.png")
		}),
		fyne.NewMenuItem("Export Energy Chart…", func() {
			exportChartPNG(state, state.energyImgCanvas, "energy_chart.png")
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { triggerRefresh(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { triggerRefresh(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

// export PNG
func exportChartPNG(state *uiState, img *canvas.Image, defaultName string) {
	if state == nil || state.window == nil || img == nil || img.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		_ = png.Encode(wc, img.Image)
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// cellText maps a table cell to its text. Row 0 is the header.
func cellText(rows []quake.Row, row, col int) string {
	if row == 0 {
		switch col {
		case 0:
			return "Time"
		case 1:
			return "Mag"
		case 2:
			return "Depth"
		case 3:
			return "Place"
		}
		return ""
	}
	rix := row - 1
	if rix < 0 || rix >= len(rows) {
		return ""
	}
	r := rows[rix]
	switch col {
	case 0:
		return r.Clock
	case 1:
		return r.Mag
	case 2:
		return r.Depth
	case 3:
		return r.Place
	}
	return ""
}

// feed window select helpers
func feedLabels() []string {
	ws := feed.Windows()
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Label
	}
	return out
}

func labelForSlug(slug string) string {
	for _, w := range feed.Windows() {
		if w.Slug == slug {
			return w.Label
		}
	}
	return feed.DefaultWindow.Label
}

func slugForLabel(label string) string {
	for _, w := range feed.Windows() {
		if w.Label == label {
			return w.Slug
		}
	}
	return ""
}

// magnitude filter select helpers
func magFilterLabels() []string {
	return []string{"All", "M2.5+", "M4.5+", "M6.0+"}
}

// parseMinMag turns a filter label like "M4.5+" into a threshold.
// "All" and anything unparseable mean no filter.
func parseMinMag(label string) float64 {
	s := strings.TrimSuffix(strings.TrimPrefix(label, "M"), "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func labelForMinMag(min float64) string {
	for _, l := range magFilterLabels() {
		if parseMinMag(l) == min {
			return l
		}
	}
	return "All"
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("feedWindow", state.feedSlug)
	prefs.SetFloat("minMagnitude", state.minMag)
	prefs.SetBool("autoRefresh", state.autoRefresh)
	prefs.SetBool("showHints", state.showHints)
}

func loadPrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	slug := prefs.StringWithFallback("feedWindow", state.feedSlug)
	for _, w := range feed.Windows() {
		if w.Slug == slug {
			state.feedSlug = slug
		}
	}
	state.minMag = prefs.FloatWithFallback("minMagnitude", state.minMag)
	state.autoRefresh = prefs.BoolWithFallback("autoRefresh", state.autoRefresh)
	state.showHints = prefs.BoolWithFallback("showHints", state.showHints)
}
