// Package types holds the wire shapes shared between the feed client,
// the history store and the parser.
package types

// Event mirrors one feature of a USGS GeoJSON summary feed. Magnitude
// and time are pointers because the feed ships null for events that
// have not been reviewed yet; the parser skips those for display while
// the history store keeps them verbatim.
type Event struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Properties carries the per-event attributes used by the dashboard.
type Properties struct {
	Mag   *float64 `json:"mag"`
	Time  *int64   `json:"time"` // epoch milliseconds
	Place string   `json:"place,omitempty"`
}

// Geometry holds the event position as longitude, latitude, depth (km).
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

// FeedPayload is the top-level feed body.
type FeedPayload struct {
	Features []Event `json:"features"`
}

// Mag returns the magnitude and whether one is present.
func (e Event) Mag() (float64, bool) {
	if e.Properties.Mag == nil {
		return 0, false
	}
	return *e.Properties.Mag, true
}

// Depth returns the depth in km and whether coordinates carry one.
func (e Event) Depth() (float64, bool) {
	if len(e.Geometry.Coordinates) < 3 {
		return 0, false
	}
	return e.Geometry.Coordinates[2], true
}
