package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakewatch/QuakeWatch/src/types"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func event(id string, mag float64, at int64) types.Event {
	return types.Event{
		ID: id,
		Properties: types.Properties{
			Mag:   ptrF(mag),
			Time:  ptrI(at),
			Place: "somewhere",
		},
		Geometry: types.Geometry{Coordinates: []float64{1, 2, 10}},
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	hist := s.Load()
	require.NotNil(t, hist)
	assert.Empty(t, hist)
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {broken`), 0o644))

	hist := NewStore(path).Load()
	require.NotNil(t, hist)
	assert.Empty(t, hist)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := NewStore(path)

	hist := map[string]types.Event{
		"a": event("a", 5.2, 1700000000000),
		"b": event("b", 3.1, 1700000100000),
	}
	require.NoError(t, s.Save(hist))

	// A fresh store instance sees the identical mapping.
	reloaded := NewStore(path).Load()
	assert.Equal(t, hist, reloaded)
}

func TestMerge_LastWriteWinsWithoutDuplication(t *testing.T) {
	hist := map[string]types.Event{}

	first := Merge(hist, []types.Event{event("a", 5.2, 1700000000000)})
	assert.Equal(t, 1, first)

	// Second cycle reintroduces "a" with a revised magnitude.
	second := Merge(hist, []types.Event{event("a", 5.6, 1700000000000)})
	assert.Equal(t, 1, second)

	require.Len(t, hist, 1)
	require.NotNil(t, hist["a"].Properties.Mag)
	assert.Equal(t, 5.6, *hist["a"].Properties.Mag)
}

func TestMerge_SkipsRecordsWithoutID(t *testing.T) {
	hist := map[string]types.Event{}
	applied := Merge(hist, []types.Event{
		{Properties: types.Properties{Mag: ptrF(2.0)}},
		event("b", 3.0, 1700000200000),
	})
	assert.Equal(t, 1, applied)
	assert.Len(t, hist, 1)
}

func TestMerge_KeepsRecordsInvalidForDisplay(t *testing.T) {
	// A null magnitude is not displayable, but the raw record still lands
	// in history under its id.
	hist := map[string]types.Event{}
	ev := types.Event{ID: "c", Properties: types.Properties{Time: ptrI(1700000300000)}}
	Merge(hist, []types.Event{ev})
	assert.Equal(t, ev, hist["c"])
}

func TestSave_LeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, FileName))
	require.NoError(t, s.Save(map[string]types.Event{"a": event("a", 4.0, 1700000000000)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}
