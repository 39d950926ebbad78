package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"name": "Oak", "notes": "old", "tree-species": "oak"}
	newState := map[string]any{"name": "Oak", "notes": "new", "felled-date": "2020"}

	got := Diff(oldState, newState)

	assert.Equal(t, map[string]Change{
		"notes":        {Old: "old", New: "new"},
		"felled-date":  {Old: nil, New: "2020"},
		"tree-species": {Old: "oak", New: nil},
	}, got)
}

func TestDiff_SliceValues(t *testing.T) {
	got := Diff(
		map[string]any{"organisations": []string{"a", "b"}},
		map[string]any{"organisations": []string{"a", "b"}},
	)
	assert.Empty(t, got)
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry(ActionCreate, "tree", 1000, map[string]Change{"name": {New: "Oak"}})
	require.NoError(t, err)

	assert.Equal(t, ActionCreate, e.Action)
	assert.False(t, e.ID.String() == "")

	var decoded map[string]Change
	require.NoError(t, json.Unmarshal(e.Changes, &decoded))
	assert.Equal(t, "Oak", decoded["name"].New)
}
