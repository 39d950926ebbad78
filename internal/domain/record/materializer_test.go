package record

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasets/internal/core/allocator"
	"datasets/internal/core/datepart"
	"datasets/internal/domain/reference"
	"datasets/internal/domain/schema"
)

func fixedMaterializer(refs reference.Repository) *Materializer {
	m := NewMaterializer(refs)
	m.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return m
}

func TestMaterializer_Create(t *testing.T) {
	m := fixedMaterializer(testRefs())

	r, err := m.Create(context.Background(),
		allocator.Allocation{Entity: 100, Reference: "tpo-100"},
		tpoDataset(),
		schema.Submission{
			Name:         "Oak Lane TPO",
			Notes:        "Served 2024",
			Organisation: "local-authority:BUC",
			Data: map[string]any{
				"conservation-area": "CA-1",
				"made-date":         datepart.Parts{Year: "2024", Month: "3", Day: "7"},
			},
		})
	require.NoError(t, err)

	assert.Equal(t, Key{Entity: 100, Dataset: "tree-preservation-order"}, r.Key())
	assert.Equal(t, "tpo-100", r.Reference)
	assert.Equal(t, "Oak Lane TPO", r.Name)
	require.NotNil(t, r.Notes)
	assert.Equal(t, "Served 2024", *r.Notes)
	assert.Nil(t, r.Description)
	require.NotNil(t, r.Organisation)
	assert.Equal(t, "local-authority:BUC", *r.Organisation)
	assert.Equal(t, "2024-03-07", r.Data["made-date"])
	assert.Equal(t, "CA-1", r.Data["conservation-area"])
	assert.Equal(t, "2026-03-14", r.EntryDate.Format(dateLayout))
}

func TestMaterializer_UnknownOrganisationLeftUnset(t *testing.T) {
	m := fixedMaterializer(testRefs())

	r, err := m.Create(context.Background(),
		allocator.Allocation{Entity: 1000, Reference: "t-1000"},
		treeDataset(),
		schema.Submission{
			Name:          "Tree",
			Organisation:  "local-authority:NOPE",
			Organisations: []string{"local-authority:OXF", "local-authority:NOPE"},
		})
	require.NoError(t, err)

	assert.Nil(t, r.Organisation)
	assert.Equal(t, []string{"local-authority:OXF"}, r.Organisations)
}

func TestMaterializer_LookupFailure(t *testing.T) {
	refs := &reference.MockRepository{
		OrganisationFunc: func(context.Context, string) (reference.Organisation, error) {
			return reference.Organisation{}, errors.New("connection reset")
		},
	}
	m := fixedMaterializer(refs)

	_, err := m.Create(context.Background(), allocator.Allocation{Entity: 1}, treeDataset(),
		schema.Submission{Name: "Tree", Organisation: "local-authority:BUC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMaterializer_UpdateIsIdempotent(t *testing.T) {
	m := fixedMaterializer(testRefs())
	ctx := context.Background()

	existing, err := m.Create(ctx, allocator.Allocation{Entity: 100, Reference: "tpo-100"}, tpoDataset(),
		schema.Submission{Name: "Before", Data: map[string]any{"documentation-url": "https://old.example"}})
	require.NoError(t, err)

	sub := schema.Submission{
		Name:         "After",
		Organisation: "local-authority:BUC",
		Data: map[string]any{
			"conservation-area": "CA-1",
			"made-date":         datepart.Parts{Year: "2024", Month: "11"},
		},
	}

	first, err := m.Update(ctx, existing, sub)
	require.NoError(t, err)
	second, err := m.Update(ctx, first, sub)
	require.NoError(t, err)

	firstBag, err := json.Marshal(first.Data)
	require.NoError(t, err)
	secondBag, err := json.Marshal(second.Data)
	require.NoError(t, err)
	assert.Equal(t, string(firstBag), string(secondBag))
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Organisation, second.Organisation)

	// The bag is replaced, and the original record is untouched.
	assert.NotContains(t, first.Data, "documentation-url")
	assert.Equal(t, "2024-11", first.Data["made-date"])
	assert.Equal(t, "Before", existing.Name)
	assert.Equal(t, "https://old.example", existing.Data["documentation-url"])
}

func TestComposeData(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "parts",
			in:   map[string]any{"felled-date": datepart.Parts{Year: "2021", Month: "2", Day: "9"}},
			want: map[string]any{"felled-date": "2021-02-09"},
		},
		{
			name: "whole date string is normalised",
			in:   map[string]any{"made-date": "2021-2"},
			want: map[string]any{"made-date": "2021-02"},
		},
		{
			name: "nothing composes",
			in:   map[string]any{"end-date": datepart.Parts{}},
			want: map[string]any{},
		},
		{
			name: "other keys pass through",
			in:   map[string]any{"conservation-area": "CA-1"},
			want: map[string]any{"conservation-area": "CA-1"},
		},
		{
			name: "hyphenated text under a key mentioning date",
			in:   map[string]any{"validated-by": "Jane Smith-Jones", "candidate": "Site-A"},
			want: map[string]any{"validated-by": "Jane Smith-Jones", "candidate": "Site-A"},
		},
		{
			name: "unreadable date string kept as entered",
			in:   map[string]any{"update-note": "2020-13"},
			want: map[string]any{"update-note": "2020-13"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, map[string]any(ComposeData(tt.in)))
		})
	}
}
