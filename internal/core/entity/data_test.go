package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData_ScanPreservesNumbers(t *testing.T) {
	var d Data
	require.NoError(t, d.Scan([]byte(`{"tree-count": 12345678901234567, "species": "oak"}`)))

	assert.Equal(t, json.Number("12345678901234567"), d["tree-count"])
	assert.Equal(t, "12345678901234567", d.GetString("tree-count"))
	assert.Equal(t, "oak", d.GetString("species"))
	assert.Equal(t, "", d.GetString("missing"))
}

func TestData_ValueNeverNull(t *testing.T) {
	var d Data
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestData_KeysSorted(t *testing.T) {
	d := Data{"b": "1", "a": "2", "c": "3"}
	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())
}

func TestData_CloneIsIndependent(t *testing.T) {
	d := Data{"a": "1"}
	c := d.Clone()
	c["a"] = "2"
	assert.Equal(t, "1", d["a"])
	assert.Nil(t, Data(nil).Clone())
}

func TestDates_Touch(t *testing.T) {
	created := time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC)
	d := NewDates(created)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d.EntryDate)
	assert.Nil(t, d.StartDate)

	d.Touch(created.AddDate(0, 0, 2))
	require.NotNil(t, d.StartDate)
	assert.Equal(t, 7, d.StartDate.Day())
	assert.False(t, d.IsEnded(created))
}
