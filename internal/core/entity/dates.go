package entity

import "time"

// Dates are the lifecycle columns carried by records, datasets and reference data.
type Dates struct {
	// EntryDate is the day the row was first written.
	EntryDate time.Time `db:"entry_date" json:"entry_date" yaml:"entry-date"`

	// StartDate is refreshed every time the row is rewritten.
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty" yaml:"start-date"`

	// EndDate retires the row without deleting it.
	EndDate *time.Time `db:"end_date" json:"end_date,omitempty" yaml:"end-date"`
}

// NewDates stamps the entry date with the calendar day of now.
func NewDates(now time.Time) Dates {
	return Dates{EntryDate: day(now)}
}

// Touch records a rewrite on the calendar day of now.
func (d *Dates) Touch(now time.Time) {
	t := day(now)
	d.StartDate = &t
}

// IsEnded reports whether the row has been retired on or before now.
func (d Dates) IsEnded(now time.Time) bool {
	return d.EndDate != nil && !d.EndDate.After(now)
}

func day(t time.Time) time.Time {
	y, m, dd := t.UTC().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
