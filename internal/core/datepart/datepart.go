// Package datepart converts between partial calendar dates entered as
// separate year, month and day inputs and their canonical string form
// (YYYY, YYYY-MM or YYYY-MM-DD).
package datepart

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Part names used to tag validation errors.
const (
	PartYear  = "year"
	PartMonth = "month"
	PartDay   = "day"
)

// Parts is a partial date as entered. Empty strings mean "not supplied".
type Parts struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// Trim returns a copy with surrounding whitespace removed from every part.
func (p Parts) Trim() Parts {
	return Parts{
		Year:  strings.TrimSpace(p.Year),
		Month: strings.TrimSpace(p.Month),
		Day:   strings.TrimSpace(p.Day),
	}
}

// IsEmpty reports whether no part was supplied.
func (p Parts) IsEmpty() bool {
	t := p.Trim()
	return t.Year == "" && t.Month == "" && t.Day == ""
}

// Compose returns the canonical date string for p.
// Month and day are zero-padded to two digits. The boolean is false when
// there is nothing to store (no year).
func Compose(p Parts) (string, bool) {
	p = p.Trim()
	switch {
	case p.Year != "" && p.Month != "" && p.Day != "":
		return p.Year + "-" + pad2(p.Month) + "-" + pad2(p.Day), true
	case p.Year != "" && p.Month != "":
		return p.Year + "-" + pad2(p.Month), true
	case p.Year != "":
		return p.Year, true
	}
	return "", false
}

// Parse splits a whole date string (YYYY, YYYY-MM or YYYY-MM-DD) into
// parts. A segment that is not made of digits is reported against its
// part. Ranges are left to Validate.
func Parse(s string) (Parts, *PartError) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Parts{}, nil
	}

	segments := strings.Split(s, "-")
	if len(segments) > 3 {
		return Parts{}, &PartError{Part: PartDay, Message: "Date must be in YYYY, YYYY-MM or YYYY-MM-DD format"}
	}

	var p Parts
	p.Year = segments[0]
	if !isDigits(p.Year) {
		return Parts{}, &PartError{Part: PartYear, Message: "Year must be in YYYY format"}
	}
	if len(segments) > 1 {
		p.Month = segments[1]
		if !isDigits(p.Month) {
			return Parts{}, &PartError{Part: PartMonth, Message: "Month must be a number"}
		}
	}
	if len(segments) > 2 {
		p.Day = segments[2]
		if !isDigits(p.Day) {
			return Parts{}, &PartError{Part: PartDay, Message: "Day must be a number"}
		}
	}
	return p, nil
}

// Decompose splits a stored date string back into edit-time parts.
// Month and day lose their leading zeros. A value that cannot be read
// yields empty parts.
func Decompose(s string) Parts {
	p, err := Parse(s)
	if err != nil {
		return Parts{}
	}
	if p.Month != "" {
		p.Month = trimZeros(p.Month)
	}
	if p.Day != "" {
		p.Day = trimZeros(p.Day)
	}
	return p
}

// PartError is a validation failure tied to one part of the date.
type PartError struct {
	Part    string
	Message string
}

func (e *PartError) Error() string {
	return e.Part + ": " + e.Message
}

// Validate applies progressive validation: nothing supplied is valid, and
// otherwise the year is mandatory, the month requires a year and the day
// requires a month. The first failing rule is returned.
func Validate(p Parts) *PartError {
	p = p.Trim()
	if p.Year == "" && p.Month == "" && p.Day == "" {
		return nil
	}

	if p.Day != "" && p.Month == "" {
		return &PartError{Part: PartMonth, Message: "Cannot provide day without month"}
	}
	if p.Year == "" {
		return &PartError{Part: PartYear, Message: "Year is required"}
	}
	if len(p.Year) != 4 || !isDigits(p.Year) {
		return &PartError{Part: PartYear, Message: "Year must be in YYYY format"}
	}

	var month int
	if p.Month != "" {
		if !isDigits(p.Month) {
			return &PartError{Part: PartMonth, Message: "Month must be a number"}
		}
		m, _ := strconv.Atoi(p.Month)
		if len(p.Month) > 2 || m < 1 || m > 12 {
			return &PartError{Part: PartMonth, Message: "Month must be between 1 and 12"}
		}
		month = m
	}

	if p.Day != "" {
		if !isDigits(p.Day) {
			return &PartError{Part: PartDay, Message: "Day must be a number"}
		}
		d, _ := strconv.Atoi(p.Day)
		if len(p.Day) > 2 || d < 1 || d > 31 {
			return &PartError{Part: PartDay, Message: "Day must be between 1 and 31"}
		}
		year, _ := strconv.Atoi(p.Year)
		if !isCalendarDate(year, month, d) {
			return &PartError{Part: PartDay, Message: fmt.Sprintf("Invalid day for %s/%s", p.Month, p.Year)}
		}
	}

	return nil
}

func isCalendarDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// pad2 renders a numeric part as two digits. Anything else is kept so a
// caller that skipped Validate still sees what was entered.
func pad2(s string) string {
	if !isDigits(s) {
		return s
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}

func trimZeros(s string) string {
	if t := strings.TrimLeft(s, "0"); t != "" {
		return t
	}
	return "0"
}
