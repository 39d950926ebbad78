package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"datasets/internal/core/apperror"
	"datasets/internal/domain/audit"
	"datasets/internal/domain/record"
	"datasets/internal/domain/schema"
	"datasets/internal/metadata"
)

// SubmissionRequest is a flat JSON object of form values. Date parts are
// sent as <field>_year, <field>_month and <field>_day.
type SubmissionRequest map[string]any

// Input converts the request to schema input. Numbers and booleans are
// accepted and formatted; null means unset; nested values are rejected.
func (r SubmissionRequest) Input() (schema.Input, error) {
	in := make(schema.Input, len(r))
	var errs apperror.FieldErrors
	for key, raw := range r {
		switch v := raw.(type) {
		case nil:
			in[key] = ""
		case string:
			in[key] = v
		case json.Number:
			in[key] = v.String()
		case float64:
			in[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			in[key] = strconv.FormatBool(v)
		default:
			errs = append(errs, apperror.FieldError{
				Field:   key,
				Kind:    apperror.KindField,
				Message: fmt.Sprintf("Must be a string, got %T", raw),
			})
		}
	}
	if len(errs) > 0 {
		return nil, apperror.NewFieldErrors(errs)
	}
	return in, nil
}

// DatasetResponse describes a dataset and its listing columns.
type DatasetResponse struct {
	metadata.Dataset
	DisplayName string   `json:"display_name"`
	Columns     []string `json:"columns"`
}

// FromDataset maps a dataset to its response.
func FromDataset(ds metadata.Dataset) DatasetResponse {
	return DatasetResponse{
		Dataset:     ds,
		DisplayName: ds.DisplayName(),
		Columns:     record.Columns(ds),
	}
}

// RecordResponse is a stored record.
type RecordResponse struct {
	*record.Record
	Parent *record.Key `json:"parent,omitempty"`
}

// FromRecord maps a record to its response.
func FromRecord(r *record.Record) RecordResponse {
	resp := RecordResponse{Record: r}
	if parent, ok := r.Parent(); ok {
		resp.Parent = &parent
	}
	return resp
}

// FromRecords maps a slice of records.
func FromRecords(records []*record.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}

// RowResponse is the flattened listing row of a record.
type RowResponse struct {
	Key     record.Key        `json:"key"`
	Columns []string          `json:"columns"`
	Values  map[string]string `json:"values"`
}

// DisplayValueResponse is one field as shown to readers.
type DisplayValueResponse struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// HistoryEntryResponse is one history row. Changes are decoded so clients
// never see the storage encoding.
type HistoryEntryResponse struct {
	Action    audit.Action            `json:"action"`
	UserID    string                  `json:"user_id,omitempty"`
	Changes   map[string]audit.Change `json:"changes"`
	CreatedAt time.Time               `json:"created_at"`
}

// FromHistory maps history entries.
func FromHistory(entries []audit.Entry) ([]HistoryEntryResponse, error) {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		var changes map[string]audit.Change
		if len(e.Changes) > 0 {
			if err := json.Unmarshal(e.Changes, &changes); err != nil {
				return nil, fmt.Errorf("decode history %s: %w", e.ID, err)
			}
		}
		out = append(out, HistoryEntryResponse{
			Action:    e.Action,
			UserID:    e.UserID,
			Changes:   changes,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}
