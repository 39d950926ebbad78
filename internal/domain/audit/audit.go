// Package audit defines the history kept for every record create and update.
package audit

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"datasets/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Entry is one history row for a record.
type Entry struct {
	ID        id.ID           `db:"id" json:"id"`
	Dataset   string          `db:"dataset" json:"dataset"`
	Entity    int64           `db:"entity" json:"entity"`
	Action    Action          `db:"action" json:"action"`
	UserID    string          `db:"user_id" json:"user_id,omitempty"`
	Changes   json.RawMessage `db:"changes" json:"changes"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Logger writes and reads record history.
type Logger interface {
	// Log stores entry inside the caller's transaction.
	Log(ctx context.Context, entry Entry) error
	// History returns the newest entries for one record first.
	History(ctx context.Context, dataset string, entity int64, limit int) ([]Entry, error)
}

// Change is the before and after value of one attribute.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff calculates the difference between old and new record states.
// Keys missing on one side are reported with a nil value on that side.
func Diff(oldState, newState map[string]any) map[string]Change {
	changes := make(map[string]Change)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = Change{Old: oldVal, New: newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = Change{Old: oldVal, New: nil}
		}
	}

	return changes
}

// NewEntry builds an entry with its changes marshalled.
func NewEntry(action Action, dataset string, entity int64, changes map[string]Change) (Entry, error) {
	raw, err := json.Marshal(changes)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:      id.New(),
		Dataset: dataset,
		Entity:  entity,
		Action:  action,
		Changes: raw,
	}, nil
}
