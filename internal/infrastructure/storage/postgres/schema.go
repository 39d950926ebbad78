package postgres

import (
	"context"
	"fmt"

	"datasets/pkg/logger"
)

// DatasetChangedChannel is notified with a dataset identifier whenever its
// definition is written. An empty payload means "everything changed".
const DatasetChangedChannel = "dataset_changed"

// schemaSQL creates the engine tables. Every statement is idempotent.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS dataset (
	dataset         TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	parent          TEXT NOT NULL DEFAULT '',
	entity_minimum  BIGINT NOT NULL DEFAULT 0,
	entity_maximum  BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS field (
	field              TEXT PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	datatype           TEXT NOT NULL DEFAULT 'string',
	cardinality        TEXT NOT NULL DEFAULT '1',
	category_reference TEXT NOT NULL DEFAULT '',
	parent_field       TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS dataset_field (
	dataset  TEXT NOT NULL REFERENCES dataset (dataset) ON DELETE CASCADE,
	field    TEXT NOT NULL REFERENCES field (field),
	position INT  NOT NULL,
	PRIMARY KEY (dataset, field)
);

CREATE TABLE IF NOT EXISTS category (
	reference  TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	entry_date DATE NOT NULL DEFAULT CURRENT_DATE,
	start_date DATE,
	end_date   DATE
);

CREATE TABLE IF NOT EXISTS category_value (
	category_reference TEXT NOT NULL,
	reference          TEXT NOT NULL,
	prefix             TEXT NOT NULL DEFAULT '',
	name               TEXT NOT NULL DEFAULT '',
	position           BIGSERIAL,
	entry_date         DATE NOT NULL DEFAULT CURRENT_DATE,
	start_date         DATE,
	end_date           DATE,
	PRIMARY KEY (prefix, reference)
);

CREATE INDEX IF NOT EXISTS category_value_category_idx ON category_value (category_reference, position);

CREATE TABLE IF NOT EXISTS organisation (
	organisation         TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	local_authority_type TEXT,
	entity               BIGINT,
	entry_date           DATE NOT NULL DEFAULT CURRENT_DATE,
	start_date           DATE,
	end_date             DATE
);

CREATE TABLE IF NOT EXISTS record (
	entity         BIGINT NOT NULL,
	dataset        TEXT   NOT NULL REFERENCES dataset (dataset),
	reference      TEXT   NOT NULL,
	name           TEXT   NOT NULL DEFAULT '',
	description    TEXT,
	notes          TEXT,
	data           JSONB  NOT NULL DEFAULT '{}',
	organisation   TEXT,
	organisations  TEXT[],
	owning_entity  BIGINT,
	owning_dataset TEXT,
	entry_date     DATE NOT NULL DEFAULT CURRENT_DATE,
	start_date     DATE,
	end_date       DATE,
	PRIMARY KEY (dataset, entity),
	UNIQUE (dataset, reference),
	FOREIGN KEY (owning_dataset, owning_entity) REFERENCES record (dataset, entity)
);

CREATE INDEX IF NOT EXISTS record_owner_idx ON record (owning_dataset, owning_entity);

CREATE TABLE IF NOT EXISTS entity_sequence (
	dataset     TEXT PRIMARY KEY,
	current_val BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS record_history (
	id                 UUID PRIMARY KEY,
	dataset            TEXT NOT NULL,
	entity             BIGINT NOT NULL,
	action             TEXT NOT NULL,
	user_id            TEXT NOT NULL DEFAULT '',
	changes            JSONB,
	changes_compressed BYTEA,
	compression_algo   TEXT NOT NULL DEFAULT 'none',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS record_history_key_idx ON record_history (dataset, entity, created_at DESC);
`

// Migrate creates the engine tables if they do not exist.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema is up to date")
	return nil
}

// NotifyDatasetChanged tells metadata caches that dataset was rewritten.
// The notification is delivered when the caller's transaction commits.
func NotifyDatasetChanged(ctx context.Context, q Querier, dataset string) error {
	if _, err := q.Exec(ctx, "SELECT pg_notify($1, $2)", DatasetChangedChannel, dataset); err != nil {
		return fmt.Errorf("notify %s: %w", DatasetChangedChannel, err)
	}
	return nil
}
