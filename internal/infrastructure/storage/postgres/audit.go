package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"datasets/internal/core/id"
	"datasets/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a change set.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the change set size above which history rows
// are stored compressed.
const DefaultCompressThreshold = 10 * 1024

// historyRow is the stored form of an audit.Entry.
type historyRow struct {
	ID                id.ID           `db:"id"`
	Dataset           string          `db:"dataset"`
	Entity            int64           `db:"entity"`
	Action            audit.Action    `db:"action"`
	UserID            string          `db:"user_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// HistoryLog implements audit.Logger on the record_history table.
type HistoryLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewHistoryLog creates a history log writing through txManager.
func NewHistoryLog(txManager *TxManager) (*HistoryLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &HistoryLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Log implements audit.Logger.
func (h *HistoryLog) Log(ctx context.Context, entry audit.Entry) error {
	row := h.encode(entry)

	sql := `
		INSERT INTO record_history (
			id, dataset, entity, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := h.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		row.ID, row.Dataset, row.Entity, row.Action, row.UserID,
		row.Changes, row.ChangesCompressed, row.CompressionAlgo, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// History implements audit.Logger.
func (h *HistoryLog) History(ctx context.Context, dataset string, entity int64, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	sql := `
		SELECT id, dataset, entity, action, user_id,
			   changes, changes_compressed, compression_algo, created_at
		FROM record_history
		WHERE dataset = $1 AND entity = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var rows []historyRow
	if err := pgxscan.Select(ctx, h.txManager.GetQuerier(ctx), &rows, sql, dataset, entity, limit); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := h.decode(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// encode fills defaults and compresses large change sets.
func (h *HistoryLog) encode(entry audit.Entry) historyRow {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	row := historyRow{
		ID:              entry.ID,
		Dataset:         entry.Dataset,
		Entity:          entry.Entity,
		Action:          entry.Action,
		UserID:          entry.UserID,
		Changes:         entry.Changes,
		CompressionAlgo: CompressionNone,
		CreatedAt:       entry.CreatedAt,
	}
	if len(entry.Changes) > h.compressThreshold {
		row.ChangesCompressed = h.encoder.EncodeAll(entry.Changes, nil)
		row.Changes = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

func (h *HistoryLog) decode(row historyRow) (audit.Entry, error) {
	changes := row.Changes
	if row.CompressionAlgo == CompressionZstd && len(row.ChangesCompressed) > 0 {
		decompressed, err := h.decoder.DecodeAll(row.ChangesCompressed, nil)
		if err != nil {
			return audit.Entry{}, fmt.Errorf("decompress changes: %w", err)
		}
		changes = decompressed
	}

	return audit.Entry{
		ID:        row.ID,
		Dataset:   row.Dataset,
		Entity:    row.Entity,
		Action:    row.Action,
		UserID:    row.UserID,
		Changes:   changes,
		CreatedAt: row.CreatedAt,
	}, nil
}

var _ audit.Logger = (*HistoryLog)(nil)
