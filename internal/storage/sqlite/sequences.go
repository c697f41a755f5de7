package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trackstitch/internal/stitch"
)

// Sequence is a replayed track sequence.
type Sequence struct {
	SequenceID       string
	Source           string
	FrameCount       int64
	Params           stitch.Params
	CreatedUnixNanos int64
}

// InsertSequence stores seq, assigning SequenceID and CreatedUnixNanos
// when unset.
func (db *DB) InsertSequence(ctx context.Context, seq *Sequence) error {
	if seq.SequenceID == "" {
		seq.SequenceID = uuid.New().String()
	}
	if seq.CreatedUnixNanos == 0 {
		seq.CreatedUnixNanos = time.Now().UnixNano()
	}
	paramsJSON, err := json.Marshal(seq.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO sequences (sequence_id, source, frame_count, params_json, created_unix_nanos)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sequence_id) DO UPDATE SET
			source = excluded.source,
			frame_count = excluded.frame_count,
			params_json = excluded.params_json`,
		seq.SequenceID, seq.Source, seq.FrameCount, string(paramsJSON), seq.CreatedUnixNanos,
	)
	if err != nil {
		return fmt.Errorf("insert sequence: %w", err)
	}
	return nil
}

// ListSequences returns every stored sequence, newest first.
func (db *DB) ListSequences(ctx context.Context) ([]Sequence, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT sequence_id, source, frame_count, params_json, created_unix_nanos
		FROM sequences
		ORDER BY created_unix_nanos DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var out []Sequence
	for rows.Next() {
		var seq Sequence
		var paramsJSON string
		if err := rows.Scan(&seq.SequenceID, &seq.Source, &seq.FrameCount, &paramsJSON, &seq.CreatedUnixNanos); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &seq.Params); err != nil {
			return nil, fmt.Errorf("decode params of %s: %w", seq.SequenceID, err)
		}
		out = append(out, seq)
	}
	return out, rows.Err()
}
