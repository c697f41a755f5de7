package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trackstitch/internal/stitch"
	"github.com/banshee-data/trackstitch/internal/tracks"
)

// ProbeRecord is the stored form of a stitch.Probe.
type ProbeRecord struct {
	Frame         int64  `json:"frame"`
	MatchCount    int    `json:"match_count"`
	CandidateSize int    `json:"candidate_size"`
	ShotSize      int    `json:"shot_size"`
	Accepted      bool   `json:"accepted"`
	Error         string `json:"error,omitempty"`
}

// StitchEvent is one stitch attempt that reached the search phase.
type StitchEvent struct {
	EventID          string
	SequenceID       string
	Frame            int64
	Phase            string
	ShotStart        int64
	MatchedFrame     int64
	MatchCount       int
	Retired          []int64
	Probes           []ProbeRecord
	CreatedUnixNanos int64
}

// EventFromOutcome converts a stitch outcome into a StitchEvent.
func EventFromOutcome(sequenceID string, o stitch.Outcome) *StitchEvent {
	ev := &StitchEvent{
		SequenceID:   sequenceID,
		Frame:        int64(o.Frame),
		Phase:        string(o.Phase),
		ShotStart:    int64(o.ShotStart),
		MatchedFrame: int64(o.MatchedFrame),
		MatchCount:   o.MatchCount,
		Retired:      make([]int64, 0, len(o.Retired)),
		Probes:       make([]ProbeRecord, 0, len(o.Probes)),
	}
	for _, id := range o.Retired {
		ev.Retired = append(ev.Retired, int64(id))
	}
	for _, p := range o.Probes {
		rec := ProbeRecord{
			Frame:         int64(p.Frame),
			MatchCount:    p.MatchCount,
			CandidateSize: p.CandidateSize,
			ShotSize:      p.ShotSize,
			Accepted:      p.Accepted,
		}
		if p.Err != nil {
			rec.Error = p.Err.Error()
		}
		ev.Probes = append(ev.Probes, rec)
	}
	return ev
}

// RetiredIDs returns the retired track ids as tracks.TrackID values.
func (e *StitchEvent) RetiredIDs() []tracks.TrackID {
	out := make([]tracks.TrackID, len(e.Retired))
	for i, id := range e.Retired {
		out[i] = tracks.TrackID(id)
	}
	return out
}

// InsertEvent stores ev, assigning EventID and CreatedUnixNanos when unset.
func (db *DB) InsertEvent(ctx context.Context, ev *StitchEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.CreatedUnixNanos == 0 {
		ev.CreatedUnixNanos = time.Now().UnixNano()
	}
	if ev.Retired == nil {
		ev.Retired = []int64{}
	}
	if ev.Probes == nil {
		ev.Probes = []ProbeRecord{}
	}

	retiredJSON, err := json.Marshal(ev.Retired)
	if err != nil {
		return fmt.Errorf("marshal retired ids: %w", err)
	}
	probesJSON, err := json.Marshal(ev.Probes)
	if err != nil {
		return fmt.Errorf("marshal probes: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO stitch_events (
			event_id, sequence_id, frame, phase, shot_start, matched_frame,
			match_count, retired_json, probes_json, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.SequenceID, ev.Frame, ev.Phase, ev.ShotStart, ev.MatchedFrame,
		ev.MatchCount, string(retiredJSON), string(probesJSON), ev.CreatedUnixNanos,
	)
	if err != nil {
		return fmt.Errorf("insert stitch event: %w", err)
	}
	return nil
}

// ListEvents returns the events of a sequence ordered by frame. An empty
// sequenceID lists every sequence.
func (db *DB) ListEvents(ctx context.Context, sequenceID string) ([]StitchEvent, error) {
	query := `
		SELECT event_id, sequence_id, frame, phase, shot_start, matched_frame,
		       match_count, retired_json, probes_json, created_unix_nanos
		FROM stitch_events`
	var args []interface{}
	if sequenceID != "" {
		query += ` WHERE sequence_id = ?`
		args = append(args, sequenceID)
	}
	query += ` ORDER BY sequence_id, frame, created_unix_nanos`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stitch events: %w", err)
	}
	defer rows.Close()

	var events []StitchEvent
	for rows.Next() {
		var ev StitchEvent
		var retiredJSON, probesJSON string
		if err := rows.Scan(
			&ev.EventID, &ev.SequenceID, &ev.Frame, &ev.Phase, &ev.ShotStart, &ev.MatchedFrame,
			&ev.MatchCount, &retiredJSON, &probesJSON, &ev.CreatedUnixNanos,
		); err != nil {
			return nil, fmt.Errorf("scan stitch event: %w", err)
		}
		if err := json.Unmarshal([]byte(retiredJSON), &ev.Retired); err != nil {
			return nil, fmt.Errorf("decode retired ids of %s: %w", ev.EventID, err)
		}
		if err := json.Unmarshal([]byte(probesJSON), &ev.Probes); err != nil {
			return nil, fmt.Errorf("decode probes of %s: %w", ev.EventID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EventRecorder stores the outcomes of one sequence.
type EventRecorder struct {
	DB         *DB
	SequenceID string
}

// Record implements replay.Sink.
func (r *EventRecorder) Record(ctx context.Context, o stitch.Outcome) error {
	return r.DB.InsertEvent(ctx, EventFromOutcome(r.SequenceID, o))
}
