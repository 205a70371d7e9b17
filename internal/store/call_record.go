package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CallStatusInProgress = "in_progress"
	CallStatusCompleted  = "completed"
)

type CallRecord struct {
	ID                 uuid.UUID      `db:"id"`
	CallSid            sql.NullString `db:"call_sid"`
	StreamSid          sql.NullString `db:"stream_sid"`
	Status             string         `db:"status"`
	EndReason          sql.NullString `db:"end_reason"`
	FramesIn           int            `db:"frames_in"`
	FramesAppended     int            `db:"frames_appended"`
	Commits            int            `db:"commits"`
	ResponsesRequested int            `db:"responses_requested"`
	DeltasRelayed      int            `db:"deltas_relayed"`
	DeltasDropped      int            `db:"deltas_dropped"`
	MalformedMessages  int            `db:"malformed_messages"`
	StartedAt          time.Time      `db:"started_at"`
	EndedAt            sql.NullTime   `db:"ended_at"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

// CompleteCallRecordParams is what is known about a call once it ends.
type CompleteCallRecordParams struct {
	ID                 uuid.UUID `db:"id"`
	CallSid            string    `db:"call_sid"`
	StreamSid          string    `db:"stream_sid"`
	EndReason          string    `db:"end_reason"`
	FramesIn           int       `db:"frames_in"`
	FramesAppended     int       `db:"frames_appended"`
	Commits            int       `db:"commits"`
	ResponsesRequested int       `db:"responses_requested"`
	DeltasRelayed      int       `db:"deltas_relayed"`
	DeltasDropped      int       `db:"deltas_dropped"`
	MalformedMessages  int       `db:"malformed_messages"`
	EndedAt            time.Time `db:"ended_at"`
}

const sqlCreateCallRecord = `
INSERT INTO call_records (id, status, started_at)
VALUES ($1, $2, $3)
RETURNING *`

func (s *Store) CreateCallRecord(ctx context.Context, id uuid.UUID, startedAt time.Time) (*CallRecord, error) {
	var record CallRecord
	err := s.db.GetContext(ctx, &record, sqlCreateCallRecord, id, CallStatusInProgress, startedAt)
	if err != nil {
		s.logger.Error(ctx, "failed to create call record", err)
		return nil, fmt.Errorf("failed to create call record: %w", err)
	}
	return &record, nil
}

const sqlCompleteCallRecord = `
UPDATE call_records
SET status = 'completed',
    call_sid = NULLIF(:call_sid, ''),
    stream_sid = NULLIF(:stream_sid, ''),
    end_reason = :end_reason,
    frames_in = :frames_in,
    frames_appended = :frames_appended,
    commits = :commits,
    responses_requested = :responses_requested,
    deltas_relayed = :deltas_relayed,
    deltas_dropped = :deltas_dropped,
    malformed_messages = :malformed_messages,
    ended_at = :ended_at,
    updated_at = NOW()
WHERE id = :id`

func (s *Store) CompleteCallRecord(ctx context.Context, params CompleteCallRecordParams) error {
	res, err := s.db.NamedExecContext(ctx, sqlCompleteCallRecord, params)
	if err != nil {
		s.logger.Error(ctx, "failed to complete call record", err)
		return fmt.Errorf("failed to complete call record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete call record: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

const sqlGetCallRecordByID = `
SELECT * FROM call_records WHERE id = $1`

func (s *Store) GetCallRecord(ctx context.Context, id uuid.UUID) (*CallRecord, error) {
	var record CallRecord
	err := s.db.GetContext(ctx, &record, sqlGetCallRecordByID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get call record by ID", err)
		return nil, fmt.Errorf("failed to get call record by ID: %w", err)
	}
	return &record, nil
}
