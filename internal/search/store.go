package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/schedwise/schedwise/internal/schedule"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// Store persists event index entries, reminders and time preferences in
// SQLite. It implements schedule.Store.
type Store struct {
	DB  *sql.DB
	now func() time.Time
}

var _ schedule.Store = (*Store)(nil)

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// ScoredEvent is one semantic search hit.
type ScoredEvent struct {
	EventID string
	Title   string
	Start   time.Time
	Score   float64
}

func (s *Store) indexInto(ctx context.Context, table string, doc schedule.EventDocument) error {
	if doc.EventID == "" || doc.OwnerID == "" {
		return fmt.Errorf("indexing into %s: event id and owner id are required", table)
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO `+table+`(event_id,owner_id,title,start_at,embedding,indexed_at) VALUES (?,?,?,?,?,?)
		 ON CONFLICT(owner_id,event_id) DO UPDATE SET title=excluded.title, start_at=excluded.start_at, embedding=excluded.embedding, indexed_at=excluded.indexed_at`,
		doc.EventID, doc.OwnerID, doc.Title, doc.Start.UTC().Format(time.RFC3339), encodeEmbedding(doc.Embedding), s.now().UTC().Format(time.RFC3339))
	return err
}

// IndexEvent upserts the event into the general index.
func (s *Store) IndexEvent(ctx context.Context, doc schedule.EventDocument) error {
	return s.indexInto(ctx, "events_all", doc)
}

// IndexTrainingEvent upserts the event into the training index, which
// holds only events that carried explicit priority or time preferences.
func (s *Store) IndexTrainingEvent(ctx context.Context, doc schedule.EventDocument) error {
	return s.indexInto(ctx, "events_training", doc)
}

// SaveReminders replaces the stored reminders for an event.
func (s *Store) SaveReminders(ctx context.Context, ownerID, eventID string, reminders []schedule.Reminder) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE owner_id=? AND event_id=?`, ownerID, eventID); err != nil {
		return err
	}
	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reminders(owner_id,event_id,method,minutes_before) VALUES (?,?,?,?)`,
			ownerID, eventID, r.Method, r.MinutesBefore); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Reminders returns the stored reminders for an event.
func (s *Store) Reminders(ctx context.Context, ownerID, eventID string) ([]schedule.Reminder, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT method, minutes_before FROM reminders WHERE owner_id=? AND event_id=?`, ownerID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Reminder
	for rows.Next() {
		var r schedule.Reminder
		if err := rows.Scan(&r.Method, &r.MinutesBefore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveTimePreferences appends preference records for the owner.
func (s *Store) SaveTimePreferences(ctx context.Context, ownerID string, prefs []schedule.TimePreference) error {
	recordedAt := s.now().UTC().Format(time.RFC3339)
	for _, p := range prefs {
		if _, err := s.DB.ExecContext(ctx,
			`INSERT INTO time_preferences(owner_id,label,iso_weekday,start_hour,end_hour,recorded_at) VALUES (?,?,?,?,?,?)`,
			ownerID, p.Label, p.ISOWeekday, p.StartHour, p.EndHour, recordedAt); err != nil {
			return err
		}
	}
	return nil
}

// TimePreferences returns every preference recorded for the owner, oldest
// first.
func (s *Store) TimePreferences(ctx context.Context, ownerID string) ([]schedule.TimePreference, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT label, iso_weekday, start_hour, end_hour FROM time_preferences WHERE owner_id=? ORDER BY recorded_at, rowid`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.TimePreference
	for rows.Next() {
		var p schedule.TimePreference
		if err := rows.Scan(&p.Label, &p.ISOWeekday, &p.StartHour, &p.EndHour); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search scans the general index for the owner's events most similar to
// the query embedding. Events indexed without an embedding are skipped.
func (s *Store) Search(ctx context.Context, ownerID string, query []float32, limit int) ([]ScoredEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT event_id, title, start_at, embedding FROM events_all WHERE owner_id=? AND embedding IS NOT NULL`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []ScoredEvent
	for rows.Next() {
		var (
			hit     ScoredEvent
			startAt string
			blob    []byte
		)
		if err := rows.Scan(&hit.EventID, &hit.Title, &startAt, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", hit.EventID, err)
		}
		hit.Start, err = time.Parse(time.RFC3339, startAt)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", hit.EventID, err)
		}
		hit.Score = cosine(query, vec)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
