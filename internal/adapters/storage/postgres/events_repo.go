package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"memoria-viva/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, owner_user_id,
	title, description, category, location,
	latitude, longitude,
	starts_at, ends_at,
	recurring, recurrence_pattern, recurrence_end_date, excluded_dates,
	status, created_at, updated_at
`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	excluded, err := excludedToJSON(e.ExcludedDates)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		e.ID,
		e.OwnerUserID,
		e.Title,
		e.Description,
		string(e.Category),
		e.Location,
		toNullFloat(e.Latitude),
		toNullFloat(e.Longitude),
		e.StartsAt,
		toNullTime(e.EndsAt),
		e.Recurring,
		string(e.RecurrencePattern),
		toNullTime(e.RecurrenceEndDate),
		excluded,
		string(e.Status),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return events.Event{}, ErrNotFound
	}
	return e, err
}

func (r *EventsRepo) ListActive(ctx context.Context, filter events.ListFilter) ([]events.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = $1
	`
	args := []any{string(events.EventStatusActive)}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY starts_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) Cancel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, string(events.EventStatusCancelled))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e        events.Event
		lat, lng sql.NullFloat64
		endsAt   sql.NullTime
		recEnd   sql.NullTime
		excluded []byte
		category string
		pattern  string
		status   string
	)
	if err := row.Scan(
		&e.ID,
		&e.OwnerUserID,
		&e.Title,
		&e.Description,
		&category,
		&e.Location,
		&lat,
		&lng,
		&e.StartsAt,
		&endsAt,
		&e.Recurring,
		&pattern,
		&recEnd,
		&excluded,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.Event{}, err
	}

	e.Category = events.Category(category)
	e.RecurrencePattern = events.RecurrencePattern(pattern)
	e.Status = events.EventStatus(status)

	if lat.Valid {
		v := lat.Float64
		e.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		e.Longitude = &v
	}
	if endsAt.Valid {
		t := endsAt.Time
		e.EndsAt = &t
	}
	if recEnd.Valid {
		t := recEnd.Time
		e.RecurrenceEndDate = &t
	}

	dates, err := excludedFromJSON(excluded)
	if err != nil {
		return events.Event{}, err
	}
	e.ExcludedDates = dates

	return e, nil
}

// excluded_dates va como jsonb de strings "YYYY-MM-DD"; evita pelear con
// arrays de date en database/sql.
func excludedToJSON(dates []time.Time) ([]byte, error) {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return json.Marshal(out)
}

func excludedFromJSON(raw []byte) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, fmt.Errorf("decode excluded_dates: %w", err)
	}
	out := make([]time.Time, 0, len(strs))
	for _, s := range strs {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("decode excluded_dates: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
