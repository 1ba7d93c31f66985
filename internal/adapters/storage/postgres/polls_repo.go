package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"memoria-viva/internal/domain/polls"
)

type PollsRepo struct {
	db *sql.DB
}

func NewPollsRepo(db *sql.DB) *PollsRepo {
	return &PollsRepo{db: db}
}

func (r *PollsRepo) Create(ctx context.Context, p polls.Poll) error {
	options, err := json.Marshal(p.Options)
	if err != nil {
		return fmt.Errorf("encode poll options: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO polls (id, created_by_user_id, question, options, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		p.ID,
		p.CreatedByUserID,
		p.Question,
		options,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PollsRepo) Update(ctx context.Context, p polls.Poll) error {
	options, err := json.Marshal(p.Options)
	if err != nil {
		return fmt.Errorf("encode poll options: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE polls
		SET question = $2, options = $3, status = $4, updated_at = $5
		WHERE id = $1
	`,
		p.ID,
		p.Question,
		options,
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PollsRepo) GetByID(ctx context.Context, id string) (polls.Poll, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return polls.Poll{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_by_user_id, question, options, status, created_at, updated_at
		FROM polls
		WHERE id = $1
	`, id)

	p, err := scanPoll(row)
	if err == sql.ErrNoRows {
		return polls.Poll{}, ErrNotFound
	}
	return p, err
}

func (r *PollsRepo) List(ctx context.Context, limit int) ([]polls.Poll, error) {
	query := `
		SELECT id, created_by_user_id, question, options, status, created_at, updated_at
		FROM polls
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $1"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]polls.Poll, 0)
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPoll(row rowScanner) (polls.Poll, error) {
	var (
		p       polls.Poll
		options []byte
		status  string
	)
	if err := row.Scan(
		&p.ID,
		&p.CreatedByUserID,
		&p.Question,
		&options,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return polls.Poll{}, err
	}
	p.Status = polls.PollStatus(status)
	if len(options) > 0 {
		if err := json.Unmarshal(options, &p.Options); err != nil {
			return polls.Poll{}, fmt.Errorf("decode poll options: %w", err)
		}
	}
	return p, nil
}

func (r *PollsRepo) Vote(ctx context.Context, pollID, optionID, userID string) error {
	// votar de nuevo reemplaza el voto anterior
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, user_id, option_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (poll_id, user_id)
		DO UPDATE SET option_id = EXCLUDED.option_id, created_at = now()
	`, pollID, userID, optionID)
	return err
}

func (r *PollsRepo) Results(ctx context.Context, pollID string) (polls.Results, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT option_id, count(*)
		FROM poll_votes
		WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(polls.Results)
	for rows.Next() {
		var optionID string
		var n int
		if err := rows.Scan(&optionID, &n); err != nil {
			return nil, err
		}
		out[optionID] = n
	}
	return out, rows.Err()
}
