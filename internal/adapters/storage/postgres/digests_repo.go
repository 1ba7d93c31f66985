package postgres

import (
	"context"
	"database/sql"

	"memoria-viva/internal/domain/digests"
)

type DigestsRepo struct {
	db *sql.DB
}

func NewDigestsRepo(db *sql.DB) *DigestsRepo {
	return &DigestsRepo{db: db}
}

func (r *DigestsRepo) Subscribe(ctx context.Context, s digests.Subscriber) error {
	// suscripción repetida conserva la fecha original
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO digest_subscribers (email, created_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, s.Email, s.CreatedAt)
	return err
}

func (r *DigestsRepo) Unsubscribe(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM digest_subscribers WHERE email = $1
	`, email)
	return err
}

func (r *DigestsRepo) List(ctx context.Context) ([]digests.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, created_at
		FROM digest_subscribers
		ORDER BY email ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]digests.Subscriber, 0)
	for rows.Next() {
		var s digests.Subscriber
		if err := rows.Scan(&s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
