package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"memoria-viva/internal/domain/photos"
)

type PhotosRepo struct {
	db *sql.DB
}

func NewPhotosRepo(db *sql.DB) *PhotosRepo {
	return &PhotosRepo{db: db}
}

const photoColumns = `
	id, submitter_user_id,
	caption, era, location, image_url,
	featured, status, created_at, updated_at
`

func (r *PhotosRepo) Create(ctx context.Context, p photos.Photo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (`+photoColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		p.ID,
		p.SubmitterUserID,
		p.Caption,
		p.Era,
		p.Location,
		p.ImageURL,
		p.Featured,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PhotosRepo) Update(ctx context.Context, p photos.Photo) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE photos
		SET
			caption = $2,
			era = $3,
			location = $4,
			image_url = $5,
			featured = $6,
			status = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		p.Caption,
		p.Era,
		p.Location,
		p.ImageURL,
		p.Featured,
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

func (r *PhotosRepo) GetByID(ctx context.Context, id string) (photos.Photo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return photos.Photo{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+`
		FROM photos
		WHERE id = $1
	`, id)

	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return photos.Photo{}, ErrNotFound
	}
	return p, err
}

func (r *PhotosRepo) List(ctx context.Context, featuredOnly bool, limit int) ([]photos.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE status = $1
	`
	args := []any{string(photos.StatusVisible)}

	if featuredOnly {
		query += " AND featured = true"
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]photos.Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPhoto(row rowScanner) (photos.Photo, error) {
	var (
		p      photos.Photo
		status string
	)
	if err := row.Scan(
		&p.ID,
		&p.SubmitterUserID,
		&p.Caption,
		&p.Era,
		&p.Location,
		&p.ImageURL,
		&p.Featured,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return photos.Photo{}, err
	}
	p.Status = photos.PhotoStatus(status)
	return p, nil
}
