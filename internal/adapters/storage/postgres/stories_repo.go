package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"memoria-viva/internal/domain/stories"
)

type StoriesRepo struct {
	db *sql.DB
}

func NewStoriesRepo(db *sql.DB) *StoriesRepo {
	return &StoriesRepo{db: db}
}

const storyColumns = `
	id, author_user_id, author_name,
	title, body, category, summary,
	status, reject_reason, flagged, flag_reason,
	published_at, created_at, updated_at
`

func (r *StoriesRepo) Create(ctx context.Context, s stories.Story) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stories (`+storyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		s.ID,
		s.AuthorUserID,
		s.AuthorName,
		s.Title,
		s.Body,
		string(s.Category),
		s.Summary,
		string(s.Status),
		s.RejectReason,
		s.Flagged,
		s.FlagReason,
		toNullTime(s.PublishedAt),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *StoriesRepo) Update(ctx context.Context, s stories.Story) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stories
		SET
			author_name = $2,
			title = $3,
			body = $4,
			category = $5,
			summary = $6,
			status = $7,
			reject_reason = $8,
			flagged = $9,
			flag_reason = $10,
			published_at = $11,
			updated_at = $12
		WHERE id = $1
	`,
		s.ID,
		s.AuthorName,
		s.Title,
		s.Body,
		string(s.Category),
		s.Summary,
		string(s.Status),
		s.RejectReason,
		s.Flagged,
		s.FlagReason,
		toNullTime(s.PublishedAt),
		s.UpdatedAt,
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

func (r *StoriesRepo) GetByID(ctx context.Context, id string) (stories.Story, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return stories.Story{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+storyColumns+`
		FROM stories
		WHERE id = $1
	`, id)

	s, err := scanStory(row)
	if err == sql.ErrNoRows {
		return stories.Story{}, ErrNotFound
	}
	return s, err
}

func (r *StoriesRepo) List(ctx context.Context, filter stories.ListFilter) ([]stories.Story, error) {
	query := `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE 1=1
	`
	args := []any{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR body ILIKE $%d)", len(args), len(args))
	}

	// publicados por fecha de publicación; pendientes/rechazados por creación
	query += " ORDER BY published_at DESC NULLS LAST, created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryStories(ctx, query, args...)
}

func (r *StoriesRepo) ListByAuthor(ctx context.Context, authorUserID string) ([]stories.Story, error) {
	authorUserID = strings.TrimSpace(authorUserID)
	if authorUserID == "" {
		return nil, nil
	}
	return r.queryStories(ctx, `
		SELECT `+storyColumns+`
		FROM stories
		WHERE author_user_id = $1
		ORDER BY created_at DESC
	`, authorUserID)
}

func (r *StoriesRepo) queryStories(ctx context.Context, query string, args ...any) ([]stories.Story, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]stories.Story, 0)
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanStory(row rowScanner) (stories.Story, error) {
	var (
		s           stories.Story
		category    string
		status      string
		publishedAt sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.AuthorUserID,
		&s.AuthorName,
		&s.Title,
		&s.Body,
		&category,
		&s.Summary,
		&status,
		&s.RejectReason,
		&s.Flagged,
		&s.FlagReason,
		&publishedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return stories.Story{}, err
	}
	s.Category = stories.Category(category)
	s.Status = stories.StoryStatus(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		s.PublishedAt = &t
	}
	return s, nil
}

func (r *StoriesRepo) Like(ctx context.Context, storyID, userID string) error {
	// like repetido no es error
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO story_likes (story_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (story_id, user_id) DO NOTHING
	`, storyID, userID)
	return err
}

func (r *StoriesRepo) Unlike(ctx context.Context, storyID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM story_likes
		WHERE story_id = $1 AND user_id = $2
	`, storyID, userID)
	return err
}

func (r *StoriesRepo) LikeCount(ctx context.Context, storyID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM story_likes WHERE story_id = $1
	`, storyID).Scan(&n)
	return n, err
}

func (r *StoriesRepo) AddComment(ctx context.Context, c stories.Comment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO story_comments (id, story_id, author_user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		c.ID,
		c.StoryID,
		c.AuthorUserID,
		c.Body,
		c.CreatedAt,
	)
	return err
}

func (r *StoriesRepo) ListComments(ctx context.Context, storyID string) ([]stories.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, story_id, author_user_id, body, created_at
		FROM story_comments
		WHERE story_id = $1
		ORDER BY created_at ASC
	`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]stories.Comment, 0)
	for rows.Next() {
		var c stories.Comment
		if err := rows.Scan(&c.ID, &c.StoryID, &c.AuthorUserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *StoriesRepo) GetComment(ctx context.Context, commentID string) (stories.Comment, error) {
	var c stories.Comment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, story_id, author_user_id, body, created_at
		FROM story_comments
		WHERE id = $1
	`, commentID).Scan(&c.ID, &c.StoryID, &c.AuthorUserID, &c.Body, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return stories.Comment{}, ErrNotFound
	}
	return c, err
}

func (r *StoriesRepo) RemoveComment(ctx context.Context, commentID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM story_comments WHERE id = $1
	`, commentID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
