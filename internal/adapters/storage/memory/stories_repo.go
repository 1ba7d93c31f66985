package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"memoria-viva/internal/domain/stories"
)

type storiesRepo struct {
	mu       sync.RWMutex
	byID     map[string]stories.Story
	likes    map[string]map[string]struct{} // storyID -> userID
	comments map[string]stories.Comment     // commentID -> comment
}

func NewStoriesRepo() stories.Repository {
	return &storiesRepo{
		byID:     make(map[string]stories.Story),
		likes:    make(map[string]map[string]struct{}),
		comments: make(map[string]stories.Comment),
	}
}

func (r *storiesRepo) Create(ctx context.Context, s stories.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("story id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("story already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *storiesRepo) Update(ctx context.Context, s stories.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; !exists {
		return ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *storiesRepo) GetByID(ctx context.Context, id string) (stories.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return stories.Story{}, ErrNotFound
	}
	return s, nil
}

func (r *storiesRepo) List(ctx context.Context, filter stories.ListFilter) ([]stories.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]stories.Story, 0)
	for _, s := range r.byID {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Title), query) &&
			!strings.Contains(strings.ToLower(s.Body), query) {
			continue
		}
		out = append(out, s)
	}

	// Publicados por fecha de publicación desc; el resto por creación desc.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PublishedAt != nil && b.PublishedAt != nil {
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *storiesRepo) ListByAuthor(ctx context.Context, authorUserID string) ([]stories.Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stories.Story, 0)
	for _, s := range r.byID {
		if s.AuthorUserID == authorUserID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *storiesRepo) Like(ctx context.Context, storyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[storyID]; !exists {
		return ErrNotFound
	}
	if r.likes[storyID] == nil {
		r.likes[storyID] = make(map[string]struct{})
	}
	r.likes[storyID][userID] = struct{}{}
	return nil
}

func (r *storiesRepo) Unlike(ctx context.Context, storyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[storyID]; !exists {
		return ErrNotFound
	}
	delete(r.likes[storyID], userID)
	return nil
}

func (r *storiesRepo) LikeCount(ctx context.Context, storyID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.likes[storyID]), nil
}

func (r *storiesRepo) AddComment(ctx context.Context, c stories.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("comment id required")
	}
	if _, exists := r.byID[c.StoryID]; !exists {
		return ErrNotFound
	}
	r.comments[c.ID] = c
	return nil
}

func (r *storiesRepo) ListComments(ctx context.Context, storyID string) ([]stories.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]stories.Comment, 0)
	for _, c := range r.comments {
		if c.StoryID == storyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *storiesRepo) GetComment(ctx context.Context, commentID string) (stories.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[commentID]
	if !ok {
		return stories.Comment{}, ErrNotFound
	}
	return c, nil
}

func (r *storiesRepo) RemoveComment(ctx context.Context, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[commentID]; !ok {
		return ErrNotFound
	}
	delete(r.comments, commentID)
	return nil
}
