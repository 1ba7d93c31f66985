package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"memoria-viva/internal/domain/photos"
)

type photosRepo struct {
	mu   sync.RWMutex
	byID map[string]photos.Photo
}

func NewPhotosRepo() photos.Repository {
	return &photosRepo{
		byID: make(map[string]photos.Photo),
	}
}

func (r *photosRepo) Create(ctx context.Context, p photos.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("photo id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("photo already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *photosRepo) Update(ctx context.Context, p photos.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *photosRepo) GetByID(ctx context.Context, id string) (photos.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return photos.Photo{}, ErrNotFound
	}
	return p, nil
}

func (r *photosRepo) List(ctx context.Context, featuredOnly bool, limit int) ([]photos.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]photos.Photo, 0)
	for _, p := range r.byID {
		if p.Status != photos.StatusVisible {
			continue
		}
		if featuredOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
