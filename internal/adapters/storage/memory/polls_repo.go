package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"memoria-viva/internal/domain/polls"
)

type pollsRepo struct {
	mu    sync.RWMutex
	byID  map[string]polls.Poll
	votes map[string]map[string]string // pollID -> userID -> optionID
}

func NewPollsRepo() polls.Repository {
	return &pollsRepo{
		byID:  make(map[string]polls.Poll),
		votes: make(map[string]map[string]string),
	}
}

func (r *pollsRepo) Create(ctx context.Context, p polls.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("poll id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("poll already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *pollsRepo) Update(ctx context.Context, p polls.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *pollsRepo) GetByID(ctx context.Context, id string) (polls.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return polls.Poll{}, ErrNotFound
	}
	return p, nil
}

func (r *pollsRepo) List(ctx context.Context, limit int) ([]polls.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]polls.Poll, 0, len(r.byID))
	for _, p := range r.byID {
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

func (r *pollsRepo) Vote(ctx context.Context, pollID, optionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[pollID]; !exists {
		return ErrNotFound
	}
	if r.votes[pollID] == nil {
		r.votes[pollID] = make(map[string]string)
	}
	// re-votar reemplaza el voto anterior
	r.votes[pollID][userID] = optionID
	return nil
}

func (r *pollsRepo) Results(ctx context.Context, pollID string) (polls.Results, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.byID[pollID]; !exists {
		return nil, ErrNotFound
	}
	out := make(polls.Results)
	for _, optionID := range r.votes[pollID] {
		out[optionID]++
	}
	return out, nil
}
