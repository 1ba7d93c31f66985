package memory

import (
	"context"
	"sort"
	"sync"

	"memoria-viva/internal/domain/digests"
)

type digestsRepo struct {
	mu      sync.RWMutex
	byEmail map[string]digests.Subscriber
}

func NewDigestsRepo() digests.Repository {
	return &digestsRepo{
		byEmail: make(map[string]digests.Subscriber),
	}
}

func (r *digestsRepo) Subscribe(ctx context.Context, s digests.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// suscripción repetida conserva la fecha original
	if _, exists := r.byEmail[s.Email]; !exists {
		r.byEmail[s.Email] = s
	}
	return nil
}

func (r *digestsRepo) Unsubscribe(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byEmail, email)
	return nil
}

func (r *digestsRepo) List(ctx context.Context) ([]digests.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]digests.Subscriber, 0, len(r.byEmail))
	for _, s := range r.byEmail {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Email < out[j].Email
	})
	return out, nil
}
