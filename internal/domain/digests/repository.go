package digests

import (
	"context"
	"time"
)

type Subscriber struct {
	Email     string
	CreatedAt time.Time
}

// Repository guarda las suscripciones al digest semanal.
type Repository interface {
	// Subscribe es idempotente: volver a suscribir el mismo email no es error.
	Subscribe(ctx context.Context, s Subscriber) error
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context) ([]Subscriber, error)
}
