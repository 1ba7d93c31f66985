package events

import "context"

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)

	// ListActive devuelve eventos activos ordenados por StartsAt ascendente.
	// El recorte por rango lo hace la expansión, no el repo.
	ListActive(ctx context.Context, filter ListFilter) ([]Event, error)

	Cancel(ctx context.Context, id string) error
}

type ListFilter struct {
	Category Category
	Limit    int
}
