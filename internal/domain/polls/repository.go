package polls

import "context"

type Repository interface {
	Create(ctx context.Context, p Poll) error
	Update(ctx context.Context, p Poll) error
	GetByID(ctx context.Context, id string) (Poll, error)

	// List devuelve encuestas ordenadas por CreatedAt desc.
	List(ctx context.Context, limit int) ([]Poll, error)

	// Vote registra el voto de un usuario; votar de nuevo reemplaza el
	// voto anterior.
	Vote(ctx context.Context, pollID, optionID, userID string) error
	Results(ctx context.Context, pollID string) (Results, error)
}
