package photos

import "context"

type Repository interface {
	Create(ctx context.Context, p Photo) error
	Update(ctx context.Context, p Photo) error
	GetByID(ctx context.Context, id string) (Photo, error)

	// List devuelve fotos visibles, más recientes primero. Con
	// featuredOnly solo las destacadas.
	List(ctx context.Context, featuredOnly bool, limit int) ([]Photo, error)
}
