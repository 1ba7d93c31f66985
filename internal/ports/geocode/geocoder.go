package geocode

import (
	"context"
	"errors"
)

var ErrNoResult = errors.New("geocode: no result")

type Point struct {
	Lat float64
	Lng float64
}

// Geocoder resuelve un texto de ubicación a coordenadas.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Point, error)
}
