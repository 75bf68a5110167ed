package outbound

import (
	"context"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
)

// PlaceProvider runs one restricted text search against the external provider.
// An empty slice with a nil error is a genuine zero-match answer.
type PlaceProvider interface {
	Search(ctx context.Context, query string, box entity.BoundingBox, regionHint string) ([]entity.Place, error)
}

type Address struct {
	Name    string
	Street  string
	City    string
	Country string
}

type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error)
}
