package outbound

import (
	"context"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
)

// PlaceIndex remembers places seen in provider answers so that a dropped pin
// can be snapped to a known place without a geocoder round trip.
type PlaceIndex interface {
	Add(ctx context.Context, places []entity.Place) error
	Nearest(ctx context.Context, c entity.Coordinates, radiusMeters float64) (entity.Place, bool, error)
}
