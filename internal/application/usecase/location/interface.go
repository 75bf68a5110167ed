package location

import (
	"context"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
)

type ResolveUseCase interface {
	Resolve(ctx context.Context, query string) ([]entity.Place, error)
	ResolveDetailed(ctx context.Context, query string) (Resolution, error)
}

type ReverseGeocodeUseCase interface {
	Lookup(ctx context.Context, c entity.Coordinates) entity.Place
}
