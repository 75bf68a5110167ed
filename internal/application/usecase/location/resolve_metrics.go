package location

import (
	"context"
	"time"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/metrics"
)

type ResolveMetricsDecorator struct {
	Next    ResolveUseCase
	Metrics metrics.Metrics
}

func (d *ResolveMetricsDecorator) Resolve(ctx context.Context, query string) ([]entity.Place, error) {
	res, err := d.ResolveDetailed(ctx, query)
	return res.Places, err
}

func (d *ResolveMetricsDecorator) ResolveDetailed(ctx context.Context, query string) (Resolution, error) {
	start := time.Now()
	res, err := d.Next.ResolveDetailed(ctx, query)
	d.Metrics.RecordUseCaseExecution("ResolvePlaces", err == nil, time.Since(start))
	return res, err
}
