package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

const (
	placesGeoKey  = "places:geo"
	placesDataKey = "places:data"
)

type placeRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Types            []string `json:"types,omitempty"`
	Vicinity         string   `json:"vicinity,omitempty"`
}

// RedisPlaceIndex stores provider places in a GEO set keyed by place id,
// with the full record in a hash next to it.
type RedisPlaceIndex struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisPlaceIndex(client *redis.Client, log logger.Logger) *RedisPlaceIndex {
	return &RedisPlaceIndex{client: client, logger: log}
}

// Add skips places without an id or with placeholder coordinates.
func (r *RedisPlaceIndex) Add(ctx context.Context, places []entity.Place) error {
	locations := make([]*redis.GeoLocation, 0, len(places))
	records := make([]interface{}, 0, 2*len(places))
	for _, p := range places {
		c := p.Coordinates()
		if p.ID() == "" || (c.Lat == 0 && c.Lng == 0) {
			continue
		}
		raw, err := json.Marshal(toRecord(p))
		if err != nil {
			return fmt.Errorf("encoding place %s: %w", p.ID(), err)
		}
		locations = append(locations, &redis.GeoLocation{Name: p.ID(), Latitude: c.Lat, Longitude: c.Lng})
		records = append(records, p.ID(), raw)
	}
	if len(locations) == 0 {
		return nil
	}

	r.logger.Debug(ctx, "Redis GeoAdd places", logger.Int("count", len(locations)))

	pipe := r.client.TxPipeline()
	pipe.GeoAdd(ctx, placesGeoKey, locations...)
	pipe.HSet(ctx, placesDataKey, records...)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error(ctx, "Redis GeoAdd failed", logger.WithError(err))
		return fmt.Errorf("redis geo add error: %w", err)
	}
	return nil
}

// Nearest uses the read-only GEORADIUS form so replicas can serve it.
func (r *RedisPlaceIndex) Nearest(ctx context.Context, c entity.Coordinates, radiusMeters float64) (entity.Place, bool, error) {
	r.logger.Debug(ctx, "Redis GeoRadius query",
		logger.Float64("lat", c.Lat),
		logger.Float64("lng", c.Lng),
		logger.Float64("radius_m", radiusMeters),
	)

	results, err := r.client.GeoRadius(ctx, placesGeoKey, c.Lng, c.Lat, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
		Count:    1,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return entity.Place{}, false, fmt.Errorf("redis geo radius error: %w", err)
	}
	if len(results) == 0 {
		return entity.Place{}, false, nil
	}

	raw, err := r.client.HGet(ctx, placesDataKey, results[0].Name).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Place{}, false, nil
	}
	if err != nil {
		return entity.Place{}, false, fmt.Errorf("redis hget error: %w", err)
	}

	var rec placeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entity.Place{}, false, fmt.Errorf("decoding place %s: %w", results[0].Name, err)
	}
	return fromRecord(rec), true, nil
}

func toRecord(p entity.Place) placeRecord {
	c := p.Coordinates()
	return placeRecord{
		ID:               p.ID(),
		Name:             p.Name(),
		FormattedAddress: p.FormattedAddress(),
		Lat:              c.Lat,
		Lng:              c.Lng,
		Types:            p.Types(),
		Vicinity:         p.Vicinity(),
	}
}

func fromRecord(rec placeRecord) entity.Place {
	return entity.NewPlace(entity.PlaceParams{
		ID:               rec.ID,
		Name:             rec.Name,
		FormattedAddress: rec.FormattedAddress,
		Coordinates:      entity.Coordinates{Lat: rec.Lat, Lng: rec.Lng},
		Types:            rec.Types,
		Vicinity:         rec.Vicinity,
	})
}
