package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

const (
	DefaultSnapRadiusMeters = 25.0
	selectedLocationType    = "selected_location"
)

// ReverseGeocodeService turns a coordinate into a Place. It never fails:
// any lookup problem yields a placeholder named "Selected Location".
type ReverseGeocodeService struct {
	geocoder   outbound.ReverseGeocoder
	index      outbound.PlaceIndex
	snapRadius float64
	logger     logger.Logger
}

// NewReverseGeocodeService takes an optional index; when present a pin
// dropped within snapRadius meters of a known place resolves to that place.
func NewReverseGeocodeService(geocoder outbound.ReverseGeocoder, index outbound.PlaceIndex, snapRadius float64, log logger.Logger) *ReverseGeocodeService {
	if snapRadius <= 0 {
		snapRadius = DefaultSnapRadiusMeters
	}
	return &ReverseGeocodeService{
		geocoder:   geocoder,
		index:      index,
		snapRadius: snapRadius,
		logger:     log.With(logger.String("component", "reverse_geocode")),
	}
}

func (s *ReverseGeocodeService) Lookup(ctx context.Context, c entity.Coordinates) entity.Place {
	if s.index != nil {
		p, ok, err := s.index.Nearest(ctx, c, s.snapRadius)
		switch {
		case err != nil:
			s.logger.Warn(ctx, "place index lookup failed", logger.WithError(err))
		case ok:
			s.logger.Debug(ctx, "pin snapped to known place", logger.String("place_id", p.ID()))
			return p
		}
	}

	addr, err := s.geocoder.ReverseGeocode(ctx, c.Lat, c.Lng)
	if err != nil {
		s.logger.Warn(ctx, "reverse geocode failed, using coordinates",
			logger.Float64("lat", c.Lat),
			logger.Float64("lng", c.Lng),
			logger.WithError(err),
		)
		return FallbackPlace(c)
	}
	return PlaceFromAddress(c, addr)
}

// FallbackPlace is what a pin resolves to when nothing is known about it.
func FallbackPlace(c entity.Coordinates) entity.Place {
	return entity.NewPlace(entity.PlaceParams{
		ID:               pinID(c),
		Name:             entity.SelectedLocationName,
		FormattedAddress: c.String(),
		Coordinates:      c,
		Types:            []string{selectedLocationType},
	})
}

func PlaceFromAddress(c entity.Coordinates, addr outbound.Address) entity.Place {
	name := firstNonEmpty(addr.Name, addr.Street, addr.City)
	if name == "" {
		name = entity.SelectedLocationName
	}
	address := joinNonEmpty(addr.Street, addr.City, addr.Country)
	if address == "" {
		address = c.String()
	}
	return entity.NewPlace(entity.PlaceParams{
		ID:               pinID(c),
		Name:             name,
		FormattedAddress: address,
		Coordinates:      c,
		Types:            []string{selectedLocationType},
		Vicinity:         strings.TrimSpace(addr.City),
	})
}

func pinID(c entity.Coordinates) string {
	return fmt.Sprintf("pin:%.6f,%.6f", c.Lat, c.Lng)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
