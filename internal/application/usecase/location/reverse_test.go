package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DioGolang/GoPlaces/internal/application/port/outbound"
	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/logger"
)

var fortStation = entity.Coordinates{Lat: 6.9339, Lng: 79.8500}

func TestReverseGeocodeService_Lookup(t *testing.T) {
	t.Run("Should snap to an indexed place", func(t *testing.T) {
		geocoder := &fakeGeocoder{}
		index := &fakeIndex{nearest: universityOfColombo(), found: true}
		s := NewReverseGeocodeService(geocoder, index, 0, logger.NewNop())

		p := s.Lookup(context.Background(), fortStation)

		assert.Equal(t, "University of Colombo", p.Name())
		assert.Zero(t, geocoder.calls)
	})

	t.Run("Should geocode when the index fails", func(t *testing.T) {
		geocoder := &fakeGeocoder{addr: outbound.Address{Street: "Olcott Mawatha", City: "Colombo", Country: "Sri Lanka"}}
		index := &fakeIndex{err: errors.New("redis: connection refused")}
		s := NewReverseGeocodeService(geocoder, index, 0, logger.NewNop())

		p := s.Lookup(context.Background(), fortStation)

		assert.Equal(t, "Olcott Mawatha", p.Name())
		assert.Equal(t, "Olcott Mawatha, Colombo, Sri Lanka", p.FormattedAddress())
		assert.Equal(t, 1, geocoder.calls)
	})

	t.Run("Should geocode without an index", func(t *testing.T) {
		geocoder := &fakeGeocoder{addr: outbound.Address{Name: "Fort Railway Station", City: "Colombo"}}
		s := NewReverseGeocodeService(geocoder, nil, 0, logger.NewNop())

		p := s.Lookup(context.Background(), fortStation)

		assert.Equal(t, "Fort Railway Station", p.Name())
		assert.Equal(t, fortStation, p.Coordinates())
	})

	t.Run("Should fall back to the coordinates on geocoder failure", func(t *testing.T) {
		geocoder := &fakeGeocoder{err: entity.ErrGeocodeNoResult}
		s := NewReverseGeocodeService(geocoder, &fakeIndex{}, 0, logger.NewNop())

		p := s.Lookup(context.Background(), fortStation)

		assert.Equal(t, entity.SelectedLocationName, p.Name())
		assert.Equal(t, "6.933900, 79.850000", p.FormattedAddress())
		assert.Equal(t, []string{"selected_location"}, p.Types())
	})
}

func TestPlaceFromAddress(t *testing.T) {
	tests := []struct {
		name        string
		addr        outbound.Address
		wantName    string
		wantAddress string
	}{
		{"Should prefer the place name", outbound.Address{Name: "Galle Face Green", Street: "Galle Rd", City: "Colombo"}, "Galle Face Green", "Galle Rd, Colombo"},
		{"Should use the street when unnamed", outbound.Address{Street: "Galle Rd", Country: "Sri Lanka"}, "Galle Rd", "Galle Rd, Sri Lanka"},
		{"Should use the city as a last resort", outbound.Address{City: "Kandy"}, "Kandy", "Kandy"},
		{"Should default an empty address", outbound.Address{}, entity.SelectedLocationName, "6.933900, 79.850000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlaceFromAddress(fortStation, tt.addr)
			assert.Equal(t, tt.wantName, p.Name())
			assert.Equal(t, tt.wantAddress, p.FormattedAddress())
			assert.Equal(t, "pin:6.933900,79.850000", p.ID())
		})
	}
}
