package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlace_IsImmutable(t *testing.T) {
	types := []string{"university"}
	p := NewPlace(PlaceParams{
		ID:          "p1",
		Name:        "University of Colombo",
		Coordinates: Coordinates{Lat: 6.9022, Lng: 79.8607},
		Types:       types,
	})

	types[0] = "mutated"
	got := p.Types()
	got[0] = "mutated again"

	assert.Equal(t, []string{"university"}, p.Types())
	assert.Equal(t, "University of Colombo", p.Name())
}

func TestPlace_Matches(t *testing.T) {
	p := NewPlace(PlaceParams{
		Name:             "Bandaranaike International Airport",
		FormattedAddress: "Canada Friendship Rd, Katunayake",
		Vicinity:         "Katunayake",
	})

	tests := []struct {
		name string
		term string
		want bool
	}{
		{"Should match on name", "airport", true},
		{"Should match on vicinity", "katunayake", true},
		{"Should match on address", "friendship", true},
		{"Should not match unrelated term", "galle", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Matches(tt.term))
		})
	}
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, "6.927100, 79.861200", Coordinates{Lat: 6.9271, Lng: 79.8612}.String())
	assert.NoError(t, Coordinates{Lat: 6.9, Lng: 79.8}.Validate())
	assert.ErrorIs(t, Coordinates{Lat: 91, Lng: 0}.Validate(), ErrInvalidCoordinates)
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox{Low: Coordinates{Lat: 6.8, Lng: 79.8}, High: Coordinates{Lat: 7.05, Lng: 80.05}}

	assert.NoError(t, box.Validate())
	assert.True(t, box.Contains(Coordinates{Lat: 6.9022, Lng: 79.8607}))
	assert.False(t, box.Contains(Coordinates{Lat: 9.66, Lng: 80.02}))

	inverted := BoundingBox{Low: box.High, High: box.Low}
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidBoundingBox)
}

func TestSearchTier_OrderAndNames(t *testing.T) {
	assert.Less(t, int(TierExact), int(TierCityContext))
	assert.Less(t, int(TierCityContext), int(TierBroad))
	assert.Less(t, int(TierBroad), int(TierCurated))
	assert.Equal(t, "city_context", TierCityContext.String())
	assert.Equal(t, "unknown", SearchTier(9).String())
}
