package entity

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

const (
	DefaultPlaceName     = "Unknown place"
	DefaultAddress       = "Address not available"
	SelectedLocationName = "Selected Location"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the pair as "lat, lng", the form shown when no address is known.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Place is a resolved location. It is never mutated after construction.
type Place struct {
	id               string
	name             string
	formattedAddress string
	coordinates      Coordinates
	types            []string
	vicinity         string
}

type PlaceParams struct {
	ID               string
	Name             string
	FormattedAddress string
	Coordinates      Coordinates
	Types            []string
	Vicinity         string
}

func NewPlace(p PlaceParams) Place {
	return Place{
		id:               p.ID,
		name:             p.Name,
		formattedAddress: p.FormattedAddress,
		coordinates:      p.Coordinates,
		types:            slices.Clone(p.Types),
		vicinity:         p.Vicinity,
	}
}

func (p Place) ID() string               { return p.id }
func (p Place) Name() string             { return p.name }
func (p Place) FormattedAddress() string { return p.formattedAddress }
func (p Place) Coordinates() Coordinates { return p.coordinates }
func (p Place) Vicinity() string         { return p.vicinity }
func (p Place) Types() []string          { return slices.Clone(p.types) }

// Matches reports whether term occurs in the name, vicinity or formatted
// address, ignoring case. term must already be lower-cased.
func (p Place) Matches(term string) bool {
	return strings.Contains(strings.ToLower(p.name), term) ||
		strings.Contains(strings.ToLower(p.vicinity), term) ||
		strings.Contains(strings.ToLower(p.formattedAddress), term)
}
