package entity

import "errors"

var (
	ErrInvalidBoundingBox  = errors.New("invalid bounding box")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrProviderUnavailable = errors.New("place provider unavailable")
	ErrProviderStatus      = errors.New("place provider returned an error status")
	ErrGeocodeNoResult     = errors.New("reverse geocode returned no result")
)
