package entity

type SearchTier int

const (
	TierExact SearchTier = iota
	TierCityContext
	TierBroad
	TierCurated
)

func (t SearchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierCityContext:
		return "city_context"
	case TierBroad:
		return "broad"
	case TierCurated:
		return "curated"
	default:
		return "unknown"
	}
}

// BoundingBox is a lat/lng rectangle restricting a provider query.
type BoundingBox struct {
	Low  Coordinates `json:"low"`
	High Coordinates `json:"high"`
}

func (b BoundingBox) Validate() error {
	if b.Low.Validate() != nil || b.High.Validate() != nil {
		return ErrInvalidBoundingBox
	}
	if b.Low.Lat > b.High.Lat || b.Low.Lng > b.High.Lng {
		return ErrInvalidBoundingBox
	}
	return nil
}

func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat >= b.Low.Lat && c.Lat <= b.High.Lat &&
		c.Lng >= b.Low.Lng && c.Lng <= b.High.Lng
}
