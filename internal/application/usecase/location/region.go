package location

import (
	"strings"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
)

// Region describes the geography the resolver searches in: provider hints,
// the city used to widen bare queries and one restriction box per tier.
type Region struct {
	Code        string
	Language    string
	PrimaryCity string
	KnownCities []string
	Metro       entity.BoundingBox
	Province    entity.BoundingBox
	National    entity.BoundingBox
}

// DefaultRegion is Sri Lanka, centred on Colombo.
func DefaultRegion() Region {
	return Region{
		Code:        "lk",
		Language:    "en",
		PrimaryCity: "Colombo",
		KnownCities: []string{
			"colombo", "kandy", "galle", "jaffna", "negombo", "trincomalee",
			"batticaloa", "anuradhapura", "kurunegala", "matara", "ratnapura",
			"badulla", "nuwara eliya", "dehiwala", "moratuwa", "kalutara",
		},
		Metro: entity.BoundingBox{
			Low:  entity.Coordinates{Lat: 6.78, Lng: 79.82},
			High: entity.Coordinates{Lat: 7.05, Lng: 80.05},
		},
		Province: entity.BoundingBox{
			Low:  entity.Coordinates{Lat: 6.40, Lng: 79.78},
			High: entity.Coordinates{Lat: 7.35, Lng: 80.35},
		},
		National: entity.BoundingBox{
			Low:  entity.Coordinates{Lat: 5.90, Lng: 79.50},
			High: entity.Coordinates{Lat: 9.85, Lng: 81.90},
		},
	}
}

func (r Region) Validate() error {
	for _, box := range []entity.BoundingBox{r.Metro, r.Province, r.National} {
		if err := box.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MentionsKnownCity reports whether the lower-cased query already names a
// major city, in which case the city-context tier is pointless.
func (r Region) MentionsKnownCity(lowered string) bool {
	for _, city := range r.KnownCities {
		if strings.Contains(lowered, city) {
			return true
		}
	}
	return false
}
