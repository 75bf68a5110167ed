package location

import (
	"strings"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
)

// CuratedDataset is the last-resort source used when every provider tier
// comes back empty. Order of declaration is the order of results.
type CuratedDataset struct {
	places []entity.Place
}

func NewCuratedDataset(places []entity.Place) *CuratedDataset {
	return &CuratedDataset{places: append([]entity.Place(nil), places...)}
}

func DefaultCuratedDataset() *CuratedDataset {
	return NewCuratedDataset(curatedPlaces())
}

// Match returns every place whose name, vicinity or address contains the
// trimmed query, ignoring case. A blank query matches nothing.
func (d *CuratedDataset) Match(query string) []entity.Place {
	term := strings.ToLower(strings.TrimSpace(query))
	matches := []entity.Place{}
	if term == "" {
		return matches
	}
	for _, p := range d.places {
		if p.Matches(term) {
			matches = append(matches, p)
		}
	}
	return matches
}

func (d *CuratedDataset) All() []entity.Place {
	return append([]entity.Place(nil), d.places...)
}

func (d *CuratedDataset) Len() int { return len(d.places) }

func curated(id, name, address, vicinity string, lat, lng float64, types ...string) entity.Place {
	return entity.NewPlace(entity.PlaceParams{
		ID:               "curated:" + id,
		Name:             name,
		FormattedAddress: address,
		Coordinates:      entity.Coordinates{Lat: lat, Lng: lng},
		Types:            types,
		Vicinity:         vicinity,
	})
}

func curatedPlaces() []entity.Place {
	return []entity.Place{
		curated("bia", "Bandaranaike International Airport", "Canada Friendship Rd, Katunayake 11450, Sri Lanka", "Katunayake", 7.1808, 79.8841, "airport"),
		curated("ratmalana-airport", "Colombo Ratmalana Airport", "Airport Rd, Ratmalana 10370, Sri Lanka", "Ratmalana", 6.8219, 79.8862, "airport"),
		curated("mattala-airport", "Mattala Rajapaksa International Airport", "Mattala 82000, Sri Lanka", "Hambantota", 6.2845, 81.1241, "airport"),
		curated("jaffna-airport", "Jaffna International Airport", "Palaly, Jaffna 40000, Sri Lanka", "Jaffna", 9.7923, 80.0701, "airport"),
		curated("fort-station", "Colombo Fort Railway Station", "Olcott Mawatha, Colombo 01100, Sri Lanka", "Colombo Fort", 6.9337, 79.8500, "train_station", "transit_station"),
		curated("maradana-station", "Maradana Railway Station", "Maradana Rd, Colombo 01000, Sri Lanka", "Maradana", 6.9290, 79.8655, "train_station", "transit_station"),
		curated("kandy-station", "Kandy Railway Station", "Station Rd, Kandy 20000, Sri Lanka", "Kandy", 7.2906, 80.6337, "train_station", "transit_station"),
		curated("galle-station", "Galle Railway Station", "Station Rd, Galle 80000, Sri Lanka", "Galle", 6.0330, 80.2143, "train_station", "transit_station"),
		curated("pettah-bus", "Central Bus Stand Pettah", "Olcott Mawatha, Colombo 01100, Sri Lanka", "Pettah", 6.9344, 79.8544, "bus_station", "transit_station"),
		curated("makumbura", "Makumbura Multimodal Centre", "Southern Expressway, Kottawa, Sri Lanka", "Kottawa", 6.8406, 79.9822, "bus_station", "transit_station"),
		curated("uoc", "University of Colombo", "94 Cumaratunga Munidasa Mawatha, Colombo 00300, Sri Lanka", "Colombo 03", 6.9022, 79.8607, "university"),
		curated("uom", "University of Moratuwa", "Bandaranayake Mawatha, Moratuwa 10400, Sri Lanka", "Moratuwa", 6.7951, 79.9009, "university"),
		curated("uop", "University of Peradeniya", "Peradeniya 20400, Sri Lanka", "Peradeniya", 7.2546, 80.5966, "university"),
		curated("nhsl", "National Hospital of Sri Lanka", "Regent St, Colombo 01000, Sri Lanka", "Colombo 10", 6.9177, 79.8687, "hospital"),
		curated("lrh", "Lady Ridgeway Hospital for Children", "Dr Danister De Silva Mawatha, Colombo 00800, Sri Lanka", "Borella", 6.9180, 79.8751, "hospital"),
		curated("galle-face", "Galle Face Green", "Galle Road, Colombo 00300, Sri Lanka", "Colombo 03", 6.9271, 79.8450, "park", "tourist_attraction"),
		curated("lotus-tower", "Colombo Lotus Tower", "D. R. Wijewardena Mawatha, Colombo 01000, Sri Lanka", "Colombo 10", 6.9271, 79.8585, "tourist_attraction"),
		curated("gangaramaya", "Gangaramaya Temple", "61 Sri Jinarathana Rd, Colombo 00200, Sri Lanka", "Colombo 02", 6.9166, 79.8563, "place_of_worship", "tourist_attraction"),
		curated("kelaniya", "Kelaniya Raja Maha Vihara", "Kelaniya 11600, Sri Lanka", "Kelaniya", 6.9531, 79.9189, "place_of_worship"),
		curated("tooth-relic", "Temple of the Sacred Tooth Relic", "Sri Dalada Veediya, Kandy 20000, Sri Lanka", "Kandy", 7.2936, 80.6413, "place_of_worship", "tourist_attraction"),
		curated("nallur", "Nallur Kandaswamy Kovil", "Point Pedro Rd, Jaffna 40000, Sri Lanka", "Jaffna", 9.6747, 80.0294, "place_of_worship"),
		curated("galle-fort", "Galle Fort", "Church St, Galle 80000, Sri Lanka", "Galle", 6.0269, 80.2170, "tourist_attraction"),
		curated("sigiriya", "Sigiriya Rock Fortress", "Sigiriya 21120, Sri Lanka", "Dambulla", 7.9570, 80.7603, "tourist_attraction"),
		curated("one-galle-face", "One Galle Face Mall", "1A Centre Rd, Colombo 00200, Sri Lanka", "Colombo 02", 6.9279, 79.8447, "shopping_mall"),
		curated("negombo-beach", "Negombo Beach", "Porutota Rd, Negombo 11500, Sri Lanka", "Negombo", 7.2253, 79.8407, "natural_feature", "tourist_attraction"),
	}
}
