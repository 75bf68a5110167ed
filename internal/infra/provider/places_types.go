package provider

// Wire shapes for the Places API (New) text search.

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type rectangle struct {
	Low  latLng `json:"low"`
	High latLng `json:"high"`
}

type locationRestriction struct {
	Rectangle rectangle `json:"rectangle"`
}

type searchTextRequest struct {
	TextQuery           string              `json:"textQuery"`
	MaxResultCount      int                 `json:"maxResultCount"`
	RegionCode          string              `json:"regionCode"`
	LanguageCode        string              `json:"languageCode"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type localizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type placeResult struct {
	ID                    string         `json:"id"`
	DisplayName           *localizedText `json:"displayName,omitempty"`
	FormattedAddress      string         `json:"formattedAddress,omitempty"`
	ShortFormattedAddress string         `json:"shortFormattedAddress,omitempty"`
	Location              *latLng        `json:"location,omitempty"`
	Types                 []string       `json:"types,omitempty"`
}

type searchTextResponse struct {
	Places []placeResult `json:"places"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Geocoding API

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type geocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       string          `json:"status"` // OK, ZERO_RESULTS, OVER_QUERY_LIMIT, ...
	ErrorMessage string          `json:"error_message,omitempty"`
}
