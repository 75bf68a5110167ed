package location

import "github.com/DioGolang/GoPlaces/internal/domain/entity"

const SourceCache = "cache"

// Resolution is the detailed outcome of a resolve call.
type Resolution struct {
	Query  string
	Places []entity.Place
	// Source is the tier that produced Places, or SourceCache.
	// Empty when the query was blank and nothing ran.
	Source string
	// Degraded is set when at least one provider tier failed instead of
	// answering, so an empty result may not be a genuine zero match.
	Degraded bool
}

func (r Resolution) FromCache() bool { return r.Source == SourceCache }

// Output

type PlaceOutput struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	FormattedAddress string             `json:"formatted_address"`
	Coordinates      entity.Coordinates `json:"coordinates"`
	Types            []string           `json:"types"`
	Vicinity         string             `json:"vicinity,omitempty"`
}

type ResolveOutput struct {
	Query     string        `json:"query"`
	Source    string        `json:"source,omitempty"`
	FromCache bool          `json:"from_cache"`
	Degraded  bool          `json:"degraded"`
	Places    []PlaceOutput `json:"places"`
}

func NewPlaceOutput(p entity.Place) PlaceOutput {
	types := p.Types()
	if types == nil {
		types = []string{}
	}
	return PlaceOutput{
		ID:               p.ID(),
		Name:             p.Name(),
		FormattedAddress: p.FormattedAddress(),
		Coordinates:      p.Coordinates(),
		Types:            types,
		Vicinity:         p.Vicinity(),
	}
}

func NewResolveOutput(r Resolution) ResolveOutput {
	out := ResolveOutput{
		Query:     r.Query,
		Source:    r.Source,
		FromCache: r.FromCache(),
		Degraded:  r.Degraded,
		Places:    make([]PlaceOutput, len(r.Places)),
	}
	for i, p := range r.Places {
		out.Places[i] = NewPlaceOutput(p)
	}
	return out
}
