package location

import "time"

const SearchResolvedEventName = "places.resolved"

// SearchResolved is published after every resolution that reached the tier
// chain. Cache hits are not published.
type SearchResolved struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Source     string    `json:"source"`
	Results    int       `json:"results"`
	Degraded   bool      `json:"degraded"`
	ResolvedAt time.Time `json:"resolved_at"`
}

func (e SearchResolved) GetName() string         { return SearchResolvedEventName }
func (e SearchResolved) GetDateTime() time.Time  { return e.ResolvedAt }
func (e SearchResolved) GetPayload() interface{} { return e }
func (e SearchResolved) GetID() string           { return e.ID }
