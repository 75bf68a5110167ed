package location

import "strings"

type expansion struct {
	abbreviation string
	expanded     string
}

// Rules are tried in order; only the first match is applied.
var defaultExpansions = []expansion{
	{"uni", "university"},
	{"temple", "temple sri lanka"},
	{"kovil", "kovil sri lanka"},
	{"hosp", "hospital"},
	{"rly stn", "railway station"},
	{"bus stand", "bus station"},
	{"int'l", "international"},
	{"clg", "college"},
	{"mw", "mawatha"},
}

type Normalizer struct {
	rules []expansion
}

func NewNormalizer() *Normalizer {
	return &Normalizer{rules: defaultExpansions}
}

// Normalize expands the first local abbreviation found in the query. The
// result is lower-cased when a rule applies; otherwise the query is returned
// untouched. Rules whose expansion is already present are skipped so an
// expanded query is never expanded twice.
func (n *Normalizer) Normalize(query string) string {
	lowered := strings.ToLower(query)
	for _, rule := range n.rules {
		if strings.Contains(lowered, rule.expanded) {
			continue
		}
		if strings.Contains(lowered, rule.abbreviation) {
			return strings.Replace(lowered, rule.abbreviation, rule.expanded, 1)
		}
	}
	return query
}
