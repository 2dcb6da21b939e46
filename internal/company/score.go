package company

import "strings"

// Score ranks record completeness for merge conflict resolution.
// Weights favor the fields the final dataset cares most about: a known
// careers page outweighs everything except the identity fields.
func (c Company) Score() int {
	score := 0
	if c.Name != "" {
		score += 2
	}
	if c.Website != "" {
		score += 2
	}
	if c.CareerPageURL != "" {
		score += 3
	}
	if c.CountryOfOrigin != "" && !strings.EqualFold(c.CountryOfOrigin, "unknown") {
		score++
	}
	if c.Source != "" && !strings.EqualFold(c.Source, "unknown") {
		score++
	}
	if len(c.Jobs) > 0 {
		score++
	}
	return score
}
