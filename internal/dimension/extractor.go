// Package dimension derives city, state and theater-chain identity from show
// records.
package dimension

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"boxoffice/internal/core"
)

// Unknown is the bucket for records with no usable city or state.
const Unknown = "Unknown"

// Strategy resolves a theater chain from a venue string. The second return
// value is false when the show must be excluded from chain aggregation
// entirely (not bucketed under "Unknown").
type Strategy interface {
	Chain(venue string) (string, bool)
}

// ListMatch resolves a chain by case-insensitive substring match against an
// ordered list of known chain names. First match wins; unmatched venues are
// excluded.
type ListMatch struct {
	chains []string
	lower  []string
}

// NewListMatch builds a list-match strategy. Order is significant.
func NewListMatch(chains []string) *ListMatch {
	lower := make([]string, len(chains))
	for i, c := range chains {
		lower[i] = strings.ToLower(c)
	}
	return &ListMatch{chains: chains, lower: lower}
}

func (m *ListMatch) Chain(venue string) (string, bool) {
	v := strings.ToLower(venue)
	for i, c := range m.lower {
		if strings.Contains(v, c) {
			return m.chains[i], true
		}
	}
	return "", false
}

// FirstToken resolves a chain as the venue's first whitespace-delimited token
// with trailing commas and colons stripped. Every show buckets somewhere under
// this strategy.
type FirstToken struct{}

func (FirstToken) Chain(venue string) (string, bool) {
	fields := strings.Fields(venue)
	if len(fields) == 0 {
		return Unknown, true
	}
	return strings.TrimRight(fields[0], ",:"), true
}

// City returns the record's city, defaulting to Unknown.
func City(rec core.ShowRecord) string {
	if rec.City == "" {
		return Unknown
	}
	return rec.City
}

// State returns the record's state, defaulting to Unknown.
func State(rec core.ShowRecord) string {
	if rec.State == "" {
		return Unknown
	}
	return rec.State
}

var stateTitle = cases.Title(language.English)

// NormalizeState turns slug-style state names from the venue feed into display
// form: "uttar-pradesh" becomes "Uttar Pradesh".
func NormalizeState(s string) string {
	if s == "" {
		return Unknown
	}
	return stateTitle.String(strings.ReplaceAll(s, "-", " "))
}

// ShowOccupancy is the transient per-show occupancy used for the fast-filling
// and housefull thresholds; it is never stored per show.
func ShowOccupancy(rec core.ShowRecord) float64 {
	return core.Occupancy(rec.Sold, rec.TotalSeats)
}
