// Package zone holds the static table of tracked zones and the alias matcher.
package zone

import (
	"slices"
	"strings"

	"deephole/lib/textutil"
)

// Zone is a named region whose deep hole countdown is tracked.
type Zone struct {
	Name    string
	Aliases []string
}

// OrderedAliases returns the aliases longest first, aliases of equal length
// keep their table order. Length is counted in runes.
func (z Zone) OrderedAliases() []string {
	aliases := slices.Clone(z.Aliases)
	slices.SortStableFunc(aliases, func(a, b string) int {
		return len([]rune(b)) - len([]rune(a))
	})
	return aliases
}

// Table is the ordered set of zones. Order matters both for matching
// priority and for the order of entries in the snapshot.
type Table []Zone

// Default is the zone table of the mabinogi mobile deep hole tracker.
var Default = Table{
	{Name: "구름황야", Aliases: []string{"구름황야", "구름 황야", "황야"}},
	{Name: "얼음협곡", Aliases: []string{"얼음협곡", "얼음 협곡", "협곡"}},
	{Name: "어비스", Aliases: []string{"어비스", "심연", "Abyss"}},
}

// Match returns the first zone, in table order, that has an alias contained
// in text. Aliases are tried longest first within a zone. Matching is a
// literal, case sensitive substring search over NFC text.
func (t Table) Match(text string) (Zone, bool) {
	text = textutil.NFC(text)
	for _, z := range t {
		for _, alias := range z.OrderedAliases() {
			if strings.Contains(text, alias) {
				return z, true
			}
		}
	}
	return Zone{}, false
}

// MatchAll returns every zone of the table with an alias contained in text,
// in table order.
func (t Table) MatchAll(text string) []Zone {
	text = textutil.NFC(text)
	var matched []Zone
	for _, z := range t {
		for _, alias := range z.Aliases {
			if strings.Contains(text, alias) {
				matched = append(matched, z)
				break
			}
		}
	}
	return matched
}

// Names returns the zone names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, z := range t {
		names[i] = z.Name
	}
	return names
}
