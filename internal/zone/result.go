package zone

import (
	"deephole/internal/timetoken"
)

// Result maps a zone name to the value extracted for it. A zone missing from
// the map was not found, which is different from a zero remaining time.
type Result map[string]timetoken.Value

// Set records v for the zone unless a value is already present, it reports
// whether v was kept.
func (r Result) Set(name string, v timetoken.Value) bool {
	if _, exists := r[name]; exists {
		return false
	}
	r[name] = v
	return true
}

// Fill copies every value of other for zones absent in r, the first
// non-absent value always wins.
func (r Result) Fill(other Result) {
	for name, v := range other {
		r.Set(name, v)
	}
}

// Missing lists the zones of the table that have no value, in table order.
func (r Result) Missing(table Table) []Zone {
	var missing []Zone
	for _, z := range table {
		if _, ok := r[z.Name]; !ok {
			missing = append(missing, z)
		}
	}
	return missing
}

// Complete reports whether every zone of the table has a value.
func (r Result) Complete(table Table) bool {
	return len(r.Missing(table)) == 0
}
