package locator

import (
	"context"
	"strings"
	"unicode/utf8"

	"deephole/internal/timetoken"
	"deephole/internal/zone"
	"deephole/lib/textutil"
)

const DefaultProximityWindow = 80

// ProximityStrategy looks for a time token within Window runes on either
// side of the first occurrence of a zone alias in the flattened page text.
// It survives any markup change but can pick up an unrelated nearby number.
type ProximityStrategy struct {
	Window int
}

func (ProximityStrategy) Name() string {
	return "proximity"
}

func (s ProximityStrategy) Locate(_ context.Context, page Page, table zone.Table) zone.Result {
	return ScanText(page.Text, table, s.Window)
}

// ScanText runs the proximity scan over arbitrary text, a window <= 0 uses
// DefaultProximityWindow.
func ScanText(text string, table zone.Table, window int) zone.Result {
	if window <= 0 {
		window = DefaultProximityWindow
	}
	text = textutil.NFC(text)

	result := zone.Result{}
	for _, z := range table {
		for _, alias := range z.OrderedAliases() {
			v, ok := nearestTimeAround(text, alias, window)
			if ok {
				result.Set(z.Name, v)
				break
			}
		}
	}
	return result
}

func nearestTimeAround(text, anchor string, window int) (timetoken.Value, bool) {
	idx := strings.Index(text, anchor)
	if idx == -1 {
		return timetoken.Value{}, false
	}

	runes := []rune(text)
	anchorStart := utf8.RuneCountInString(text[:idx])
	anchorEnd := anchorStart + utf8.RuneCountInString(anchor)

	start := max(0, anchorStart-window)
	end := min(len(runes), anchorEnd+window)
	return timetoken.Parse(string(runes[start:end]))
}
