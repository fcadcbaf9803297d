package locator

import (
	"context"
	"strconv"
	"strings"

	"deephole/internal/timetoken"
	"deephole/internal/zone"
)

// DigitStrategy reconstructs countdowns out of rendered digit widgets. It
// does nothing for statically fetched pages.
type DigitStrategy struct{}

func (DigitStrategy) Name() string {
	return "digits"
}

func (DigitStrategy) Locate(_ context.Context, page Page, table zone.Table) zone.Result {
	result := zone.Result{}
	if !page.Rendered {
		return result
	}
	for _, w := range page.Widgets {
		z, ok := table.Match(w.Label)
		if !ok {
			continue
		}
		v, ok := w.Value()
		if !ok {
			continue
		}
		result.Set(z.Name, v)
	}
	return result
}

// Resolve returns the displayed digit. The numeric state is authoritative,
// the visible text is only used when the state is missing or not a digit.
func (d Digit) Resolve() (byte, bool) {
	if c, ok := singleDigit(d.State); ok {
		return c, true
	}
	return singleDigit(d.Text)
}

func singleDigit(s string) (byte, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// style properties come back as "5" or sometimes "5.0"
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || n > 9 || n != float64(int(n)) {
		return 0, false
	}
	return byte('0' + int(n)), true
}

// Value concatenates the digits of each group and interprets the groups
// through timetoken.FromDigitGroups.
func (w Widget) Value() (timetoken.Value, bool) {
	groups := make([]string, 0, len(w.Groups))
	for _, group := range w.Groups {
		var digits strings.Builder
		for _, d := range group {
			c, ok := d.Resolve()
			if !ok {
				return timetoken.Value{}, false
			}
			digits.WriteByte(c)
		}
		groups = append(groups, digits.String())
	}
	return timetoken.FromDigitGroups(groups)
}
