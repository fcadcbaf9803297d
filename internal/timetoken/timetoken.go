// Package timetoken turns the countdown text found on tracker pages into a
// canonical HH:MM:SS value.
package timetoken

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Value is a remaining duration. Minutes and Seconds are always in [0, 59],
// Hours is unbounded.
type Value struct {
	Hours   int
	Minutes int
	Seconds int
}

func (v Value) valid() bool {
	return v.Hours >= 0 &&
		v.Minutes >= 0 && v.Minutes < 60 &&
		v.Seconds >= 0 && v.Seconds < 60
}

// String renders the zero padded HH:MM:SS form.
func (v Value) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", v.Hours, v.Minutes, v.Seconds)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	parsed, ok := Parse(text)
	if !ok {
		return fmt.Errorf("timetoken: %q is not a time value", text)
	}
	*v = parsed
	return nil
}

var (
	// the first alternative is H:MM:SS, the second is MM:SS. a two
	// component token never means hours and minutes.
	colonRegex = regexp.MustCompile(`\b(?:(\d+):([0-5]\d):([0-5]\d)|([0-5]?\d):([0-5]\d))\b`)

	koreanRegex = regexp.MustCompile(`(?:(\d+)\s*시간)?\s*(?:(\d+)\s*분)?\s*(?:(\d+)\s*초)?`)
)

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// Parse finds the first time token in text. Colon delimited tokens take
// priority over korean durations ("1시간 2분 3초") anywhere in the text.
// The second return is false when nothing recognizable is present.
func Parse(text string) (Value, bool) {
	if v, ok := parseColon(text); ok {
		return v, true
	}
	return parseKorean(text)
}

func parseColon(text string) (Value, bool) {
	groups := colonRegex.FindStringSubmatch(text)
	if groups == nil {
		return Value{}, false
	}

	var v Value
	if groups[1] != "" {
		v = Value{
			Hours:   atoi(groups[1]),
			Minutes: atoi(groups[2]),
			Seconds: atoi(groups[3]),
		}
	} else {
		v = Value{
			Minutes: atoi(groups[4]),
			Seconds: atoi(groups[5]),
		}
	}
	return v, v.valid()
}

func parseKorean(text string) (Value, bool) {
	for _, groups := range koreanRegex.FindAllStringSubmatch(text, -1) {
		if groups[1] == "" && groups[2] == "" && groups[3] == "" {
			continue
		}

		var v Value
		if groups[1] != "" {
			v.Hours = atoi(groups[1])
		}
		if groups[2] != "" {
			v.Minutes = atoi(groups[2])
		}
		if groups[3] != "" {
			v.Seconds = atoi(groups[3])
		}
		// an out of range duration does not hide a later valid one
		if !v.valid() {
			continue
		}
		return v, true
	}
	return Value{}, false
}

// FromDigitGroups builds a value out of the digit groups of a rendered
// countdown, in display order. Three groups are hours, minutes, seconds and
// two groups are minutes, seconds. Any other shape is rejected.
func FromDigitGroups(groups []string) (Value, bool) {
	numbers := make([]int, len(groups))
	for i, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			return Value{}, false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return Value{}, false
			}
		}
		numbers[i] = atoi(g)
	}

	var v Value
	switch len(numbers) {
	case 3:
		v = Value{Hours: numbers[0], Minutes: numbers[1], Seconds: numbers[2]}
	case 2:
		v = Value{Minutes: numbers[0], Seconds: numbers[1]}
	default:
		return Value{}, false
	}
	return v, v.valid()
}
