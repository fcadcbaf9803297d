package zone

import (
	"testing"

	"deephole/internal/timetoken"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestOrderedAliases(t *testing.T) {
	z := Zone{Name: "어비스", Aliases: []string{"심연", "Abyss", "어비스"}}
	require.Equal(t, []string{"Abyss", "어비스", "심연"}, z.OrderedAliases())
	// the table itself is untouched
	require.Equal(t, []string{"심연", "Abyss", "어비스"}, z.Aliases)

	// length is counted in runes, the spaced variant is the longest
	require.Equal(t, []string{"구름 황야", "구름황야", "황야"}, Default[0].OrderedAliases())
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{text: "구름황야 심층 구멍", expected: "구름황야", ok: true},
		{text: "얼음 협곡 01:00", expected: "얼음협곡", ok: true},
		{text: "협곡", expected: "얼음협곡", ok: true},
		{text: "Abyss gate", expected: "어비스", ok: true},
		{text: "abyss gate", ok: false},
		{text: "심층 구멍 알림", ok: false},
		{text: "", ok: false},
	}

	for _, test := range testCases {
		z, ok := Default.Match(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if test.ok {
			require.Equal(t, test.expected, z.Name, test.text)
		}
	}
}

func TestMatchPrefersTableOrder(t *testing.T) {
	// "황야" of the first zone would also be found inside the longer name,
	// the first zone in table order with any alias present wins.
	z, ok := Default.Match("어비스 옆 구름황야")
	require.True(t, ok)
	require.Equal(t, "구름황야", z.Name)

	table := Table{
		{Name: "협곡 전체", Aliases: []string{"얼음협곡 전체"}},
		{Name: "얼음협곡", Aliases: []string{"얼음협곡", "협곡"}},
	}
	z, ok = table.Match("얼음협곡 전체 01:00")
	require.True(t, ok)
	require.Equal(t, "협곡 전체", z.Name)
}

func TestMatchDecomposedText(t *testing.T) {
	z, ok := Default.Match(norm.NFD.String("구름황야"))
	require.True(t, ok)
	require.Equal(t, "구름황야", z.Name)
}

func TestResult(t *testing.T) {
	r := Result{}
	require.True(t, r.Set("구름황야", timetoken.Value{Minutes: 1}))
	require.False(t, r.Set("구름황야", timetoken.Value{Minutes: 2}))
	require.Equal(t, timetoken.Value{Minutes: 1}, r["구름황야"])

	r.Fill(Result{
		"구름황야": timetoken.Value{Minutes: 9},
		"어비스":  timetoken.Value{Seconds: 5},
	})
	require.Equal(t, timetoken.Value{Minutes: 1}, r["구름황야"])
	require.Equal(t, timetoken.Value{Seconds: 5}, r["어비스"])

	missing := r.Missing(Default)
	require.Len(t, missing, 1)
	require.Equal(t, "얼음협곡", missing[0].Name)
	require.False(t, r.Complete(Default))

	r.Set("얼음협곡", timetoken.Value{})
	require.True(t, r.Complete(Default))
}

func TestMatchAll(t *testing.T) {
	matched := Default.MatchAll("어비스 01:00 얼음협곡 02:00 협곡")
	require.Len(t, matched, 2)
	require.Equal(t, "얼음협곡", matched[0].Name)
	require.Equal(t, "어비스", matched[1].Name)

	require.Empty(t, Default.MatchAll("nothing here"))
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"구름황야", "얼음협곡", "어비스"}, Default.Names())
}
