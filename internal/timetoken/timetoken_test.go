package timetoken

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{text: "01:02:03", expected: "01:02:03", ok: true},
		{text: "1:02:03", expected: "01:02:03", ok: true},
		{text: "남은 시간 23:59:59", expected: "23:59:59", ok: true},
		{text: "100:00:01", expected: "100:00:01", ok: true},
		// two components are always minutes and seconds
		{text: "12:34", expected: "00:12:34", ok: true},
		{text: "9:05", expected: "00:09:05", ok: true},
		{text: "0:00", expected: "00:00:00", ok: true},
		{text: "1시간 2분 3초", expected: "01:02:03", ok: true},
		{text: "다음 출현까지 45분", expected: "00:45:00", ok: true},
		{text: "30초 남음", expected: "00:00:30", ok: true},
		{text: "2시간", expected: "02:00:00", ok: true},
		{text: "3 시간 5 분", expected: "03:05:00", ok: true},
		// colon tokens win over korean durations
		{text: "1시간 남음 (00:59:59)", expected: "00:59:59", ok: true},
		// an out of range duration is skipped, not the end of the search
		{text: "90분 지남, 다음까지 3분 20초", expected: "00:03:20", ok: true},
		{text: "75분 또는 61초", ok: false},
		{text: "75분", ok: false},
		{text: "25:61", ok: false},
		{text: "12:345", ok: false},
		{text: "1:2:3", ok: false},
		{text: "남은 시간", ok: false},
		{text: "", ok: false},
	}

	for _, test := range testCases {
		v, ok := Parse(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if test.ok {
			require.Equal(t, test.expected, v.String(), test.text)
		}
	}
}

func TestAmbiguousTwoComponents(t *testing.T) {
	v, ok := Parse("12:34")
	require.True(t, ok)
	require.Equal(t, Value{Minutes: 12, Seconds: 34}, v)
	require.NotEqual(t, "12:34:00", v.String())
}

func TestRoundTrip(t *testing.T) {
	rndm := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		expected := Value{
			Hours:   rndm.Intn(200),
			Minutes: rndm.Intn(60),
			Seconds: rndm.Intn(60),
		}
		parsed, ok := Parse(expected.String())
		require.True(t, ok, expected.String())
		if diff := cmp.Diff(expected, parsed); diff != "" {
			t.Fatal(diff)
		}
		// normalizing twice changes nothing
		require.Equal(t, expected.String(), parsed.String())
	}
}

func TestFromDigitGroups(t *testing.T) {
	testCases := []struct {
		groups   []string
		expected string
		ok       bool
	}{
		{groups: []string{"01", "02", "03"}, expected: "01:02:03", ok: true},
		{groups: []string{"12", "34"}, expected: "00:12:34", ok: true},
		{groups: []string{"1", "5", "9"}, expected: "01:05:09", ok: true},
		{groups: []string{"01", "60", "00"}, ok: false},
		{groups: []string{"01", "0a"}, ok: false},
		{groups: []string{"01", ""}, ok: false},
		{groups: []string{"01"}, ok: false},
		{groups: []string{"1", "2", "3", "4"}, ok: false},
		{groups: nil, ok: false},
	}

	for _, test := range testCases {
		v, ok := FromDigitGroups(test.groups)
		require.Equal(t, test.ok, ok, test.groups)
		if test.ok {
			require.Equal(t, test.expected, v.String())
		}
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Remaining *Value `json:"remaining"`
	}

	out, err := json.Marshal(wrapper{Remaining: &Value{Hours: 1, Minutes: 2, Seconds: 3}})
	require.NoError(t, err)
	require.JSONEq(t, `{"remaining":"01:02:03"}`, string(out))

	out, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	require.JSONEq(t, `{"remaining":null}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"remaining":"00:12:34"}`), &w))
	require.Equal(t, &Value{Minutes: 12, Seconds: 34}, w.Remaining)

	w = wrapper{}
	require.NoError(t, json.Unmarshal([]byte(`{"remaining":null}`), &w))
	require.Nil(t, w.Remaining)

	require.Error(t, json.Unmarshal([]byte(`{"remaining":"soon"}`), &w))
}
