package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"deephole/internal/timetoken"
	"deephole/internal/zone"
	"deephole/lib/chrono"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func value(text string) *timetoken.Value {
	v, ok := timetoken.Parse(text)
	if !ok {
		panic(text)
	}
	return &v
}

func remaining(s Snapshot) []*string {
	out := make([]*string, len(s.DeepHole))
	for i, e := range s.DeepHole {
		if e.Remaining != nil {
			text := e.Remaining.String()
			out[i] = &text
		}
	}
	return out
}

func strp(s string) *string {
	return &s
}

var now = time.Date(2024, time.May, 2, 14, 5, 9, 0, chrono.KST())

func sameDay() Snapshot {
	return Snapshot{
		Date:        "2024-05-02",
		LastUpdated: "2024-05-02T09:00:00+09:00",
		DeepHole: []Entry{
			{Zone: "구름황야", Remaining: value("01:00:00"), Source: "mabimobi"},
			{Zone: "얼음협곡", Remaining: nil, Source: "mabimobi"},
			{Zone: "어비스", Remaining: value("00:10:00"), Source: "mabimobi"},
		},
	}
}

func TestMergeFreshWins(t *testing.T) {
	fresh := zone.Result{"구름황야": *value("00:30:00")}
	merged := Merge(now, fresh, sameDay(), zone.Default, "mabimobi")

	require.Equal(t, "2024-05-02", merged.Date)
	require.Equal(t, "2024-05-02T14:05:09+09:00", merged.LastUpdated)
	if diff := cmp.Diff([]*string{strp("00:30:00"), nil, strp("00:10:00")}, remaining(merged)); diff != "" {
		t.Fatal(diff)
	}
}

func TestMergeIdempotent(t *testing.T) {
	prev := sameDay()
	merged := Merge(now, zone.Result{}, prev, zone.Default, "mabimobi")

	require.Equal(t, prev.Date, merged.Date)
	require.NotEqual(t, prev.LastUpdated, merged.LastUpdated)
	if diff := cmp.Diff(prev.DeepHole, merged.DeepHole); diff != "" {
		t.Fatal(diff)
	}

	again := Merge(now.Add(time.Minute), zone.Result{}, merged, zone.Default, "mabimobi")
	require.Equal(t, merged.DeepHole, again.DeepHole)
}

func TestMergeDateRollover(t *testing.T) {
	yesterday := sameDay()
	yesterday.Date = "2024-05-01"

	merged := Merge(now, zone.Result{}, yesterday, zone.Default, "mabimobi")
	require.Equal(t, []*string{nil, nil, nil}, remaining(merged))

	merged = Merge(now, zone.Result{"어비스": *value("00:00:05")}, yesterday, zone.Default, "mabimobi")
	if diff := cmp.Diff([]*string{nil, nil, strp("00:00:05")}, remaining(merged)); diff != "" {
		t.Fatal(diff)
	}
}

func TestMergeKeepsEveryZone(t *testing.T) {
	prev := Snapshot{
		Date: "2024-05-02",
		DeepHole: []Entry{
			{Zone: "unknown", Remaining: value("00:01:00")},
			{Zone: "어비스", Remaining: value("00:02:00"), Source: ""},
		},
	}
	merged := Merge(now, zone.Result{}, prev, zone.Default, "mabimobi")
	require.Equal(t, zone.Default.Names(), []string{
		merged.DeepHole[0].Zone,
		merged.DeepHole[1].Zone,
		merged.DeepHole[2].Zone,
	})
	require.Equal(t, "00:02:00", merged.DeepHole[2].Remaining.String())
	require.Equal(t, "mabimobi", merged.DeepHole[2].Source)
}

func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "today.json")

	snap := Merge(now, zone.Result{"구름황야": *value("01:02:03")}, Snapshot{}, zone.Default, "mabimobi")
	require.NoError(t, Write(path, snap))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"date": "2024-05-02",
		"last_updated": "2024-05-02T14:05:09+09:00",
		"deep_hole": [
			{"zone": "구름황야", "remaining": "01:02:03", "source": "mabimobi"},
			{"zone": "얼음협곡", "remaining": null, "source": "mabimobi"},
			{"zone": "어비스", "remaining": null, "source": "mabimobi"}
		]
	}`, string(raw))
	// korean is written as is
	require.Contains(t, string(raw), "구름황야")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, snap, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	snap, err := Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	require.Equal(t, Snapshot{}, snap)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"date": "2024-05-02", "deep_hole": [`), 0o644))
	snap, err = Load(corrupt)
	require.Error(t, err)
	require.Equal(t, Snapshot{}, snap)

	badValue := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badValue, []byte(`{"date": "2024-05-02", "deep_hole": [{"zone": "어비스", "remaining": "soon"}]}`), 0o644))
	snap, err = Load(badValue)
	require.Error(t, err)
	require.Equal(t, Snapshot{}, snap)
}

func TestWriteFailure(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "no", "such", "dir", "today.json"), Snapshot{})
	require.Error(t, err)
}
