// Package snapshot reads, merges and writes the today.json state file.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"deephole/internal/timetoken"
	"deephole/internal/zone"
)

const (
	DateLayout        = time.DateOnly
	LastUpdatedLayout = "2006-01-02T15:04:05-07:00"
)

type Entry struct {
	Zone string `json:"zone"`
	// Remaining is nil when no run of the day has found a value.
	Remaining *timetoken.Value `json:"remaining"`
	Source    string           `json:"source"`
}

type Snapshot struct {
	Date        string  `json:"date"`
	LastUpdated string  `json:"last_updated"`
	DeepHole    []Entry `json:"deep_hole"`
}

func (s Snapshot) entry(name string) (Entry, bool) {
	for _, e := range s.DeepHole {
		if e.Zone == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Load reads a snapshot. A missing file is an empty snapshot and no error,
// an unreadable or corrupt file is an empty snapshot along with the reason
// so the caller may report it.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	err = json.Unmarshal(data, &snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Merge builds the snapshot of a run. Values of prev are only carried over
// for zones absent from fresh and only when prev is dated the same day as
// now; a snapshot from another day contributes nothing. Every zone of the
// table is present in table order.
func Merge(now time.Time, fresh zone.Result, prev Snapshot, table zone.Table, source string) Snapshot {
	today := now.Format(DateLayout)
	sameDay := prev.Date == today

	entries := make([]Entry, 0, len(table))
	for _, z := range table {
		entry := Entry{Zone: z.Name, Source: source}

		if v, ok := fresh[z.Name]; ok {
			entry.Remaining = &v
		} else if sameDay {
			if old, ok := prev.entry(z.Name); ok && old.Remaining != nil {
				carried := *old.Remaining
				entry.Remaining = &carried
				if old.Source != "" {
					entry.Source = old.Source
				}
			}
		}

		entries = append(entries, entry)
	}

	return Snapshot{
		Date:        today,
		LastUpdated: now.Format(LastUpdatedLayout),
		DeepHole:    entries,
	}
}

// Encode renders the snapshot the way it is written to disk.
func Encode(snap Snapshot) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(snap)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Write replaces the file at path with snap. The contents go to a temporary
// file in the same directory first, an interrupted run leaves the previous
// snapshot untouched.
func Write(path string, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	err = os.Chmod(tmpName, 0o644)
	if err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
