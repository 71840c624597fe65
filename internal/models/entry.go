package models

import "time"

// TimeEntry is one persisted block row, keyed by (Date, Slot).
type TimeEntry struct {
	Date  string
	Slot  string
	Block Block
}

// Reflection is the free-text note for a day. There is at most one per date.
type Reflection struct {
	Date    string
	Content string
}

// Template is a named, reusable day plan.
type Template struct {
	ID        string
	Name      string
	Data      Snapshot
	CreatedAt time.Time
}

// EntriesFromSnapshot flattens a day's blocks into rows for the given date.
func EntriesFromSnapshot(date string, snap Snapshot) []TimeEntry {
	entries := make([]TimeEntry, 0, len(snap))
	for slot, b := range snap {
		entries = append(entries, TimeEntry{Date: date, Slot: slot, Block: b})
	}
	return entries
}

// SnapshotFromEntries rebuilds a day's blocks from stored rows.
func SnapshotFromEntries(entries []TimeEntry) Snapshot {
	snap := make(Snapshot, len(entries))
	for _, e := range entries {
		snap[e.Slot] = e.Block
	}
	return snap
}
