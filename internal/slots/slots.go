// Package slots is the fixed catalog of half-hour slot labels in a diary day.
package slots

import (
	"fmt"
	"sort"

	"github.com/julianstephens/timediary/internal/constants"
)

var (
	labels = build()
	index  = func() map[string]int {
		m := make(map[string]int, len(labels))
		for i, l := range labels {
			m[l] = i
		}
		return m
	}()
)

func build() []string {
	out := make([]string, 0, constants.SlotCount)
	for i := 0; i < constants.SlotCount; i++ {
		mins := constants.FirstSlotHour*60 + i*constants.SlotMinutes
		out = append(out, fmt.Sprintf("%02d:%02d", mins/60, mins%60))
	}
	return out
}

// All returns the 36 slot labels from 06:00 to 23:30 in chronological order.
// The returned slice is a fresh copy.
func All() []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Index returns the position of label in the day, or -1 if it is not a slot.
func Index(label string) int {
	if i, ok := index[label]; ok {
		return i
	}
	return -1
}

// IsValid reports whether label is one of the catalog's slots.
func IsValid(label string) bool {
	_, ok := index[label]
	return ok
}

// Validate returns an error naming label if it is not a slot.
func Validate(label string) error {
	if !IsValid(label) {
		return fmt.Errorf("invalid time slot %q: expected HH:00 or HH:30 between %s and %s", label, labels[0], labels[len(labels)-1])
	}
	return nil
}

// Sort orders labels chronologically in place. Unknown labels sort last, lexically.
func Sort(ls []string) {
	sort.SliceStable(ls, func(i, j int) bool {
		a, b := Index(ls[i]), Index(ls[j])
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		default:
			return ls[i] < ls[j]
		}
	})
}
