package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/timediary/internal/constants"
)

// Block is what the user recorded for one half-hour slot.
// The short JSON keys match the export format.
type Block struct {
	Plan        string `json:"p"`
	Actual      string `json:"a"`
	Project     string `json:"pr"`
	Energy      int    `json:"e"`
	Distraction string `json:"d"`
}

// NewBlock returns an empty block at the default energy level.
func NewBlock() Block {
	return Block{Energy: constants.DefaultEnergy}
}

// Validate checks the energy range. A zero energy is accepted and means "unset".
func (b Block) Validate() error {
	if b.Energy != 0 && (b.Energy < constants.MinEnergy || b.Energy > constants.MaxEnergy) {
		return fmt.Errorf("energy must be between %d and %d, got %d", constants.MinEnergy, constants.MaxEnergy, b.Energy)
	}
	return nil
}

// Normalize trims text fields and replaces an unset or out-of-range energy with the default.
func (b Block) Normalize() Block {
	b.Plan = strings.TrimSpace(b.Plan)
	b.Actual = strings.TrimSpace(b.Actual)
	b.Project = strings.TrimSpace(b.Project)
	b.Distraction = strings.TrimSpace(b.Distraction)
	if b.Energy < constants.MinEnergy || b.Energy > constants.MaxEnergy {
		b.Energy = constants.DefaultEnergy
	}
	return b
}

func (b Block) HasPlan() bool   { return b.Plan != "" }
func (b Block) HasActual() bool { return b.Actual != "" }

// IsEmpty reports whether neither a plan nor an actual was recorded.
func (b Block) IsEmpty() bool {
	return !b.HasPlan() && !b.HasActual()
}

// Unplanned reports whether something happened in a slot with no plan,
// the only case where a distraction reason applies.
func (b Block) Unplanned() bool {
	return b.HasActual() && !b.HasPlan()
}

// Snapshot maps slot labels to blocks for a single day.
type Snapshot map[string]Block

// Clone returns a copy that shares no storage with s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
