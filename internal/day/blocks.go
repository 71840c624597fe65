// Package day holds the in-memory blocks of the selected diary day.
package day

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/slots"
)

// Field names one editable column of a block.
type Field string

const (
	FieldPlan        Field = "p"
	FieldActual      Field = "a"
	FieldProject     Field = "pr"
	FieldEnergy      Field = "e"
	FieldDistraction Field = "d"
)

// ParseField accepts both the short export keys and the long names.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "plan", "planned":
		return FieldPlan, nil
	case "a", "actual":
		return FieldActual, nil
	case "pr", "project":
		return FieldProject, nil
	case "e", "energy":
		return FieldEnergy, nil
	case "d", "distraction":
		return FieldDistraction, nil
	default:
		return "", fmt.Errorf("unknown field %q (want plan|actual|project|energy|distraction)", s)
	}
}

// BlockStore maps slot labels to blocks for one day.
// It is not safe for concurrent use; the controller serialises access.
type BlockStore struct {
	blocks models.Snapshot
}

// NewBlockStore returns an empty store.
func NewBlockStore() *BlockStore {
	return &BlockStore{blocks: make(models.Snapshot)}
}

// NewFilledBlockStore returns a store with a default block in every slot.
func NewFilledBlockStore() *BlockStore {
	s := NewBlockStore()
	for _, label := range slots.All() {
		s.blocks[label] = models.NewBlock()
	}
	return s
}

// FromSnapshot copies snap into a new store.
func FromSnapshot(snap models.Snapshot) *BlockStore {
	s := NewBlockStore()
	for k, v := range snap {
		s.blocks[k] = v
	}
	return s
}

// Block returns the block at slot, or a default block if none is recorded.
func (s *BlockStore) Block(slot string) models.Block {
	if b, ok := s.blocks[slot]; ok {
		return b
	}
	return models.NewBlock()
}

// Get returns the block at slot and whether it exists.
func (s *BlockStore) Get(slot string) (models.Block, bool) {
	b, ok := s.blocks[slot]
	return b, ok
}

// Set replaces the block at slot after validating both.
func (s *BlockStore) Set(slot string, b models.Block) error {
	if err := slots.Validate(slot); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	s.blocks[slot] = b
	return nil
}

// Update edits a single field of the block at slot, creating it if needed.
func (s *BlockStore) Update(slot string, field Field, value string) error {
	b := s.Block(slot)
	switch field {
	case FieldPlan:
		b.Plan = value
	case FieldActual:
		b.Actual = value
	case FieldProject:
		b.Project = strings.TrimSpace(value)
	case FieldDistraction:
		b.Distraction = value
	case FieldEnergy:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid energy %q: %w", value, err)
		}
		b.Energy = n
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return s.Set(slot, b)
}

// Snapshot returns a deep copy of the store's blocks.
func (s *BlockStore) Snapshot() models.Snapshot {
	return s.blocks.Clone()
}

// Slots returns the labels that hold a block, in chronological order.
func (s *BlockStore) Slots() []string {
	out := make([]string, 0, len(s.blocks))
	for k := range s.blocks {
		out = append(out, k)
	}
	slots.Sort(out)
	return out
}

func (s *BlockStore) Len() int { return len(s.blocks) }

// Entries flattens the store into rows for date, in slot order.
func (s *BlockStore) Entries(date string) []models.TimeEntry {
	labels := s.Slots()
	out := make([]models.TimeEntry, 0, len(labels))
	for _, l := range labels {
		out = append(out, models.TimeEntry{Date: date, Slot: l, Block: s.blocks[l]})
	}
	return out
}
