package slots

import (
	"testing"

	"github.com/julianstephens/timediary/internal/constants"
)

func TestAll(t *testing.T) {
	all := All()
	if len(all) != constants.SlotCount {
		t.Fatalf("len(All()) = %d, want %d", len(all), constants.SlotCount)
	}
	if all[0] != "06:00" {
		t.Errorf("first slot = %s, want 06:00", all[0])
	}
	if all[1] != "06:30" {
		t.Errorf("second slot = %s, want 06:30", all[1])
	}
	if all[len(all)-1] != "23:30" {
		t.Errorf("last slot = %s, want 23:30", all[len(all)-1])
	}

	seen := make(map[string]bool)
	for i, s := range all {
		if seen[s] {
			t.Errorf("duplicate slot %s", s)
		}
		seen[s] = true
		if Index(s) != i {
			t.Errorf("Index(%s) = %d, want %d", s, Index(s), i)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0] = "mutated"
	if All()[0] != "06:00" {
		t.Error("All() must not expose the catalog's backing array")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"06:00", true},
		{"12:30", true},
		{"23:30", true},
		{"05:30", false},
		{"06:15", false},
		{"24:00", false},
		{"6:00", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := IsValid(tt.label); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.label, got, tt.want)
			}
			if err := Validate(tt.label); (err == nil) != tt.want {
				t.Errorf("Validate(%q) error = %v", tt.label, err)
			}
		})
	}
}

func TestSort(t *testing.T) {
	ls := []string{"10:00", "bogus", "06:30", "23:30", "06:00"}
	Sort(ls)
	want := []string{"06:00", "06:30", "10:00", "23:30", "bogus"}
	for i := range want {
		if ls[i] != want[i] {
			t.Fatalf("Sort() = %v, want %v", ls, want)
		}
	}
}
