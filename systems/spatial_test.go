package systems

import (
	"testing"

	"github.com/pthm-cable/gridlife/components"
)

func TestSpatialIndexClear(t *testing.T) {
	idx := NewSpatialIndex(4, 3)
	idx.Insert(Occupant{Energy: 1}, 2, 1)
	idx.Insert(Occupant{Energy: 2}, 2, 1)
	idx.Insert(Occupant{Energy: 3}, 9, 9) // out of bounds, ignored

	if got := len(idx.At(2, 1)); got != 2 {
		t.Fatalf("At(2,1) = %d occupants, want 2", got)
	}
	if idx.At(9, 9) != nil {
		t.Error("out-of-bounds lookup should be nil")
	}

	idx.Clear()
	if got := len(idx.At(2, 1)); got != 0 {
		t.Errorf("after Clear: %d occupants", got)
	}
}

func TestFoodSet(t *testing.T) {
	fs := NewFoodSet(4, 3)

	if !fs.Add(1, 2) || fs.Add(1, 2) {
		t.Error("Add should succeed once")
	}
	if fs.Add(-1, 0) || fs.Add(4, 0) {
		t.Error("out-of-bounds Add succeeded")
	}
	fs.Add(3, 0)
	if fs.Len() != 2 {
		t.Fatalf("Len = %d, want 2", fs.Len())
	}

	cells := fs.Cells()
	want := []components.Cell{{X: 3, Y: 0}, {X: 1, Y: 2}}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("Cells()[%d] = %v, want %v", i, cells[i], want[i])
		}
	}

	if !fs.Remove(1, 2) || fs.Remove(1, 2) {
		t.Error("Remove should succeed once")
	}
	fs.Clear()
	if fs.Len() != 0 || fs.Has(3, 0) {
		t.Error("Clear left food behind")
	}
}
