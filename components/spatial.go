package components

// Cell is an integer grid coordinate or unit offset.
type Cell struct {
	X, Y int
}

// TrailCapacity is the number of vacated cells an agent remembers.
const TrailCapacity = 10

// Trail is a fixed-capacity ring of recently vacated cells.
// Pushing into a full trail evicts the oldest entry.
type Trail struct {
	cells [TrailCapacity]Cell
	head  int // index of the oldest entry
	count int
}

// Push appends a cell, evicting the oldest when full.
func (t *Trail) Push(c Cell) {
	if t.count < TrailCapacity {
		t.cells[(t.head+t.count)%TrailCapacity] = c
		t.count++
		return
	}
	t.cells[t.head] = c
	t.head = (t.head + 1) % TrailCapacity
}

// Contains reports whether c is in the trail.
func (t *Trail) Contains(c Cell) bool {
	for i := 0; i < t.count; i++ {
		if t.cells[(t.head+i)%TrailCapacity] == c {
			return true
		}
	}
	return false
}

// Len returns the number of stored cells.
func (t *Trail) Len() int {
	return t.count
}

// Cells returns the stored cells, oldest first.
func (t *Trail) Cells() []Cell {
	out := make([]Cell, t.count)
	for i := 0; i < t.count; i++ {
		out[i] = t.cells[(t.head+i)%TrailCapacity]
	}
	return out
}
