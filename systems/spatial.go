// Package systems provides ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridlife/components"
)

// Occupant is an agent entry in the spatial index with the data sensing needs.
// Copying color and energy in avoids component lookups in the hot path.
type Occupant struct {
	E      ecs.Entity
	Color  components.Color
	Energy float64
}

// SpatialIndex maps grid cells to the live agents standing on them.
// It is rebuilt once per tick and read by sensing.
type SpatialIndex struct {
	width  int
	height int
	cells  [][]Occupant // flat grid, row-major
}

// NewSpatialIndex creates an index covering a width x height grid.
func NewSpatialIndex(width, height int) *SpatialIndex {
	cells := make([][]Occupant, width*height)
	for i := range cells {
		cells[i] = make([]Occupant, 0, 2)
	}
	return &SpatialIndex{
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Clear removes all occupants.
func (s *SpatialIndex) Clear() {
	for i := range s.cells {
		s.cells[i] = s.cells[i][:0]
	}
}

// Insert adds an occupant at (x, y). Out-of-bounds positions are ignored.
func (s *SpatialIndex) Insert(o Occupant, x, y int) {
	idx := s.cellIndex(x, y)
	if idx >= 0 {
		s.cells[idx] = append(s.cells[idx], o)
	}
}

// At returns the occupants of (x, y). The slice is owned by the index.
func (s *SpatialIndex) At(x, y int) []Occupant {
	idx := s.cellIndex(x, y)
	if idx < 0 {
		return nil
	}
	return s.cells[idx]
}

func (s *SpatialIndex) cellIndex(x, y int) int {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return -1
	}
	return y*s.width + x
}

// FoodSet is the set of cells holding food. Presence only, no quantity.
type FoodSet struct {
	width  int
	height int
	cells  []bool
	count  int
}

// NewFoodSet creates an empty food set for a width x height grid.
func NewFoodSet(width, height int) *FoodSet {
	return &FoodSet{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// Has reports whether (x, y) holds food.
func (f *FoodSet) Has(x, y int) bool {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return false
	}
	return f.cells[y*f.width+x]
}

// Add places food at (x, y). Returns false if the cell already had food or is out of bounds.
func (f *FoodSet) Add(x, y int) bool {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return false
	}
	idx := y*f.width + x
	if f.cells[idx] {
		return false
	}
	f.cells[idx] = true
	f.count++
	return true
}

// Remove takes the food at (x, y). Returns false if there was none.
func (f *FoodSet) Remove(x, y int) bool {
	if !f.Has(x, y) {
		return false
	}
	f.cells[y*f.width+x] = false
	f.count--
	return true
}

// Clear removes all food.
func (f *FoodSet) Clear() {
	clear(f.cells)
	f.count = 0
}

// Len returns the number of food cells.
func (f *FoodSet) Len() int {
	return f.count
}

// Cells returns every food cell in row-major order.
func (f *FoodSet) Cells() []components.Cell {
	out := make([]components.Cell, 0, f.count)
	for i, ok := range f.cells {
		if ok {
			out = append(out, components.Cell{X: i % f.width, Y: i / f.width})
		}
	}
	return out
}

// ClaimSet tracks cells claimed by agents within one tick.
type ClaimSet struct {
	width int
	cells []bool
}

// NewClaimSet creates an empty claim set for a grid of the given width and height.
func NewClaimSet(width, height int) *ClaimSet {
	return &ClaimSet{width: width, cells: make([]bool, width*height)}
}

// Claim marks c as taken.
func (c *ClaimSet) Claim(cell components.Cell) {
	c.cells[cell.Y*c.width+cell.X] = true
}

// Taken reports whether cell has been claimed.
func (c *ClaimSet) Taken(cell components.Cell) bool {
	return c.cells[cell.Y*c.width+cell.X]
}

// Reset clears all claims.
func (c *ClaimSet) Reset() {
	clear(c.cells)
}
