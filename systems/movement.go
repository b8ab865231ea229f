package systems

import (
	"fmt"

	"github.com/pthm-cable/gridlife/components"
)

// Action is a discrete move chosen by the policy.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight

	NumActions = 4
)

var actionOffsets = [NumActions]components.Cell{
	ActionUp:    {X: 0, Y: -1},
	ActionDown:  {X: 0, Y: 1},
	ActionLeft:  {X: -1, Y: 0},
	ActionRight: {X: 1, Y: 0},
}

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// DecodeAction returns the unit offset for an action.
// Panics on an out-of-range index: the policy contract guarantees valid actions.
func DecodeAction(a Action) components.Cell {
	if a < 0 || int(a) >= NumActions {
		panic(fmt.Sprintf("systems: invalid action index %d", int(a)))
	}
	return actionOffsets[a]
}

// TraceMap records the tick each cell was last vacated.
type TraceMap map[components.Cell]int

// Record marks c as vacated at tick.
func (t TraceMap) Record(c components.Cell, tick int) {
	t[c] = tick
}

// Prune drops entries at least length ticks old.
func (t TraceMap) Prune(tick, length int) {
	for c, at := range t {
		if tick-at >= length {
			delete(t, c)
		}
	}
}

// MoveResult reports what ApplyMove did.
type MoveResult struct {
	Moved bool
	From  components.Cell
	To    components.Cell
}

// ApplyMove resolves one agent's move against the cells claimed so far this tick.
// A move that is clamped in place or lands on a claimed cell becomes an idle step.
// The caller claims the resulting cell.
func ApplyMove(st *components.State, a Action, claimed *ClaimSet, knobs Knobs, width, height int, trace TraceMap, tick int) MoveResult {
	d := DecodeAction(a)
	from := st.Cell()
	to := components.Cell{
		X: clampInt(st.X+d.X, 0, width-1),
		Y: clampInt(st.Y+d.Y, 0, height-1),
	}

	if to == from || claimed.Taken(to) {
		st.Energy -= knobs.IdleCost
		return MoveResult{From: from, To: from}
	}

	trace.Record(from, tick)
	st.Visited.Push(from)
	st.LastMove = d
	st.X, st.Y = to.X, to.Y
	st.Energy -= knobs.MoveCost
	return MoveResult{Moved: true, From: from, To: to}
}
