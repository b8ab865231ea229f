package neural

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/systems"
)

// Slot is one agent's seat in a decision batch.
type Slot struct {
	Features []float64
	Memory   *components.Memory
	Action   systems.Action // written by Decide
}

// Decide stacks every slot into one batch, calls the policy once and samples
// an action per slot from the returned distribution. Updated recurrent state
// is written back to each slot's Memory. An empty batch makes no call.
func Decide(p Policy, slots []Slot, rng *rand.Rand) error {
	n := len(slots)
	if n == 0 {
		return nil
	}

	fw, sw := p.FeatureWidth(), p.StateWidth()
	batch := Batch{
		Features: mat.NewDense(n, fw, nil),
		Hidden:   mat.NewDense(n, sw, nil),
		Cell:     mat.NewDense(n, sw, nil),
	}
	for i := range slots {
		s := &slots[i]
		if len(s.Features) != fw || len(s.Memory.Hidden) != sw || len(s.Memory.Cell) != sw {
			return fmt.Errorf("slot %d: features %d state %d/%d, want %d and %d",
				i, len(s.Features), len(s.Memory.Hidden), len(s.Memory.Cell), fw, sw)
		}
		batch.Features.SetRow(i, s.Features)
		batch.Hidden.SetRow(i, s.Memory.Hidden)
		batch.Cell.SetRow(i, s.Memory.Cell)
	}

	out, err := p.Forward(batch)
	if err != nil {
		return fmt.Errorf("policy forward: %w", err)
	}
	if r, c := out.Probs.Dims(); r != n || c != p.Actions() {
		return fmt.Errorf("policy returned %dx%d probabilities, want %dx%d", r, c, n, p.Actions())
	}

	for i := range slots {
		s := &slots[i]
		s.Action = Sample(out.Probs.RawRowView(i), rng)
		mat.Row(s.Memory.Hidden, i, out.Hidden)
		mat.Row(s.Memory.Cell, i, out.Cell)
	}
	return nil
}

// Sample draws an action index from a probability row.
func Sample(probs []float64, rng *rand.Rand) systems.Action {
	return systems.Action(distuv.NewCategorical(probs, rng).Rand())
}
