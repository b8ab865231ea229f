package neural

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Batch is one stacked policy call: a row per agent.
type Batch struct {
	Features *mat.Dense // n x feature width
	Hidden   *mat.Dense // n x state width, layer-major
	Cell     *mat.Dense // n x state width
}

// Output is the policy result in the same row order as the Batch.
type Output struct {
	Probs  *mat.Dense // n x actions, rows sum to 1
	Hidden *mat.Dense
	Cell   *mat.Dense
}

// Policy maps features and recurrent state to action probabilities.
// Forward is called at most once per tick with every live agent.
type Policy interface {
	Forward(b Batch) (Output, error)
	FeatureWidth() int
	StateWidth() int
	Actions() int
}

// checkBatch validates batch shapes against the widths agreed at construction.
func checkBatch(b Batch, featureWidth, stateWidth int) (int, error) {
	if b.Features == nil || b.Hidden == nil || b.Cell == nil {
		return 0, fmt.Errorf("policy batch has nil matrices")
	}
	n, fw := b.Features.Dims()
	if fw != featureWidth {
		return 0, fmt.Errorf("feature width %d, want %d", fw, featureWidth)
	}
	for name, m := range map[string]*mat.Dense{"hidden": b.Hidden, "cell": b.Cell} {
		r, c := m.Dims()
		if r != n || c != stateWidth {
			return 0, fmt.Errorf("%s state is %dx%d, want %dx%d", name, r, c, n, stateWidth)
		}
	}
	return n, nil
}
