package neural

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FFNN is a two-layer feedforward policy with a softmax head. It keeps no
// recurrent state: hidden and cell rows are returned unchanged so it can stand
// in wherever the LSTM is configured.
type FFNN struct {
	inputs     int
	hidden     int
	actions    int
	stateWidth int

	w1 *mat.Dense // hidden x inputs
	b1 []float64
	w2 *mat.Dense // actions x hidden
	b2 []float64
}

// NewFFNN creates a randomly initialized network. stateWidth is the recurrent
// width the caller batches, passed through untouched.
func NewFFNN(inputs, hidden, actions, stateWidth int, rng *rand.Rand) *FFNN {
	// Xavier initialization
	normal := func(n int, scale float64) []float64 {
		d := make([]float64, n)
		for i := range d {
			d[i] = rng.NormFloat64() * scale
		}
		return d
	}

	return &FFNN{
		inputs:     inputs,
		hidden:     hidden,
		actions:    actions,
		stateWidth: stateWidth,
		w1:         mat.NewDense(hidden, inputs, normal(hidden*inputs, math.Sqrt(2.0/float64(inputs)))),
		b1:         make([]float64, hidden),
		w2:         mat.NewDense(actions, hidden, normal(actions*hidden, math.Sqrt(2.0/float64(hidden)))),
		b2:         make([]float64, actions),
	}
}

// FeatureWidth implements Policy.
func (nn *FFNN) FeatureWidth() int { return nn.inputs }

// StateWidth implements Policy.
func (nn *FFNN) StateWidth() int { return nn.stateWidth }

// Actions implements Policy.
func (nn *FFNN) Actions() int { return nn.actions }

// Forward computes action probabilities for the whole batch.
func (nn *FFNN) Forward(b Batch) (Output, error) {
	n, err := checkBatch(b, nn.inputs, nn.stateWidth)
	if err != nil {
		return Output{}, fmt.Errorf("ffnn: %w", err)
	}
	if n == 0 {
		return Output{}, fmt.Errorf("ffnn: empty batch")
	}

	var hidden mat.Dense
	hidden.Mul(b.Features, nn.w1.T())
	for r := 0; r < n; r++ {
		row := hidden.RawRowView(r)
		floats.Add(row, nn.b1)
		for j, v := range row {
			row[j] = fastTanh(v)
		}
	}

	probs := mat.NewDense(n, nn.actions, nil)
	probs.Mul(&hidden, nn.w2.T())
	for r := 0; r < n; r++ {
		row := probs.RawRowView(r)
		floats.Add(row, nn.b2)
		softmax(row)
	}

	return Output{
		Probs:  probs,
		Hidden: mat.DenseCopyOf(b.Hidden),
		Cell:   mat.DenseCopyOf(b.Cell),
	}, nil
}

// fastTanh is a rational approximation of tanh. It reaches +-1 at +-3 and
// is clamped beyond, so the output is continuous.
func fastTanh(x float64) float64 {
	if x > 3 {
		return 1
	}
	if x < -3 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
