package neural

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LSTM is a stacked single-step LSTM with a linear softmax head.
// Gate rows are ordered input, forget, cell, output.
type LSTM struct {
	inputs  int
	hidden  int
	layers  int
	actions int

	wih  []*mat.Dense // per layer: 4H x in
	whh  []*mat.Dense // per layer: 4H x H
	bias [][]float64  // per layer: 4H (input and recurrent biases folded)

	head     *mat.Dense // actions x H
	headBias []float64
}

// NewLSTM creates a randomly initialized network. Weights are uniform in
// [-k, k] with k = scale / sqrt(hidden).
func NewLSTM(inputs, hidden, layers, actions int, scale float64, rng *rand.Rand) *LSTM {
	k := scale / math.Sqrt(float64(hidden))
	uniform := func(n int) []float64 {
		d := make([]float64, n)
		for i := range d {
			d[i] = (rng.Float64()*2 - 1) * k
		}
		return d
	}

	l := &LSTM{
		inputs:  inputs,
		hidden:  hidden,
		layers:  layers,
		actions: actions,
	}
	for i := 0; i < layers; i++ {
		in := inputs
		if i > 0 {
			in = hidden
		}
		l.wih = append(l.wih, mat.NewDense(4*hidden, in, uniform(4*hidden*in)))
		l.whh = append(l.whh, mat.NewDense(4*hidden, hidden, uniform(4*hidden*hidden)))
		l.bias = append(l.bias, uniform(4*hidden))
	}
	l.head = mat.NewDense(actions, hidden, uniform(actions*hidden))
	l.headBias = uniform(actions)
	return l
}

// FeatureWidth implements Policy.
func (l *LSTM) FeatureWidth() int { return l.inputs }

// StateWidth implements Policy.
func (l *LSTM) StateWidth() int { return l.layers * l.hidden }

// Actions implements Policy.
func (l *LSTM) Actions() int { return l.actions }

// Forward runs one step for the whole batch.
func (l *LSTM) Forward(b Batch) (Output, error) {
	n, err := checkBatch(b, l.inputs, l.StateWidth())
	if err != nil {
		return Output{}, fmt.Errorf("lstm: %w", err)
	}
	if n == 0 {
		return Output{}, fmt.Errorf("lstm: empty batch")
	}

	H := l.hidden
	out := Output{
		Probs:  mat.NewDense(n, l.actions, nil),
		Hidden: mat.NewDense(n, l.StateWidth(), nil),
		Cell:   mat.NewDense(n, l.StateWidth(), nil),
	}

	var x mat.Matrix = b.Features
	var gates, rec mat.Dense
	for layer := 0; layer < l.layers; layer++ {
		lo, hi := layer*H, (layer+1)*H
		hPrev := b.Hidden.Slice(0, n, lo, hi)

		gates.Reset()
		rec.Reset()
		gates.Mul(x, l.wih[layer].T())
		rec.Mul(hPrev, l.whh[layer].T())
		gates.Add(&gates, &rec)

		for r := 0; r < n; r++ {
			g := gates.RawRowView(r)
			floats.Add(g, l.bias[layer])

			cPrev := b.Cell.RawRowView(r)[lo:hi]
			hNew := out.Hidden.RawRowView(r)[lo:hi]
			cNew := out.Cell.RawRowView(r)[lo:hi]
			for j := 0; j < H; j++ {
				ig := sigmoid(g[j])
				fg := sigmoid(g[H+j])
				gg := math.Tanh(g[2*H+j])
				og := sigmoid(g[3*H+j])
				cNew[j] = fg*cPrev[j] + ig*gg
				hNew[j] = og * math.Tanh(cNew[j])
			}
		}
		x = out.Hidden.Slice(0, n, lo, hi)
	}

	out.Probs.Mul(x, l.head.T())
	for r := 0; r < n; r++ {
		row := out.Probs.RawRowView(r)
		floats.Add(row, l.headBias)
		softmax(row)
	}
	return out, nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// softmax normalizes logits in place.
func softmax(row []float64) {
	lse := floats.LogSumExp(row)
	for i, v := range row {
		row[i] = math.Exp(v - lse)
	}
}
