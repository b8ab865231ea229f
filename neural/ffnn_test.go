package neural

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestFFNNForward(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	nn := NewFFNN(12, 6, 4, 10, rng)

	b := randomBatch(rng, 5, 12, 10)
	out, err := nn.Forward(b)
	if err != nil {
		t.Fatal(err)
	}

	if r, c := out.Probs.Dims(); r != 5 || c != 4 {
		t.Fatalf("probs %dx%d, want 5x4", r, c)
	}
	for i := 0; i < 5; i++ {
		row := out.Probs.RawRowView(i)
		if s := floats.Sum(row); math.Abs(s-1) > 1e-9 {
			t.Errorf("row %d sums to %f", i, s)
		}
	}
	if !mat.Equal(out.Hidden, b.Hidden) || !mat.Equal(out.Cell, b.Cell) {
		t.Error("recurrent state should pass through unchanged")
	}

	out.Hidden.Set(0, 0, 99)
	if b.Hidden.At(0, 0) == 99 {
		t.Error("output state aliases the input batch")
	}
}

func TestFFNNForwardDeterministic(t *testing.T) {
	nn := NewFFNN(8, 4, 4, 3, rand.New(rand.NewPCG(7, 0)))
	b := randomBatch(rand.New(rand.NewPCG(1, 0)), 3, 8, 3)

	a, err := nn.Forward(b)
	if err != nil {
		t.Fatal(err)
	}
	c, err := nn.Forward(b)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a.Probs, c.Probs) {
		t.Error("same inputs produced different probabilities")
	}
}

func TestFFNNRejectsBadBatch(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 0))
	nn := NewFFNN(8, 4, 4, 3, rng)

	if _, err := nn.Forward(randomBatch(rng, 2, 9, 3)); err == nil {
		t.Error("expected an error for the wrong feature width")
	}
	if _, err := nn.Forward(randomBatch(rng, 2, 8, 4)); err == nil {
		t.Error("expected an error for the wrong state width")
	}
}

func TestFastTanh(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{3, 1},
		{-3, -1},
		{5, 1},
		{-5, -1},
	}
	for _, tt := range tests {
		if got := fastTanh(tt.in); got != tt.want {
			t.Errorf("fastTanh(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := fastTanh(1); math.Abs(got-math.Tanh(1)) > 0.03 {
		t.Errorf("fastTanh(1) = %v, too far from %v", got, math.Tanh(1))
	}
	for x := -3.0; x <= 3.0; x += 0.25 {
		if got := fastTanh(x); got < -1 || got > 1 {
			t.Errorf("fastTanh(%v) = %v, outside [-1, 1]", x, got)
		}
	}
}
