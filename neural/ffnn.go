// Package neural provides inherited feedforward brains that map gridworld
// observations to action ids. Brains are never trained: a newborn copies
// its parent's weights and mutates them.
package neural

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FFNN is a two-layer feedforward network with a tanh hidden layer and
// linear outputs, one per action.
type FFNN struct {
	W1 *mat.Dense    // hidden x inputs
	B1 *mat.VecDense // hidden
	W2 *mat.Dense    // outputs x hidden
	B2 *mat.VecDense // outputs

	// Scratch; Forward is not safe for concurrent use.
	hidden *mat.VecDense
	out    *mat.VecDense
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(inputs, hidden, outputs int, src rand.Source) *FFNN {
	nn := newZeroFFNN(inputs, hidden, outputs)

	// Xavier initialization
	fill(nn.W1.RawMatrix().Data, distuv.Normal{Mu: 0, Sigma: math.Sqrt(2.0 / float64(inputs)), Src: src})
	fill(nn.W2.RawMatrix().Data, distuv.Normal{Mu: 0, Sigma: math.Sqrt(2.0 / float64(hidden)), Src: src})

	return nn
}

func newZeroFFNN(inputs, hidden, outputs int) *FFNN {
	return &FFNN{
		W1:     mat.NewDense(hidden, inputs, nil),
		B1:     mat.NewVecDense(hidden, nil),
		W2:     mat.NewDense(outputs, hidden, nil),
		B2:     mat.NewVecDense(outputs, nil),
		hidden: mat.NewVecDense(hidden, nil),
		out:    mat.NewVecDense(outputs, nil),
	}
}

func fill(dst []float64, d distuv.Normal) {
	for i := range dst {
		dst[i] = d.Rand()
	}
}

// Dims returns the input, hidden and output sizes.
func (nn *FFNN) Dims() (inputs, hidden, outputs int) {
	hidden, inputs = nn.W1.Dims()
	outputs, _ = nn.W2.Dims()
	return inputs, hidden, outputs
}

// Forward computes the output logits. The result aliases internal scratch
// and is overwritten by the next call.
func (nn *FFNN) Forward(inputs []float64) []float64 {
	x := mat.NewVecDense(len(inputs), inputs)

	nn.hidden.MulVec(nn.W1, x)
	nn.hidden.AddVec(nn.hidden, nn.B1)
	h := nn.hidden.RawVector().Data
	for i, v := range h {
		h[i] = math.Tanh(v)
	}

	nn.out.MulVec(nn.W2, nn.hidden)
	nn.out.AddVec(nn.out, nn.B2)
	return nn.out.RawVector().Data
}

// Act returns the index of the largest output. Ties go to the lowest index.
func (nn *FFNN) Act(inputs []float64) int {
	return floats.MaxIdx(nn.Forward(inputs))
}

// MutateSparse applies sparse per-weight mutation for stable lineages.
// rate: probability each weight mutates (e.g., 0.05)
// sigma: standard deviation of normal perturbation (e.g., 0.08)
// bigRate: probability a mutation is large (e.g., 0.01)
// bigSigma: sigma for large mutations (e.g., 0.4)
// Biases mutate at half the rate. Returns the average absolute delta of
// the applied mutations.
func (nn *FFNN) MutateSparse(src rand.Source, rate, sigma, bigRate, bigSigma float64) float64 {
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	small := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	big := distuv.Normal{Mu: 0, Sigma: bigSigma, Src: src}

	var totalDelta float64
	var count int

	mutate := func(w []float64, p float64) {
		for i := range w {
			if u.Rand() >= p {
				continue
			}
			var delta float64
			if u.Rand() < bigRate {
				delta = big.Rand()
			} else {
				delta = small.Rand()
			}
			w[i] += delta
			totalDelta += math.Abs(delta)
			count++
		}
	}

	mutate(nn.W1.RawMatrix().Data, rate)
	mutate(nn.B1.RawVector().Data, rate*0.5)
	mutate(nn.W2.RawMatrix().Data, rate)
	mutate(nn.B2.RawVector().Data, rate*0.5)

	if count == 0 {
		return 0
	}
	return totalDelta / float64(count)
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	in, hid, out := nn.Dims()
	clone := newZeroFFNN(in, hid, out)
	clone.W1.Copy(nn.W1)
	clone.B1.CopyVec(nn.B1)
	clone.W2.Copy(nn.W2)
	clone.B2.CopyVec(nn.B2)
	return clone
}

// BrainWeights holds flattened network weights for serialization.
type BrainWeights struct {
	Inputs  int       `json:"inputs"`
	Hidden  int       `json:"hidden"`
	Outputs int       `json:"outputs"`
	W1      []float64 `json:"w1"` // [Hidden * Inputs]
	B1      []float64 `json:"b1"` // [Hidden]
	W2      []float64 `json:"w2"` // [Outputs * Hidden]
	B2      []float64 `json:"b2"` // [Outputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (nn *FFNN) MarshalWeights() BrainWeights {
	in, hid, out := nn.Dims()
	return BrainWeights{
		Inputs:  in,
		Hidden:  hid,
		Outputs: out,
		W1:      append([]float64(nil), nn.W1.RawMatrix().Data...),
		B1:      append([]float64(nil), nn.B1.RawVector().Data...),
		W2:      append([]float64(nil), nn.W2.RawMatrix().Data...),
		B2:      append([]float64(nil), nn.B2.RawVector().Data...),
	}
}

// FromWeights rebuilds a network from flattened weights.
func FromWeights(bw BrainWeights) (*FFNN, error) {
	if bw.Inputs <= 0 || bw.Hidden <= 0 || bw.Outputs <= 0 {
		return nil, fmt.Errorf("invalid brain shape %dx%dx%d", bw.Inputs, bw.Hidden, bw.Outputs)
	}
	if len(bw.W1) != bw.Hidden*bw.Inputs || len(bw.B1) != bw.Hidden ||
		len(bw.W2) != bw.Outputs*bw.Hidden || len(bw.B2) != bw.Outputs {
		return nil, fmt.Errorf("brain weights do not match shape %dx%dx%d", bw.Inputs, bw.Hidden, bw.Outputs)
	}

	nn := newZeroFFNN(bw.Inputs, bw.Hidden, bw.Outputs)
	copy(nn.W1.RawMatrix().Data, bw.W1)
	copy(nn.B1.RawVector().Data, bw.B1)
	copy(nn.W2.RawMatrix().Data, bw.W2)
	copy(nn.B2.RawVector().Data, bw.B2)
	return nn, nil
}
