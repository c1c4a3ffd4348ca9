package anyddqn

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/serializer"
)

// Errors produced when exchanging network parameters.
var (
	ErrShapeMismatch   = errors.New("parameter shapes do not match")
	ErrWeightsNotFound = errors.New("weights file not found")
	ErrWeightsCorrupt  = errors.New("weights file is corrupt")
)

// A WeightsError describes a failure to save or load a
// set of network parameters.
type WeightsError struct {
	Op   string
	Path string
	Err  error
}

func (w *WeightsError) Error() string {
	return w.Op + " " + w.Path + ": " + w.Err.Error()
}

func (w *WeightsError) Unwrap() error {
	return w.Err
}

// Weights is a copy of every parameter tensor in a
// network, flattened, in parameter order.
type Weights [][]float64

// A QNet approximates a Q-function, mapping a state to a
// value estimate for each action.
//
// It is trained by regression with Adam.
type QNet struct {
	Creator anyvec.Creator
	Net     anynet.Net

	NumInputs  int
	NumActions int

	// LearningRate is the Adam step size.
	LearningRate float64

	// Transformer holds the optimizer state.
	Transformer anysgd.Transformer
}

// NewQNet creates a randomly initialized network with
// ReLU hidden layers and a linear output layer.
func NewQNet(c anyvec.Creator, numInputs, numActions int, hidden []int,
	learningRate float64) *QNet {
	var net anynet.Net
	inCount := numInputs
	for _, size := range hidden {
		net = append(net, anynet.NewFC(c, inCount, size), anynet.ReLU)
		inCount = size
	}
	net = append(net, anynet.NewFC(c, inCount, numActions))
	return &QNet{
		Creator:      c,
		Net:          net,
		NumInputs:    numInputs,
		NumActions:   numActions,
		LearningRate: learningRate,
		Transformer:  &anysgd.Adam{},
	}
}

// Parameters returns the trainable variables.
func (q *QNet) Parameters() []*anydiff.Var {
	return anynet.AllParameters(q.Net)
}

// Predict computes the action values for a batch of
// states.
func (q *QNet) Predict(states [][]float64) [][]float64 {
	if len(states) == 0 {
		return nil
	}
	in := anydiff.NewConst(q.pack(states, q.NumInputs))
	out := q.Net.Apply(in, len(states)).Output()
	return q.unpack(out, len(states))
}

// Fit takes one optimizer step towards the targets,
// using the mean squared error over the whole batch.
//
// It returns the loss before the step.
func (q *QNet) Fit(states, targets [][]float64) float64 {
	if len(states) != len(targets) {
		panic("batch size mismatch")
	}
	c := q.Creator
	n := len(states)

	in := anydiff.NewConst(q.pack(states, q.NumInputs))
	desired := anydiff.NewConst(q.pack(targets, q.NumActions))
	out := q.Net.Apply(in, n)

	diff := anydiff.Sub(out, desired)
	cost := anydiff.Scale(anydiff.Sum(anydiff.Square(diff)),
		c.MakeNumeric(1/float64(n*q.NumActions)))
	loss := c.Float64Slice(cost.Output().Data())[0]

	grad := anydiff.NewGrad(q.Parameters()...)
	upstream := c.MakeVector(1)
	upstream.AddScalar(c.MakeNumeric(1))
	cost.Propagate(upstream, grad)

	if q.Transformer != nil {
		grad = q.Transformer.Transform(grad)
	}
	grad.Scale(c.MakeNumeric(-q.LearningRate))
	grad.AddToVars()

	return loss
}

// Weights copies the current parameters.
func (q *QNet) Weights() Weights {
	return paramWeights(q.Parameters())
}

// SetWeights replaces the current parameters.
//
// The number of tensors and the size of every tensor must
// match exactly.
func (q *QNet) SetWeights(w Weights) error {
	params := q.Parameters()
	if len(w) != len(params) {
		return fmt.Errorf("%w: expected %d tensors but got %d", ErrShapeMismatch,
			len(params), len(w))
	}
	for i, p := range params {
		if len(w[i]) != p.Vector.Len() {
			return fmt.Errorf("%w: tensor %d should have %d entries but has %d",
				ErrShapeMismatch, i, p.Vector.Len(), len(w[i]))
		}
	}
	for i, p := range params {
		p.Vector.SetData(q.Creator.MakeNumericList(w[i]))
	}
	return nil
}

// Track moves every parameter towards the corresponding
// parameter of src:
//
//     θ ← rate*θ_src + (1-rate)*θ
//
// A rate of 1 copies src exactly.
func (q *QNet) Track(src *QNet, rate float64) error {
	dst := q.Parameters()
	from := src.Parameters()
	if len(dst) != len(from) {
		return ErrShapeMismatch
	}
	for i, p := range dst {
		if p.Vector.Len() != from[i].Vector.Len() {
			return ErrShapeMismatch
		}
	}
	c := q.Creator
	for i, p := range dst {
		scaled := from[i].Vector.Copy()
		scaled.Scale(c.MakeNumeric(rate))
		p.Vector.Scale(c.MakeNumeric(1 - rate))
		p.Vector.Add(scaled)
	}
	return nil
}

// Save writes the network to a file.
//
// Missing parent directories are created.
func (q *QNet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WeightsError{Op: "save", Path: path, Err: err}
	}
	if err := serializer.SaveAny(path, q.Net); err != nil {
		return &WeightsError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Load reads parameters from a file produced by Save.
//
// The stored network must have the same shape as q.
// The returned error wraps ErrWeightsNotFound,
// ErrWeightsCorrupt, or ErrShapeMismatch when one of
// those is the cause.
func (q *QNet) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			err = ErrWeightsNotFound
		}
		return &WeightsError{Op: "load", Path: path, Err: err}
	}
	var net anynet.Net
	if err := serializer.LoadAny(path, &net); err != nil {
		return &WeightsError{
			Op:   "load",
			Path: path,
			Err:  fmt.Errorf("%w: %v", ErrWeightsCorrupt, err),
		}
	}
	if err := q.SetWeights(paramWeights(anynet.AllParameters(net))); err != nil {
		return &WeightsError{Op: "load", Path: path, Err: err}
	}
	return nil
}

func (q *QNet) pack(rows [][]float64, cols int) anyvec.Vector {
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			panic(fmt.Sprintf("row length should be %d but got %d", cols, len(row)))
		}
		data = append(data, row...)
	}
	return q.Creator.MakeVectorData(q.Creator.MakeNumericList(data))
}

func (q *QNet) unpack(v anyvec.Vector, rows int) [][]float64 {
	data := q.Creator.Float64Slice(v.Data())
	cols := len(data) / rows
	res := make([][]float64, rows)
	for i := range res {
		res[i] = append([]float64{}, data[i*cols:(i+1)*cols]...)
	}
	return res
}

func paramWeights(params []*anydiff.Var) Weights {
	res := make(Weights, len(params))
	for i, p := range params {
		c := p.Vector.Creator()
		res[i] = append([]float64{}, c.Float64Slice(p.Vector.Data())...)
	}
	return res
}
