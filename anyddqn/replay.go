package anyddqn

import (
	"errors"
	"math/rand"
)

// ErrBufferUnderflow is returned when a replay buffer is
// asked for samples it does not have.
var ErrBufferUnderflow = errors.New("replay buffer underflow")

// A Transition is one step of interaction with an
// environment.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// A ReplayBuffer is a fixed-capacity circular store of
// transitions.
//
// Once the buffer is full, each new transition overwrites
// the oldest one.
type ReplayBuffer struct {
	stateSize int
	capacity  int

	states     []float64
	nextStates []float64
	actions    []int
	rewards    []float64
	dones      []bool

	pointer int
	full    bool

	rand *rand.Rand
}

// NewReplayBuffer creates an empty buffer for states of
// the given size.
//
// Samples are drawn using gen, or the math/rand global
// source if gen is nil.
func NewReplayBuffer(capacity, stateSize int, gen *rand.Rand) *ReplayBuffer {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	return &ReplayBuffer{
		stateSize:  stateSize,
		capacity:   capacity,
		states:     make([]float64, capacity*stateSize),
		nextStates: make([]float64, capacity*stateSize),
		actions:    make([]int, capacity),
		rewards:    make([]float64, capacity),
		dones:      make([]bool, capacity),
		rand:       gen,
	}
}

// Cap returns the maximum number of stored transitions.
func (r *ReplayBuffer) Cap() int {
	return r.capacity
}

// Len returns the number of valid transitions.
func (r *ReplayBuffer) Len() int {
	if r.full {
		return r.capacity
	}
	return r.pointer
}

// Full reports whether the buffer has wrapped around at
// least once.
func (r *ReplayBuffer) Full() bool {
	return r.full
}

// Store writes a transition to the buffer.
//
// The transition's state vectors are copied.
func (r *ReplayBuffer) Store(t Transition) {
	if len(t.State) != r.stateSize || len(t.NextState) != r.stateSize {
		panic("state size mismatch")
	}
	idx := r.pointer
	copy(r.states[idx*r.stateSize:], t.State)
	copy(r.nextStates[idx*r.stateSize:], t.NextState)
	r.actions[idx] = t.Action
	r.rewards[idx] = t.Reward
	r.dones[idx] = t.Done

	r.pointer++
	if r.pointer == r.capacity {
		r.pointer = 0
		r.full = true
	}
}

// At returns the transition in slot idx.
//
// Slots are physical: after a wrap-around, slot 0 holds
// the most recent overwrite rather than the oldest entry.
func (r *ReplayBuffer) At(idx int) Transition {
	if idx < 0 || idx >= r.Len() {
		panic("index out of range")
	}
	start, end := idx*r.stateSize, (idx+1)*r.stateSize
	return Transition{
		State:     append([]float64{}, r.states[start:end]...),
		Action:    r.actions[idx],
		Reward:    r.rewards[idx],
		NextState: append([]float64{}, r.nextStates[start:end]...),
		Done:      r.dones[idx],
	}
}

// Sample draws n transitions uniformly at random, with
// replacement, from the valid part of the buffer.
func (r *ReplayBuffer) Sample(n int) ([]Transition, error) {
	size := r.Len()
	if size == 0 {
		return nil, ErrBufferUnderflow
	}
	res := make([]Transition, n)
	for i := range res {
		res[i] = r.At(r.intn(size))
	}
	return res, nil
}

func (r *ReplayBuffer) intn(n int) int {
	if r.rand != nil {
		return r.rand.Intn(n)
	}
	return rand.Intn(n)
}
