// Package anyddqn implements Double Deep Q-Networks with
// experience replay and a soft-updated target network.
package anyddqn

import (
	"errors"
	"math/rand"

	"github.com/anydqn/anydqn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/floats"
)

// An Agent learns action values with an online network
// and bootstraps its targets from a slowly tracking
// target network.
//
// The bootstrap uses the maximum of the target network's
// own estimates; action selection and evaluation are not
// split between the two networks.
type Agent struct {
	config     Config
	numActions int

	online *QNet
	target *QNet
	buffer *ReplayBuffer

	epsilon float64
	rand    *rand.Rand
}

// NewAgent creates an agent with freshly initialized
// networks and an empty replay buffer.
//
// The online and target networks are initialized
// independently.
// All randomness comes from gen, or from the math/rand
// global source if gen is nil.
func NewAgent(c anyvec.Creator, stateSize, numActions int, config Config,
	gen *rand.Rand) (agent *Agent, err error) {
	defer essentials.AddCtxTo("create agent", &err)
	if stateSize <= 0 || numActions <= 0 {
		return nil, errors.New("state size and action count must be positive")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.HiddenSizes = append([]int{}, config.HiddenSizes...)
	return &Agent{
		config:     config,
		numActions: numActions,
		online: NewQNet(c, stateSize, numActions, config.HiddenSizes,
			config.LearningRate),
		target: NewQNet(c, stateSize, numActions, config.HiddenSizes,
			config.LearningRate),
		buffer:  NewReplayBuffer(config.BufferSize, stateSize, gen),
		epsilon: config.Epsilon,
		rand:    gen,
	}, nil
}

// NewAgentForEnv is like NewAgent, but sizes the networks
// for env.
func NewAgentForEnv(c anyvec.Creator, env anydqn.SpaceEnv, config Config,
	gen *rand.Rand) (*Agent, error) {
	return NewAgent(c, env.ObsSize(), env.NumActions(), config, gen)
}

// Config returns the agent's hyperparameters.
func (a *Agent) Config() Config {
	res := a.config
	res.HiddenSizes = append([]int{}, res.HiddenSizes...)
	return res
}

// Online returns the network that is trained by gradient
// descent and used to act.
func (a *Agent) Online() *QNet {
	return a.online
}

// Target returns the network used for bootstrapping.
func (a *Agent) Target() *QNet {
	return a.target
}

// Buffer returns the agent's replay buffer.
func (a *Agent) Buffer() *ReplayBuffer {
	return a.buffer
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// ComputeAction picks an action epsilon-greedily.
func (a *Agent) ComputeAction(state []float64) int {
	if a.uniform() < a.epsilon {
		return a.intn(a.numActions)
	}
	return a.GreedyAction(state)
}

// GreedyAction picks the action with the highest online
// value estimate, ignoring epsilon.
// Ties go to the lowest action index.
func (a *Agent) GreedyAction(state []float64) int {
	values := a.online.Predict([][]float64{state})[0]
	return floats.MaxIdx(values)
}

// StoreEpisode adds a transition to the replay buffer.
func (a *Agent) StoreEpisode(state []float64, action int, reward float64,
	nextState []float64, done bool) {
	a.buffer.Store(Transition{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: nextState,
		Done:      done,
	})
}

// UpdateEpsilon decays the exploration rate, without
// going below the configured minimum.
func (a *Agent) UpdateEpsilon() {
	a.epsilon *= a.config.EpsilonDecay
	if a.epsilon < a.config.MinEpsilon {
		a.epsilon = a.config.MinEpsilon
	}
}

// Train performs one regression step of the online
// network on a batch sampled from the replay buffer.
//
// Only the value of the action that was taken in each
// transition is moved towards its Bellman target.
// It returns the loss before the step.
//
// If the buffer holds fewer than batchSize transitions,
// ErrBufferUnderflow is returned.
func (a *Agent) Train(batchSize int) (float64, error) {
	if batchSize <= 0 || a.buffer.Len() < batchSize {
		return 0, ErrBufferUnderflow
	}
	batch, err := a.buffer.Sample(batchSize)
	if err != nil {
		return 0, err
	}

	states := make([][]float64, batchSize)
	nextStates := make([][]float64, batchSize)
	rewards := make([]float64, batchSize)
	dones := make([]bool, batchSize)
	for i, t := range batch {
		states[i] = t.State
		nextStates[i] = t.NextState
		rewards[i] = t.Reward
		dones[i] = t.Done
	}

	targets := a.online.Predict(states)
	nextValues := a.target.Predict(nextStates)
	bootstrapped := BellmanTargets(a.config.Discount, rewards, dones, nextValues)
	for i, t := range batch {
		targets[i][t.Action] = bootstrapped[i]
	}

	return a.online.Fit(states, targets), nil
}

// BellmanTargets computes r + discount*max(nextValues)
// for each transition.
// Terminal transitions get their reward alone.
func BellmanTargets(discount float64, rewards []float64, dones []bool,
	nextValues [][]float64) []float64 {
	res := make([]float64, len(rewards))
	for i, r := range rewards {
		if dones[i] {
			res[i] = r
		} else {
			res[i] = r + discount*floats.Max(nextValues[i])
		}
	}
	return res
}

// UpdateQTargetNetwork softly moves the target network
// towards the online network.
func (a *Agent) UpdateQTargetNetwork() {
	if err := a.target.Track(a.online, a.config.TargetRate); err != nil {
		// Both networks are built from the same config.
		panic(err)
	}
}

// SaveModelWeights saves the online network.
func (a *Agent) SaveModelWeights(path string) error {
	return a.online.Save(path)
}

// LoadModelWeights loads the online network and copies it
// into the target network.
func (a *Agent) LoadModelWeights(path string) error {
	if err := a.online.Load(path); err != nil {
		return err
	}
	return a.target.SetWeights(a.online.Weights())
}

func (a *Agent) uniform() float64 {
	if a.rand != nil {
		return a.rand.Float64()
	}
	return rand.Float64()
}

func (a *Agent) intn(n int) int {
	if a.rand != nil {
		return a.rand.Intn(n)
	}
	return rand.Intn(n)
}
