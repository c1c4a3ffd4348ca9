package anydqn

// Env is an instance of an RL environment with a vector
// observation space and a discrete action space.
type Env interface {
	Reset() (observation []float64, err error)
	Step(action int) (observation []float64, reward float64,
		done bool, err error)
}

// A SpaceEnv is an Env which knows the size of its
// observation vectors and its number of actions.
//
// Agents use this to size their networks.
type SpaceEnv interface {
	Env

	ObsSize() int
	NumActions() int
}
