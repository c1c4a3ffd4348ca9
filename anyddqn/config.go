package anyddqn

import (
	"errors"
	"fmt"
)

// Config stores the hyperparameters of an Agent.
//
// An Agent keeps its own copy, so changing a Config after
// creating an Agent has no effect on it.
type Config struct {
	// LearningRate is the step size for the online
	// network's optimizer.
	LearningRate float64

	// Discount is the reward discount factor.
	Discount float64

	// TargetRate is the soft-update coefficient used to
	// move the target network towards the online network.
	// A value of 1 copies the online network outright.
	TargetRate float64

	// Epsilon is the initial exploration rate.
	// It decays multiplicatively by EpsilonDecay down to
	// MinEpsilon.
	Epsilon      float64
	EpsilonDecay float64
	MinEpsilon   float64

	// BufferSize is the capacity of the replay buffer.
	BufferSize int

	// HiddenSizes lists the widths of the hidden layers of
	// both networks.
	HiddenSizes []int
}

// DefaultConfig returns the settings that solve CartPole.
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.005,
		Discount:     0.99,
		TargetRate:   0.05,
		Epsilon:      1.0,
		EpsilonDecay: 0.995,
		MinEpsilon:   0.1,
		BufferSize:   100000,
		HiddenSizes:  []int{64, 64},
	}
}

// Validate checks that the hyperparameters are usable.
func (c Config) Validate() error {
	switch {
	case c.LearningRate <= 0:
		return errors.New("learning rate must be positive")
	case c.Discount < 0 || c.Discount > 1:
		return fmt.Errorf("discount %v out of range [0, 1]", c.Discount)
	case c.TargetRate <= 0 || c.TargetRate > 1:
		return fmt.Errorf("target rate %v out of range (0, 1]", c.TargetRate)
	case c.MinEpsilon < 0 || c.MinEpsilon > c.Epsilon || c.Epsilon > 1:
		return fmt.Errorf("need 0 <= min epsilon (%v) <= epsilon (%v) <= 1",
			c.MinEpsilon, c.Epsilon)
	case c.EpsilonDecay <= 0 || c.EpsilonDecay > 1:
		return fmt.Errorf("epsilon decay %v out of range (0, 1]", c.EpsilonDecay)
	case c.BufferSize <= 0:
		return errors.New("buffer size must be positive")
	}
	for _, size := range c.HiddenSizes {
		if size <= 0 {
			return errors.New("hidden layer sizes must be positive")
		}
	}
	return nil
}

// TrainConfig controls a Trainer.
type TrainConfig struct {
	// Episodes is the maximum number of episodes to run.
	Episodes int

	// MaxSteps caps the length of each episode.
	MaxSteps int

	// BatchSize is the number of transitions sampled for
	// each training step.
	// Training starts once this many steps have been
	// taken.
	BatchSize int

	// UpdateFreq is the number of environment steps
	// between training steps.
	UpdateFreq int

	// SuccessThreshold is the episode reward at or above
	// which an episode counts as a success.
	SuccessThreshold float64

	// SuccessEpisodes is the number of successful episodes
	// after which training stops early.
	// Successes need not be consecutive.
	SuccessEpisodes int

	// WeightsPath is where the online network is saved
	// when training finishes.
	WeightsPath string
}

// DefaultTrainConfig returns the CartPole training
// schedule.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Episodes:         75,
		MaxSteps:         400,
		BatchSize:        256,
		UpdateFreq:       4,
		SuccessThreshold: 180,
		SuccessEpisodes:  20,
		WeightsPath:      "models/double-dqn-model.weights",
	}
}

// Validate checks that the schedule is usable.
func (t TrainConfig) Validate() error {
	switch {
	case t.Episodes <= 0:
		return errors.New("episode count must be positive")
	case t.MaxSteps <= 0:
		return errors.New("max steps must be positive")
	case t.BatchSize <= 0:
		return errors.New("batch size must be positive")
	case t.UpdateFreq <= 0:
		return errors.New("update frequency must be positive")
	case t.SuccessEpisodes <= 0:
		return errors.New("success episode count must be positive")
	case t.WeightsPath == "":
		return errors.New("weights path is required")
	}
	return nil
}
