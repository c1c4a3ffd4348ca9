package anyddqn

import (
	"github.com/anydqn/anydqn"
	"github.com/unixpickle/essentials"
)

// A Recorder receives the result of every episode, for
// example to persist a run history.
type Recorder interface {
	RecordEpisode(episode int, reward, epsilon float64) error
}

// A Trainer runs an Agent in an environment, training it
// as experience accumulates.
type Trainer struct {
	Agent  *Agent
	Env    anydqn.Env
	Config TrainConfig

	// Logger, if non-nil, is used to log information
	// about training as it happens.
	Logger Logger

	// Recorder, if non-nil, receives each episode reward.
	Recorder Recorder
}

// Run trains until the success criterion is met or the
// episode budget is spent.
// Either way, the online weights are saved to
// Config.WeightsPath before Run returns successfully.
//
// The result holds the total reward of every episode
// that was run.
func (t *Trainer) Run() (history anydqn.RewardHistory, err error) {
	defer essentials.AddCtxTo("train", &err)
	if err := t.Config.Validate(); err != nil {
		return nil, err
	}
	if t.Config.BatchSize > t.Agent.Buffer().Cap() {
		return nil, essentials.AddCtx("batch size exceeds buffer capacity",
			ErrBufferUnderflow)
	}

	var totalSteps, successes int
	for episode := 0; episode < t.Config.Episodes; episode++ {
		reward, err := t.runEpisode(&totalSteps)
		if err != nil {
			return history, err
		}
		history = append(history, reward)
		if reward >= t.Config.SuccessThreshold {
			successes++
		}
		if t.Logger != nil {
			t.Logger.LogEpisode(episode, reward, t.Agent.Epsilon())
		}
		if t.Recorder != nil {
			if err := t.Recorder.RecordEpisode(episode, reward, t.Agent.Epsilon()); err != nil {
				return history, essentials.AddCtx("record episode", err)
			}
		}
		if successes >= t.Config.SuccessEpisodes {
			if t.Logger != nil {
				t.Logger.LogDone(len(history), successes, true)
			}
			return history, t.Agent.SaveModelWeights(t.Config.WeightsPath)
		}
	}

	if t.Logger != nil {
		t.Logger.LogDone(len(history), successes, false)
	}
	return history, t.Agent.SaveModelWeights(t.Config.WeightsPath)
}

// runEpisode runs a single episode and returns its total
// reward.
func (t *Trainer) runEpisode(totalSteps *int) (reward float64, err error) {
	state, err := t.Env.Reset()
	if err != nil {
		return 0, essentials.AddCtx("reset environment", err)
	}
	for step := 0; step < t.Config.MaxSteps; step++ {
		*totalSteps++

		action := t.Agent.ComputeAction(state)
		nextState, rew, done, err := t.Env.Step(action)
		if err != nil {
			return 0, essentials.AddCtx("step environment", err)
		}
		reward += rew
		t.Agent.StoreEpisode(state, action, rew, nextState, done)

		if *totalSteps >= t.Config.BatchSize && *totalSteps%t.Config.UpdateFreq == 0 {
			loss, err := t.Agent.Train(t.Config.BatchSize)
			if err != nil {
				return 0, err
			}
			t.Agent.UpdateQTargetNetwork()
			t.Agent.UpdateEpsilon()
			if t.Logger != nil {
				t.Logger.LogUpdate(*totalSteps, loss)
			}
		}

		if done {
			return reward, nil
		}
		state = nextState
	}
	return reward, nil
}
