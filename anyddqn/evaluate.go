package anyddqn

import "github.com/anydqn/anydqn"

// Evaluate loads saved weights into agent and runs one
// greedy episode, returning the total reward.
//
// Exploration is disabled regardless of the agent's
// epsilon, and nothing is stored or trained.
// If maxSteps is positive, the episode is cut off after
// that many steps.
//
// Weight loading errors are returned as-is, so callers
// can tell a missing file from a corrupt or mismatched
// one.
func Evaluate(env anydqn.Env, agent *Agent, weightsPath string,
	maxSteps int) (float64, error) {
	if err := agent.LoadModelWeights(weightsPath); err != nil {
		return 0, err
	}
	return RunGreedy(env, agent, maxSteps)
}

// RunGreedy runs one greedy episode with the agent's
// current weights.
func RunGreedy(env anydqn.Env, agent *Agent, maxSteps int) (reward float64,
	err error) {
	state, err := env.Reset()
	if err != nil {
		return 0, err
	}
	for step := 0; maxSteps <= 0 || step < maxSteps; step++ {
		var rew float64
		var done bool
		state, rew, done, err = env.Step(agent.GreedyAction(state))
		if err != nil {
			return reward, err
		}
		reward += rew
		if done {
			break
		}
	}
	return reward, nil
}
