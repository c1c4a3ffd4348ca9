// Package anydqn provides the environment side of
// Double DQN training: the Env interface, a CartPole
// simulation, environment wrappers, and tools for
// inspecting reward histories.
//
// The learning algorithm itself lives in the anyddqn
// subpackage.
package anydqn
