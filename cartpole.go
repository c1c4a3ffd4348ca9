package anydqn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Physical constants for CartPole, matching the classic
// control problem from Barto, Sutton, and Anderson.
const (
	CartPoleGravity  = 9.8
	CartPoleCartMass = 1.0
	CartPolePoleMass = 0.1
	CartPoleForce    = 10.0
	CartPoleTimestep = 0.02

	// CartPoleHalfLength is half the length of the pole.
	CartPoleHalfLength = 0.5

	// CartPoleAngleLimit is the pole angle (in radians)
	// past which an episode is over.
	CartPoleAngleLimit = 12 * 2 * math.Pi / 360

	// CartPolePositionLimit is the cart position past
	// which an episode is over.
	CartPolePositionLimit = 2.4
)

const cartPoleStartRange = 0.05

var (
	errCartPoleNotReset = errors.New("cartpole: step before reset")
	errCartPoleDone     = errors.New("cartpole: step after episode ended")
)

// CartPole is a simulated pole balanced on a moving cart.
//
// Observations are [x, x_dot, theta, theta_dot].
// Action 0 pushes the cart left and action 1 pushes it
// right.
// Every step, including the last one, yields a reward of
// 1.
type CartPole struct {
	// Rand is used to sample initial states.
	// If nil, the math/rand global source is used.
	Rand *rand.Rand

	state   [4]float64
	started bool
	done    bool
}

// NewCartPole creates a CartPole which samples initial
// states from gen.
func NewCartPole(gen *rand.Rand) *CartPole {
	return &CartPole{Rand: gen}
}

// ObsSize returns 4.
func (c *CartPole) ObsSize() int {
	return 4
}

// NumActions returns 2.
func (c *CartPole) NumActions() int {
	return 2
}

// Reset starts a new episode near the upright position.
func (c *CartPole) Reset() ([]float64, error) {
	for i := range c.state {
		c.state[i] = (c.uniform()*2 - 1) * cartPoleStartRange
	}
	c.started = true
	c.done = false
	return c.observation(), nil
}

// Step applies a push to the cart and advances the
// simulation by one timestep.
//
// Stepping a finished episode is an error; call Reset
// first.
func (c *CartPole) Step(action int) (obs []float64, reward float64,
	done bool, err error) {
	if !c.started {
		return nil, 0, false, errCartPoleNotReset
	} else if c.done {
		return nil, 0, false, errCartPoleDone
	} else if action != 0 && action != 1 {
		return nil, 0, false, fmt.Errorf("cartpole: invalid action %d", action)
	}

	force := CartPoleForce
	if action == 0 {
		force = -force
	}

	x, xDot, theta, thetaDot := c.state[0], c.state[1], c.state[2], c.state[3]
	cos, sin := math.Cos(theta), math.Sin(theta)

	totalMass := CartPoleCartMass + CartPolePoleMass
	poleMassLength := CartPolePoleMass * CartPoleHalfLength

	temp := (force + poleMassLength*thetaDot*thetaDot*sin) / totalMass
	thetaAcc := (CartPoleGravity*sin - cos*temp) /
		(CartPoleHalfLength * (4.0/3.0 - CartPolePoleMass*cos*cos/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cos/totalMass

	// Explicit Euler: positions advance with the old
	// velocities.
	x += CartPoleTimestep * xDot
	xDot += CartPoleTimestep * xAcc
	theta += CartPoleTimestep * thetaDot
	thetaDot += CartPoleTimestep * thetaAcc

	c.state = [4]float64{x, xDot, theta, thetaDot}
	c.done = math.Abs(x) > CartPolePositionLimit ||
		math.Abs(theta) > CartPoleAngleLimit

	return c.observation(), 1, c.done, nil
}

func (c *CartPole) observation() []float64 {
	return append([]float64{}, c.state[:]...)
}

func (c *CartPole) uniform() float64 {
	if c.Rand != nil {
		return c.Rand.Float64()
	}
	return rand.Float64()
}
