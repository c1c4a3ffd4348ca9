package anydqn

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
)

// MaxStepsEnv wraps an Env and ends episodes early if
// they run longer than MaxSteps timesteps.
type MaxStepsEnv struct {
	Env
	MaxSteps int

	steps int
}

// Reset resets the environment.
func (m *MaxStepsEnv) Reset() ([]float64, error) {
	m.steps = 0
	return m.Env.Reset()
}

// Step takes a step in the environment.
func (m *MaxStepsEnv) Step(action int) ([]float64, float64, bool, error) {
	obs, rew, done, err := m.Env.Step(action)
	m.steps++
	if m.steps == m.MaxSteps {
		done = true
	}
	return obs, rew, done, err
}

// DelayEnv wraps an Env and sleeps after every step, so
// that a person can follow along with a rendering.
type DelayEnv struct {
	Env
	Delay time.Duration
}

// Step takes a step in the environment and then sleeps.
func (d *DelayEnv) Step(action int) ([]float64, float64, bool, error) {
	obs, rew, done, err := d.Env.Step(action)
	if err == nil {
		time.Sleep(d.Delay)
	}
	return obs, rew, done, err
}

// RenderEnv wraps a CartPole-like Env and writes a text
// frame to Writer after every reset and step.
//
// Observations must start with the cart position; the
// third component, if present, is the pole angle.
type RenderEnv struct {
	Env
	Writer io.Writer

	// Colors is used to highlight the pole angle.
	// If nil, frames are uncolored.
	Colors aurora.Aurora

	// Width is the number of characters in the track.
	// If 0, 41 is used.
	Width int

	steps  int
	reward float64
}

// Reset resets the environment and draws the first
// frame.
func (r *RenderEnv) Reset() ([]float64, error) {
	obs, err := r.Env.Reset()
	if err != nil {
		return nil, err
	}
	r.steps = 0
	r.reward = 0
	return obs, r.draw(obs, false)
}

// Step takes a step and draws the resulting frame.
func (r *RenderEnv) Step(action int) ([]float64, float64, bool, error) {
	obs, rew, done, err := r.Env.Step(action)
	if err != nil {
		return obs, rew, done, err
	}
	r.steps++
	r.reward += rew
	return obs, rew, done, r.draw(obs, done)
}

func (r *RenderEnv) draw(obs []float64, done bool) error {
	_, err := fmt.Fprintln(r.Writer, r.Frame(obs, done))
	return err
}

// Frame produces the text for a single observation.
func (r *RenderEnv) Frame(obs []float64, done bool) string {
	width := r.Width
	if width == 0 {
		width = 41
	}
	track := []rune(strings.Repeat("-", width))
	if len(obs) > 0 {
		frac := (obs[0] + CartPolePositionLimit) / (2 * CartPolePositionLimit)
		idx := int(math.Round(frac * float64(width-1)))
		if idx < 0 {
			idx = 0
		} else if idx >= width {
			idx = width - 1
		}
		track[idx] = '#'
	}

	var angle interface{} = "n/a"
	if len(obs) > 2 {
		text := fmt.Sprintf("%+6.3f", obs[2])
		angle = text
		if r.Colors != nil {
			switch ratio := math.Abs(obs[2]) / CartPoleAngleLimit; {
			case ratio < 0.5:
				angle = r.Colors.Green(text)
			case ratio < 0.9:
				angle = r.Colors.Yellow(text)
			default:
				angle = r.Colors.Red(text)
			}
		}
	}

	line := fmt.Sprintf("|%s| step=%d reward=%.0f angle=%v", string(track),
		r.steps, r.reward, angle)
	if done {
		line += " done"
	}
	return line
}
