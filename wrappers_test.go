package anydqn

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"
)

// constantEnv never terminates on its own.
type constantEnv struct {
	resets int
}

func (c *constantEnv) Reset() ([]float64, error) {
	c.resets++
	return []float64{0, 0, 0, 0}, nil
}

func (c *constantEnv) Step(action int) ([]float64, float64, bool, error) {
	return []float64{0.5, 0, 0.2, 0}, 1, false, nil
}

func TestMaxStepsEnv(t *testing.T) {
	env := &MaxStepsEnv{Env: &constantEnv{}, MaxSteps: 3}
	for episode := 0; episode < 2; episode++ {
		if _, err := env.Reset(); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			_, _, done, err := env.Step(0)
			if err != nil {
				t.Fatal(err)
			}
			if done != (i == 2) {
				t.Errorf("episode %d step %d: unexpected done=%v", episode, i, done)
			}
		}
	}
}

func TestDelayEnv(t *testing.T) {
	env := &DelayEnv{Env: &constantEnv{}, Delay: 20 * time.Millisecond}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, _, _, err := env.Step(1); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("three steps took only %v", elapsed)
	}
}

func TestRenderEnv(t *testing.T) {
	var buf bytes.Buffer
	env := &RenderEnv{
		Env:    NewCartPole(rand.New(rand.NewSource(4))),
		Writer: &buf,
		Width:  11,
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := env.Step(0); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 frames but got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "|-----#-----|") {
		t.Errorf("unexpected first frame: %s", lines[0])
	}
	if !strings.Contains(lines[1], "step=1 reward=1") {
		t.Errorf("unexpected second frame: %s", lines[1])
	}
}

func TestRenderEnvFrameClamp(t *testing.T) {
	env := &RenderEnv{Width: 5}
	frame := env.Frame([]float64{100, 0, 0, 0}, true)
	if !strings.HasPrefix(frame, "|----#|") || !strings.HasSuffix(frame, " done") {
		t.Errorf("unexpected frame: %s", frame)
	}
}
