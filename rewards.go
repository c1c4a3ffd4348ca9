package anydqn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RewardHistory stores the total reward of each episode,
// in the order the episodes were run.
type RewardHistory []float64

// Mean computes the mean episode reward.
//
// It returns NaN for an empty history.
func (r RewardHistory) Mean() float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	return stat.Mean(r, nil)
}

// StdDev computes the sample standard deviation of the
// episode rewards.
func (r RewardHistory) StdDev() float64 {
	if len(r) < 2 {
		return 0
	}
	return stat.StdDev(r, nil)
}

// Max returns the best episode reward.
//
// It returns NaN for an empty history.
func (r RewardHistory) Max() float64 {
	if len(r) == 0 {
		return math.NaN()
	}
	return floats.Max(r)
}

// MovingAverage smooths the history with a trailing
// window.
//
// Entry i of the result averages episodes
// max(0, i-window+1) through i.
func (r RewardHistory) MovingAverage(window int) []float64 {
	if window < 1 {
		panic("window must be positive")
	}
	res := make([]float64, len(r))
	var sum float64
	for i, x := range r {
		sum += x
		if i >= window {
			sum -= r[i-window]
		}
		count := window
		if i+1 < window {
			count = i + 1
		}
		res[i] = sum / float64(count)
	}
	return res
}

// CountAtLeast counts the episodes whose reward is at
// least threshold.
func (r RewardHistory) CountAtLeast(threshold float64) int {
	var count int
	for _, x := range r {
		if x >= threshold {
			count++
		}
	}
	return count
}
