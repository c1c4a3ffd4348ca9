package anyddqn

import "log"

// A Logger logs status messages which are produced during
// training.
type Logger interface {
	LogEpisode(episode int, reward, epsilon float64)
	LogUpdate(step int, loss float64)
	LogDone(episodes, successes int, earlyStop bool)
}

// StandardLogger is a Logger which uses the log package.
//
// A Field of name <N> controls whether or not the Log<N>
// method does anything.
type StandardLogger struct {
	Episode bool
	Update  bool
	Done    bool
}

// LogEpisode logs the result of an episode.
func (s *StandardLogger) LogEpisode(episode int, reward, epsilon float64) {
	if s.Episode {
		log.Printf("episode %d: reward=%f epsilon=%f", episode, reward, epsilon)
	}
}

// LogUpdate logs a training step.
func (s *StandardLogger) LogUpdate(step int, loss float64) {
	if s.Update {
		log.Printf("update: step=%d loss=%f", step, loss)
	}
}

// LogDone logs the end of training.
func (s *StandardLogger) LogDone(episodes, successes int, earlyStop bool) {
	if s.Done {
		if earlyStop {
			log.Printf("success threshold reached: episodes=%d successes=%d",
				episodes, successes)
		} else {
			log.Printf("training finished: episodes=%d successes=%d",
				episodes, successes)
		}
	}
}
