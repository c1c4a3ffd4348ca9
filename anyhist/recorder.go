package anyhist

import (
	"context"

	"github.com/google/uuid"
)

// A Recorder writes the episodes of a single run to a
// Store.
// It can be used as a training loop's episode sink.
type Recorder struct {
	Ctx   context.Context
	Store *Store
	RunID uuid.UUID
}

// NewRecorder starts a new run in s and returns a
// Recorder for it.
func NewRecorder(ctx context.Context, s *Store, meta RunMeta) (*Recorder, error) {
	id, err := s.StartRun(ctx, meta)
	if err != nil {
		return nil, err
	}
	return &Recorder{Ctx: ctx, Store: s, RunID: id}, nil
}

// RecordEpisode stores the result of an episode.
func (r *Recorder) RecordEpisode(episode int, reward, epsilon float64) error {
	return r.Store.RecordEpisode(r.Ctx, r.RunID, episode, reward, epsilon)
}

// Finish marks the run as finished.
func (r *Recorder) Finish(solved bool) error {
	return r.Store.FinishRun(r.Ctx, r.RunID, solved)
}
