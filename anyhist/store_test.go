package anyhist

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/anydqn/anydqn/anyddqn"
	"github.com/google/uuid"
)

var _ anyddqn.Recorder = (*Recorder)(nil)

func newTestStore(t *testing.T) *Store {
	store := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	meta := RunMeta{Label: "cartpole", Params: map[string]float64{"discount": 0.99}}
	id, err := store.StartRun(ctx, meta)
	if err != nil {
		t.Fatalf("start run: %v", err)
	}

	rewards := []float64{12, 30, 181}
	for i, r := range rewards {
		if err := store.RecordEpisode(ctx, id, i, r, 1-float64(i)/10); err != nil {
			t.Fatalf("record episode %d: %v", i, err)
		}
	}
	// Re-recording replaces the old value.
	if err := store.RecordEpisode(ctx, id, 1, 31, 0.9); err != nil {
		t.Fatalf("record episode: %v", err)
	}
	if err := store.FinishRun(ctx, id, true); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	loaded, err := store.Rewards(ctx, id)
	if err != nil {
		t.Fatalf("rewards: %v", err)
	}
	if !reflect.DeepEqual(loaded, []float64{12, 31, 181}) {
		t.Fatalf("unexpected rewards: %v", loaded)
	}

	episodes, err := store.Episodes(ctx, id)
	if err != nil {
		t.Fatalf("episodes: %v", err)
	}
	if episodes[2].Index != 2 || episodes[2].Epsilon != 1-float64(2)/10 {
		t.Fatalf("unexpected episode: %+v", episodes[2])
	}

	run, ok, err := store.Run(ctx, id)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", id)
	}
	if !run.Solved || run.Finished.IsZero() || !reflect.DeepEqual(run.Meta, meta) {
		t.Fatalf("unexpected run loaded: %+v", run)
	}
}

func TestStoreSeparateRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id1, err := store.StartRun(ctx, RunMeta{Label: "a"})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := store.StartRun(ctx, RunMeta{Label: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatal("run IDs collide")
	}
	if err := store.RecordEpisode(ctx, id1, 0, 5, 1); err != nil {
		t.Fatal(err)
	}
	rewards, err := store.Rewards(ctx, id2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rewards) != 0 {
		t.Fatalf("expected no rewards for second run but got %v", rewards)
	}
}

func TestStoreUnknownRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := uuid.New()

	if err := store.RecordEpisode(ctx, id, 0, 1, 1); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound but got %v", err)
	}
	if err := store.FinishRun(ctx, id, false); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound but got %v", err)
	}
	if _, err := store.Episodes(ctx, id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound but got %v", err)
	}
	if _, ok, err := store.Run(ctx, id); ok || err != nil {
		t.Errorf("expected missing run but got ok=%v err=%v", ok, err)
	}
}

func TestStoreNotInitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if _, err := store.StartRun(context.Background(), RunMeta{}); err == nil {
		t.Error("expected error from uninitialized store")
	}
	if err := NewStore("").Init(context.Background()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec, err := NewRecorder(ctx, store, RunMeta{Label: "recorder"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := rec.RecordEpisode(i, float64(i*10), 0.5); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Finish(false); err != nil {
		t.Fatal(err)
	}
	rewards, err := store.Rewards(ctx, rec.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rewards, []float64{0, 10, 20, 30}) {
		t.Errorf("unexpected rewards: %v", rewards)
	}
	run, _, err := store.Run(ctx, rec.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Solved || run.Meta.Label != "recorder" {
		t.Errorf("unexpected run: %+v", run)
	}
}
