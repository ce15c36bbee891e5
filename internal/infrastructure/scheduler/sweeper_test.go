package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepFinished(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected bounded context")
	}
	return 1, c.err
}

func TestNewSweeper_RejectsNonPositiveInterval(t *testing.T) {
	if _, err := NewSweeper(&countingSweeper{}, 0, logging.NewNop()); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestSweeper_RunOnce(t *testing.T) {
	matches := &countingSweeper{}
	s, err := NewSweeper(matches, time.Hour, logging.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	s.RunOnce(context.Background())
	if got := matches.calls.Load(); got != 1 {
		t.Fatalf("expected 1 sweep, got %d", got)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(cancelled)
	if got := matches.calls.Load(); got != 1 {
		t.Fatalf("expected cancelled run to skip, got %d calls", got)
	}
}

func TestSweeper_StartRunsImmediately(t *testing.T) {
	matches := &countingSweeper{}
	s, err := NewSweeper(matches, time.Hour, logging.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start sweeper: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })

	deadline := time.Now().Add(2 * time.Second)
	for matches.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected an immediate sweep after start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
