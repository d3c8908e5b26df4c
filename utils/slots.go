package util

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Slots caps how many yt-dlp processes run at once across all requests.
type Slots struct {
	sem    *semaphore.Weighted
	size   int64
	active atomic.Int64
}

func NewSlots(size int) *Slots {
	if size < 1 {
		size = 1
	}
	return &Slots{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Block until slot is acquired
func (s *Slots) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.active.Add(1)
	return nil
}

func (s *Slots) Release() {
	s.active.Add(-1)
	s.sem.Release(1)
}

// Active returns the number of slots currently held.
func (s *Slots) Active() int {
	return int(s.active.Load())
}

// Helper: check if all slots are full (non-blocking)
func (s *Slots) Full() bool {
	return s.active.Load() >= s.size
}
