// ABOUTME: Progress update tracking shared by CLI and visual modes
// ABOUTME: Converts raw optimizer.Progress events into rate-annotated updates for display

package main

import (
	"time"

	"seatopt/optimizer"
)

// OptimizeUpdate augments an optimizer.Progress event with the wall-clock
// rate it was observed at.
type OptimizeUpdate struct {
	optimizer.Progress
	GenPerSec float64
}

// rateTracker turns a stream of optimizer.Progress events into
// OptimizeUpdate events carrying a generations-per-second estimate.
type rateTracker struct {
	lastTime time.Time
	lastGen  int
}

// newRateTracker returns a rateTracker anchored at the current time.
func newRateTracker() *rateTracker {
	return &rateTracker{lastTime: time.Now()}
}

// observe records p and returns the annotated update.
func (rt *rateTracker) observe(p optimizer.Progress) OptimizeUpdate {
	now := time.Now()

	elapsed := now.Sub(rt.lastTime).Seconds()
	genPerSec := 0.0

	if elapsed > 0 {
		genPerSec = float64(p.Generation-rt.lastGen) / elapsed
	}

	rt.lastTime = now
	rt.lastGen = p.Generation

	return OptimizeUpdate{Progress: p, GenPerSec: genPerSec}
}
