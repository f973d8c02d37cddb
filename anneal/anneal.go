// ABOUTME: Simulated-annealing refinement pass over a seating assignment
// ABOUTME: Metropolis acceptance with a cooling schedule and weak-area-targeted neighbor moves

package anneal

import (
	"math"
	"math/rand/v2"

	"seatopt/attendee"
	"seatopt/fitness"
	"seatopt/venue"
)

// Config holds the temperature schedule.
type Config struct {
	InitialTemp float64
	CoolingRate float64
	MinTemp     float64
	Iterations  int
}

// DefaultConfig returns the standard schedule: start at 1000, cool by
// 0.995 per iteration, stop at 1.
func DefaultConfig(iterations int) Config {
	return Config{
		InitialTemp: 1000,
		CoolingRate: 0.995,
		MinTemp:     1,
		Iterations:  iterations,
	}
}

// Result is the outcome of a Run: the best assignment found and its
// fitness, independent of whether it differs from the input.
type Result struct {
	Best        []int
	BestFitness fitness.Record
}

// Run executes the annealing loop: each iteration proposes a neighbor
// (50% targeted via FindWeakArea, else a
// random two-position swap), accepts it if it is better or passes the
// Metropolis criterion exp(delta/T), tracks the best seen, and cools T by
// CoolingRate each iteration. Stops when Iterations is exhausted or T
// drops to or below MinTemp.
func Run(start []int, startFitness fitness.Record, v *venue.Venue, ix *attendee.Index, w fitness.Weights, cfg Config, rng *rand.Rand) (Result, error) {
	current := cloneInts(start)
	currentFitness := startFitness

	best := cloneInts(start)
	bestFitness := startFitness

	temp := cfg.InitialTemp

	for i := 0; i < cfg.Iterations && temp > cfg.MinTemp; i++ {
		neighbor := proposeNeighbor(current, currentFitness, v, ix, rng)

		neighborFitness, err := fitness.Evaluate(neighbor, v, ix, w)
		if err != nil {
			return Result{}, err
		}

		delta := neighborFitness.Total - currentFitness.Total

		accept := delta > 0
		if !accept && temp > 0 {
			accept = randFloat64(rng) < math.Exp(delta/temp)
		}

		if accept {
			current = neighbor
			currentFitness = neighborFitness

			if currentFitness.Total > bestFitness.Total {
				best = cloneInts(current)
				bestFitness = currentFitness
			}
		}

		temp *= cfg.CoolingRate
	}

	return Result{Best: best, BestFitness: bestFitness}, nil
}

func proposeNeighbor(current []int, currentFitness fitness.Record, v *venue.Venue, ix *attendee.Index, rng *rand.Rand) []int {
	neighbor := cloneInts(current)

	if randFloat64(rng) < 0.5 {
		if i, j, ok := FindWeakArea(current, currentFitness, v, ix); ok {
			neighbor[i], neighbor[j] = neighbor[j], neighbor[i]
			return neighbor
		}
	}

	n := len(neighbor)
	a, b := randIntN(rng, n), randIntN(rng, n)
	neighbor[a], neighbor[b] = neighbor[b], neighbor[a]

	return neighbor
}

// FindWeakArea locates a swap pair to directly target the assignment's
// weakest sub-score: if VIP placement is below 0.8,
// return the first VIP-in-regular-seat paired with the first
// regular-in-VIP-seat attendee index. Otherwise, if group cohesion is
// below 0.7, for each multi-member group (in ascending tag order) find a
// member with no same-group neighbor within Manhattan distance 2, then a
// non-group member adjacent (distance 1) to another group member, and
// return that pair. Returns ok=false if neither criterion fires.
func FindWeakArea(a []int, rec fitness.Record, v *venue.Venue, ix *attendee.Index) (i, j int, ok bool) {
	if rec.VIPPlacement < 0.8 {
		if i, j, ok := vipWeakPair(a, v, ix); ok {
			return i, j, true
		}
	}

	if rec.GroupCohesion < 0.7 {
		if i, j, ok := groupWeakPair(a, v, ix); ok {
			return i, j, true
		}
	}

	return 0, 0, false
}

func vipWeakPair(a []int, v *venue.Venue, ix *attendee.Index) (int, int, bool) {
	vipInRegular := -1
	regularInVIP := -1

	for _, at := range ix.Attendees {
		seat := v.Seat(a[at.Index])

		if at.Type == attendee.TypeVIP && !seat.IsVIP && vipInRegular == -1 {
			vipInRegular = at.Index
		}

		if at.Type == attendee.TypeRegular && seat.IsVIP && regularInVIP == -1 {
			regularInVIP = at.Index
		}
	}

	if vipInRegular == -1 || regularInVIP == -1 {
		return 0, 0, false
	}

	return vipInRegular, regularInVIP, true
}

func groupWeakPair(a []int, v *venue.Venue, ix *attendee.Index) (int, int, bool) {
	for _, tag := range ix.OrderedGroupTags() {
		members := ix.Groups[tag]
		if len(members) < 2 {
			continue
		}

		isolated := -1

		for _, m := range members {
			hasNearbyFriend := false

			for _, other := range members {
				if other == m {
					continue
				}

				if v.ManhattanDistance(a[m], a[other]) <= 2 {
					hasNearbyFriend = true
					break
				}
			}

			if !hasNearbyFriend {
				isolated = m
				break
			}
		}

		if isolated == -1 {
			continue
		}

		for k := 0; k < ix.N(); k++ {
			if isInGroup(k, members) {
				continue
			}

			for _, m := range members {
				if m == isolated {
					continue
				}

				if v.ManhattanDistance(a[k], a[m]) == 1 {
					return isolated, k, true
				}
			}
		}
	}

	return 0, 0, false
}

func isInGroup(idx int, members []int) bool {
	for _, m := range members {
		if m == idx {
			return true
		}
	}

	return false
}

func cloneInts(a []int) []int {
	out := make([]int, len(a))
	copy(out, a)

	return out
}

func randIntN(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}

	if rng != nil {
		return rng.IntN(n)
	}

	return rand.IntN(n)
}

func randFloat64(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}

	return rand.Float64()
}
