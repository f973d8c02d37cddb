// ABOUTME: Genetic operators over permutation-encoded seating assignments
// ABOUTME: Tournament selection, order-preserving crossover, adaptive and targeted mutation

package genetic

import (
	"math"
	"math/rand/v2"

	"seatopt/attendee"
	"seatopt/fitness"
	"seatopt/venue"
)

// Scored pairs an assignment with its fitness record. Higher Total is
// better everywhere in this package.
type Scored struct {
	Assignment []int
	Fitness    fitness.Record
}

// TournamentSelect draws k (default 5) individuals from the population
// uniformly with replacement and returns a copy of the fittest one's
// assignment. Ties are broken by first-seen.
func TournamentSelect(pop []Scored, k int, rng *rand.Rand) []int {
	if k <= 0 {
		k = 5
	}

	bestIdx := randIntN(rng, len(pop))
	bestTotal := pop[bestIdx].Fitness.Total

	for i := 1; i < k; i++ {
		idx := randIntN(rng, len(pop))
		if pop[idx].Fitness.Total > bestTotal {
			bestIdx = idx
			bestTotal = pop[idx].Fitness.Total
		}
	}

	out := make([]int, len(pop[bestIdx].Assignment))
	copy(out, pop[bestIdx].Assignment)

	return out
}

// OrderCrossover performs order-preserving crossover: a contiguous slice
// [start,end] is copied verbatim from parent1 into child1 (and from
// parent2 into child2); the remaining positions are filled by walking the
// other parent starting at (end+1) mod N, skipping seats already present,
// and placing them starting at (end+1) mod N. Both children are valid
// permutations by construction.
func OrderCrossover(parent1, parent2 []int, rng *rand.Rand) (child1, child2 []int) {
	n := len(parent1)

	start := randIntN(rng, n)
	end := start + randIntN(rng, n-start)

	child1 = orderCrossoverChild(parent1, parent2, start, end)
	child2 = orderCrossoverChild(parent2, parent1, start, end)

	return child1, child2
}

func orderCrossoverChild(primary, secondary []int, start, end int) []int {
	n := len(primary)
	child := make([]int, n)
	present := make(map[int]bool, n)

	for i := start; i <= end; i++ {
		child[i] = primary[i]
		present[primary[i]] = true
	}

	dstIdx := (end + 1) % n

	for i := 0; i < n; i++ {
		srcIdx := (end + 1 + i) % n
		if !present[secondary[srcIdx]] {
			child[dstIdx] = secondary[srcIdx]
			dstIdx = (dstIdx + 1) % n
		}
	}

	return child
}

// IsPermutation reports whether every seat position in a is distinct and
// within [0, capacity).
func IsPermutation(a []int, capacity int) bool {
	seen := make(map[int]bool, len(a))

	for _, seat := range a {
		if seat < 0 || seat >= capacity {
			return false
		}

		if seen[seat] {
			return false
		}

		seen[seat] = true
	}

	return true
}

// SwapMutate applies an adaptive swap mutation: the effective rate is
// baseRate*(1+exp(-gen/20)), clamped to <=1.0, so early generations mutate
// more. When the rate check passes, two random positions are swapped; with
// probability 0.3 a block swap of length in [2,6] is attempted afterward,
// kept only if the result remains a valid permutation and reverted
// otherwise.
func SwapMutate(a []int, baseRate float64, gen int, rng *rand.Rand) []int {
	out := make([]int, len(a))
	copy(out, a)

	n := len(out)
	if n < 2 {
		return out
	}

	rate := baseRate * (1 + math.Exp(-float64(gen)/20))
	if rate > 1.0 {
		rate = 1.0
	}

	if randFloat64(rng) >= rate {
		return out
	}

	i, j := randIntN(rng, n), randIntN(rng, n)
	out[i], out[j] = out[j], out[i]

	if randFloat64(rng) < 0.3 {
		attemptBlockSwap(out, rng)
	}

	return out
}

func attemptBlockSwap(out []int, rng *rand.Rand) {
	n := len(out)

	maxLen := 6
	if maxLen > n {
		maxLen = n
	}

	if maxLen < 2 {
		return
	}

	length := 2 + randIntN(rng, maxLen-1)
	if length > maxLen {
		length = maxLen
	}

	if n-length+1 <= 0 {
		return
	}

	s1 := randIntN(rng, n-length+1)
	s2 := randIntN(rng, n-length+1)

	trial := make([]int, n)
	copy(trial, out)

	for k := 0; k < length; k++ {
		trial[s1+k], trial[s2+k] = trial[s2+k], trial[s1+k]
	}

	if seatsDistinct(trial) {
		copy(out, trial)
	}
	// else: reject the block swap, keep the single swap already in out.
}

// seatsDistinct checks that no seat position appears twice. Seat values are
// unchanged as a multiset by swapping, so distinctness is the only validity
// property a block swap can break; the range bound is checked against the
// venue capacity by IsPermutation at the points where assignments are first
// created.
func seatsDistinct(a []int) bool {
	seen := make(map[int]bool, len(a))

	for _, seat := range a {
		if seen[seat] {
			return false
		}

		seen[seat] = true
	}

	return true
}

// SmartMutate applies at most one targeted swap that preserves permutation
// validity. If rec.FriendProximity < 0.7 it attempts
// improveFriendProximity; if that made no swap and rec.VIPPlacement < 0.8,
// it attempts improveVIPPlacement. No-op if no qualifying swap exists.
func SmartMutate(a []int, rec fitness.Record, v *venue.Venue, ix *attendee.Index) []int {
	out := make([]int, len(a))
	copy(out, a)

	if rec.FriendProximity < 0.7 {
		if improveFriendProximity(out, v, ix) {
			return out
		}
	}

	if rec.VIPPlacement < 0.8 {
		improveVIPPlacement(out, v, ix)
	}

	return out
}

// improveFriendProximity finds a friendship pair seated farther than
// Manhattan distance 3 apart, then a third attendee adjacent (distance 1)
// to one of them, and swaps the third attendee with the far friend.
// Iteration is in ascending attendee-index order so the chosen swap is
// reproducible.
func improveFriendProximity(a []int, v *venue.Venue, ix *attendee.Index) bool {
	for _, pair := range ix.OrderedFriendPairs() {
		i, j := pair[0], pair[1]
		if v.ManhattanDistance(a[i], a[j]) <= 3 {
			continue
		}

		for k := 0; k < ix.N(); k++ {
			if k == i || k == j {
				continue
			}

			if v.ManhattanDistance(a[k], a[i]) == 1 {
				a[k], a[j] = a[j], a[k]
				return true
			}

			if v.ManhattanDistance(a[k], a[j]) == 1 {
				a[k], a[i] = a[i], a[k]
				return true
			}
		}
	}

	return false
}

// improveVIPPlacement finds the first VIP seated in a non-VIP seat and the
// first regular attendee seated in a VIP seat, and swaps them.
func improveVIPPlacement(a []int, v *venue.Venue, ix *attendee.Index) bool {
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
		return false
	}

	a[vipInRegular], a[regularInVIP] = a[regularInVIP], a[vipInRegular]

	return true
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
