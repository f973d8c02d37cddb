// ABOUTME: Tests for genetic operators on permutation-encoded assignments
// ABOUTME: Covers tournament selection, crossover validity, mutation permutation-safety, smart swaps

package genetic

import (
	"math/rand/v2"
	"testing"

	"seatopt/attendee"
	"seatopt/fitness"
	"seatopt/venue"
)

func TestTournamentSelectPicksHighestTotal(t *testing.T) {
	pop := []Scored{
		{Assignment: []int{0, 1}, Fitness: fitness.Record{Total: 0.1}},
		{Assignment: []int{1, 0}, Fitness: fitness.Record{Total: 0.9}},
	}

	rng := rand.New(rand.NewPCG(1, 1))

	// Draws are with replacement, so k=2 alone does not guarantee the best
	// is sampled; with this fixed seed the draws include it.
	got := TournamentSelect(pop, 2, rng)

	if got[0] != 1 || got[1] != 0 {
		t.Errorf("expected the higher-total individual, got %v", got)
	}
}

func TestTournamentSelectReturnsCopy(t *testing.T) {
	pop := []Scored{
		{Assignment: []int{5, 6}, Fitness: fitness.Record{Total: 1}},
	}

	got := TournamentSelect(pop, 1, rand.New(rand.NewPCG(2, 2)))
	got[0] = 999

	if pop[0].Assignment[0] == 999 {
		t.Errorf("TournamentSelect must return a copy, not an alias")
	}
}

func TestOrderCrossoverProducesValidPermutations(t *testing.T) {
	p1 := []int{0, 1, 2, 3, 4, 5, 6, 7}
	p2 := []int{7, 6, 5, 4, 3, 2, 1, 0}

	rng := rand.New(rand.NewPCG(3, 3))

	for i := 0; i < 50; i++ {
		c1, c2 := OrderCrossover(p1, p2, rng)

		if !IsPermutation(c1, 8) {
			t.Fatalf("child1 not a valid permutation: %v", c1)
		}

		if !IsPermutation(c2, 8) {
			t.Fatalf("child2 not a valid permutation: %v", c2)
		}
	}
}

func TestOrderCrossoverPreservesSegment(t *testing.T) {
	// Replaying the same seeded draws OrderCrossover makes recovers the
	// segment [start,end]; child1 must carry parent1's values there.
	p1 := []int{9, 1, 2, 3}
	p2 := []int{3, 2, 1, 9}

	rng := rand.New(rand.NewPCG(42, 42))
	c1, _ := OrderCrossover(p1, p2, rng)

	if !IsPermutation(c1, 10) {
		t.Fatalf("child not a valid permutation: %v", c1)
	}

	replay := rand.New(rand.NewPCG(42, 42))
	start := replay.IntN(len(p1))
	end := start + replay.IntN(len(p1)-start)

	for i := start; i <= end; i++ {
		if c1[i] != p1[i] {
			t.Errorf("child1[%d] = %d, want parent1's %d (segment [%d,%d])", i, c1[i], p1[i], start, end)
		}
	}
}

func TestIsPermutationDetectsDuplicatesAndRange(t *testing.T) {
	if IsPermutation([]int{0, 0, 1}, 3) {
		t.Errorf("expected duplicate seats to be rejected")
	}

	if IsPermutation([]int{0, 5}, 3) {
		t.Errorf("expected out-of-range seat to be rejected")
	}

	if !IsPermutation([]int{2, 0, 1}, 3) {
		t.Errorf("expected a valid permutation to be accepted")
	}
}

func TestSwapMutateAlwaysValidPermutation(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng := rand.New(rand.NewPCG(11, 22))

	for gen := 0; gen < 30; gen++ {
		out := SwapMutate(a, 0.3, gen, rng)
		if !IsPermutation(out, 10) {
			t.Fatalf("gen %d: SwapMutate produced invalid permutation: %v", gen, out)
		}
	}
}

func TestSwapMutateValidWithSparseSeatPositions(t *testing.T) {
	// Seat positions well above the attendee count, as in any venue that
	// isn't a full house. Block swaps must stay distinct here too.
	a := []int{3, 17, 8, 22, 11, 40, 35, 6, 29, 14}
	rng := rand.New(rand.NewPCG(13, 37))

	for gen := 0; gen < 50; gen++ {
		out := SwapMutate(a, 1.0, gen, rng)
		if !IsPermutation(out, 48) {
			t.Fatalf("gen %d: SwapMutate produced duplicate or out-of-range seats: %v", gen, out)
		}
	}
}

func TestSwapMutateDoesNotMutateInput(t *testing.T) {
	a := []int{0, 1, 2, 3}
	orig := append([]int(nil), a...)

	rng := rand.New(rand.NewPCG(5, 5))
	SwapMutate(a, 1.0, 0, rng)

	for i := range a {
		if a[i] != orig[i] {
			t.Fatalf("SwapMutate mutated its input slice in place")
		}
	}
}

func TestSmartMutateImprovesFriendProximityWhenLow(t *testing.T) {
	v := venue.Build(4, 4, 1)
	ix := attendee.Build([]attendee.Attendee{
		{Group: "g"}, // index 0
		{Group: "g"}, // index 1
		{},           // index 2, adjacent candidate
	})

	// Seat 0 and seat 15 are far apart (distance 6); seat 4 is adjacent (distance 1) to seat 0.
	a := []int{0, 15, 4}

	rec := fitness.Record{FriendProximity: 0.1, VIPPlacement: 1.0}

	out := SmartMutate(a, rec, v, ix)

	if !IsPermutation(out, v.Capacity()) {
		t.Fatalf("SmartMutate produced invalid permutation: %v", out)
	}

	if d := v.ManhattanDistance(out[0], out[1]); d != 1 {
		t.Errorf("expected the far friend to be swapped next to its partner, got distance %d: %v", d, out)
	}
}

func TestSmartMutateImprovesVIPPlacementWhenLow(t *testing.T) {
	v := venue.Build(4, 4, 1)
	ix := attendee.Build([]attendee.Attendee{
		{Type: attendee.TypeVIP},     // index 0
		{Type: attendee.TypeRegular}, // index 1
	})

	// index 0 (VIP) in seat 4 (row1, non-VIP), index 1 (regular) in seat 0 (row0, VIP).
	a := []int{4, 0}

	rec := fitness.Record{FriendProximity: 1.0, VIPPlacement: 0.2}

	out := SmartMutate(a, rec, v, ix)

	seat0 := v.Seat(out[0])
	if !seat0.IsVIP {
		t.Errorf("expected VIP attendee to be swapped into the VIP seat, got seat row %d", seat0.Row)
	}
}

func TestSmartMutateNoOpWhenNothingQualifies(t *testing.T) {
	v := venue.Build(3, 3, 1)
	ix := attendee.Build([]attendee.Attendee{{Type: attendee.TypeVIP}})

	a := []int{0}
	rec := fitness.Record{FriendProximity: 1.0, VIPPlacement: 1.0}

	out := SmartMutate(a, rec, v, ix)

	if out[0] != a[0] {
		t.Errorf("expected no-op when both sub-scores are high, got %v", out)
	}
}
