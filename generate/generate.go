// ABOUTME: Initial solution generators: random permutation and greedy priority placement
// ABOUTME: Random uses Fisher-Yates shuffle; Greedy scores every free seat per attendee

package generate

import (
	"math/rand/v2"
	"slices"

	"seatopt/attendee"
	"seatopt/venue"
)

// Random returns a uniformly shuffled assignment of the first N seats out
// of all R*C positions.
func Random(v *venue.Venue, n int, rng *rand.Rand) []int {
	seats := make([]int, v.Capacity())
	for i := range seats {
		seats[i] = i
	}

	shuffle(seats, rng)

	return slices.Clone(seats[:n])
}

func shuffle(s []int, rng *rand.Rand) {
	if rng != nil {
		rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		return
	}

	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// Greedy sorts attendees by (VIP first, higher priority first, larger
// group first) and places each, in that order, into the free seat that
// maximizes a local score. Ties go to the first-encountered seat index.
func Greedy(v *venue.Venue, ix *attendee.Index) []int {
	order := make([]int, ix.N())
	for i := range order {
		order[i] = i
	}

	groupSize := func(i int) int {
		g := ix.Attendees[i].Group
		if g == "" {
			return 0
		}

		return len(ix.Groups[g])
	}

	slices.SortFunc(order, func(i, j int) int {
		ai, aj := ix.Attendees[i], ix.Attendees[j]

		if (ai.Type == attendee.TypeVIP) != (aj.Type == attendee.TypeVIP) {
			if ai.Type == attendee.TypeVIP {
				return -1
			}

			return 1
		}

		if ai.Priority != aj.Priority {
			return aj.Priority - ai.Priority
		}

		gi, gj := groupSize(i), groupSize(j)
		if gi != gj {
			return gj - gi
		}

		return 0
	})

	assignment := make([]int, ix.N())
	occupied := make([]bool, v.Capacity())
	seatOf := make(map[int]int, ix.N()) // attendee index -> seat, filled as we go

	for _, attIdx := range order {
		a := ix.Attendees[attIdx]
		bestSeat := -1
		bestScore := -1e18

		for seatIdx := 0; seatIdx < v.Capacity(); seatIdx++ {
			if occupied[seatIdx] {
				continue
			}

			score := greedySeatScore(v, a, seatIdx, ix, seatOf)
			if score > bestScore {
				bestScore = score
				bestSeat = seatIdx
			}
		}

		if bestSeat == -1 {
			// Defensive: every free seat was somehow unscored. Pick the
			// first free one.
			for seatIdx := 0; seatIdx < v.Capacity(); seatIdx++ {
				if !occupied[seatIdx] {
					bestSeat = seatIdx
					break
				}
			}
		}

		assignment[attIdx] = bestSeat
		occupied[bestSeat] = true
		seatOf[attIdx] = bestSeat
	}

	return assignment
}

func greedySeatScore(v *venue.Venue, a attendee.Attendee, seatIdx int, ix *attendee.Index, seatOf map[int]int) float64 {
	seat := v.Seat(seatIdx)
	score := 0.0

	if a.Type == attendee.TypeVIP {
		if seat.IsVIP {
			score += 200
		} else {
			score -= 100
		}
	}

	score += (200 * float64(a.Priority) / 10) / (seat.DistanceToStage + 1)

	rows := v.Rows
	switch a.Preference {
	case attendee.PreferenceFront:
		if seat.Row < rows/3 {
			score += 50
		}
	case attendee.PreferenceMiddle:
		if seat.Row >= rows/3 && seat.Row < 2*rows/3 {
			score += 50
		}
	case attendee.PreferenceBack:
		if seat.Row >= 2*rows/3 {
			score += 50
		}
	}

	if a.Group != "" {
		for _, memberIdx := range ix.Groups[a.Group] {
			if memberIdx == a.Index {
				continue
			}

			placedSeat, ok := seatOf[memberIdx]
			if !ok {
				continue
			}

			d := v.ManhattanDistance(seatIdx, placedSeat)
			bonus := 100 - 20*d
			if bonus > 0 {
				score += float64(bonus)
			}
		}
	}

	return score
}
