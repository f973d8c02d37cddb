// ABOUTME: Tests for the fitness evaluator's sub-scores and weighted total
// ABOUTME: Validates normalization, neutral values, boundary cases and purity

package fitness

import (
	"math"
	"testing"

	"seatopt/attendee"
	"seatopt/venue"
)

func equalWeights() Weights {
	return Weights{Friend: 1, VIP: 1, Group: 1, Distance: 1}
}

func TestZeroWeightsError(t *testing.T) {
	v := venue.Build(2, 2, 1)
	ix := attendee.Build([]attendee.Attendee{{}})

	_, err := Evaluate([]int{0}, v, ix, Weights{})
	if err != ErrZeroWeights {
		t.Fatalf("expected ErrZeroWeights, got %v", err)
	}
}

func TestNeutralScoresWhenNoCategories(t *testing.T) {
	// 4x4 venue, one VIP row, five regulars, no groups: nothing to score
	// in three of the four categories.
	v := venue.Build(4, 4, 1)

	attendees := make([]attendee.Attendee, 5)
	for i := range attendees {
		attendees[i] = attendee.Attendee{Type: attendee.TypeRegular, Priority: 5}
	}

	ix := attendee.Build(attendees)
	a := []int{0, 1, 2, 3, 4}

	rec, err := Evaluate(a, v, ix, equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.FriendProximity != 1.0 {
		t.Errorf("expected FriendProximity=1.0 (no friendships), got %v", rec.FriendProximity)
	}

	if rec.VIPPlacement != 1.0 {
		t.Errorf("expected VIPPlacement=1.0 (no VIPs), got %v", rec.VIPPlacement)
	}

	if rec.GroupCohesion != 1.0 {
		t.Errorf("expected GroupCohesion=1.0 (no multi-member groups), got %v", rec.GroupCohesion)
	}
}

func TestSubScoresInUnitRange(t *testing.T) {
	v := venue.Build(5, 5, 2)

	attendees := []attendee.Attendee{
		{Type: attendee.TypeVIP, Priority: 10, Group: "g"},
		{Type: attendee.TypeVIP, Priority: 10, Group: "g"},
		{Type: attendee.TypeRegular, Priority: 1, Group: "g"},
		{Type: attendee.TypeRegular, Priority: 7},
	}
	ix := attendee.Build(attendees)

	a := []int{24, 0, 12, 7} // scattered positions, including far corners

	rec, err := Evaluate(a, v, ix, equalWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, val := range map[string]float64{
		"FriendProximity": rec.FriendProximity,
		"VIPPlacement":    rec.VIPPlacement,
		"GroupCohesion":   rec.GroupCohesion,
		"StageDistance":   rec.StageDistance,
		"Total":           rec.Total,
	} {
		if val < 0 || val > 1 {
			t.Errorf("%s out of [0,1]: %v", name, val)
		}
	}
}

func TestVIPPlacementPerfectScore(t *testing.T) {
	v := venue.Build(3, 3, 1)
	ix := attendee.Build([]attendee.Attendee{{Type: attendee.TypeVIP, Priority: 5}})

	// seat 0 is row 0, a VIP row.
	rec, err := Evaluate([]int{0}, v, ix, Weights{VIP: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.VIPPlacement != 1.0 {
		t.Errorf("expected perfect VIP placement, got %v", rec.VIPPlacement)
	}
}

func TestVIPPlacementPenalizesBackRows(t *testing.T) {
	v := venue.Build(6, 3, 1)
	ix := attendee.Build([]attendee.Attendee{{Type: attendee.TypeVIP, Priority: 5}})

	// seat in the last row (row 5, far from VIP row) should score lower than row 1.
	row1Rec, _ := Evaluate([]int{3}, v, ix, Weights{VIP: 1})  // row 1
	row5Rec, _ := Evaluate([]int{15}, v, ix, Weights{VIP: 1}) // row 5

	if row5Rec.VIPPlacement >= row1Rec.VIPPlacement {
		t.Errorf("expected lower VIP score further from front: row1=%v row5=%v", row1Rec.VIPPlacement, row5Rec.VIPPlacement)
	}
}

func TestGroupCohesionAllInOneGroup(t *testing.T) {
	// All attendees in one group: no division by zero.
	v := venue.Build(3, 4, 0)

	attendees := make([]attendee.Attendee, 6)
	for i := range attendees {
		attendees[i] = attendee.Attendee{Group: "all", Priority: 5}
	}

	ix := attendee.Build(attendees)
	a := []int{0, 1, 2, 3, 4, 5}

	rec, err := Evaluate(a, v, ix, Weights{Group: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.IsNaN(rec.GroupCohesion) {
		t.Fatalf("group cohesion is NaN")
	}

	if rec.GroupCohesion < 0 || rec.GroupCohesion > 1 {
		t.Errorf("group cohesion out of range: %v", rec.GroupCohesion)
	}
}

func TestFriendProximityDistanceBuckets(t *testing.T) {
	tests := []struct {
		d    int
		want float64
	}{
		{1, 10},
		{2, 7},
		{3, 4},
		{4, 4},
		{5, 1.5},
		{30, 0},
	}

	for _, tt := range tests {
		got := friendPairScore(tt.d)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("friendPairScore(%d) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestEvaluateIsPure(t *testing.T) {
	v := venue.Build(4, 4, 1)
	attendees := []attendee.Attendee{
		{Type: attendee.TypeVIP, Priority: 8, Group: "g"},
		{Type: attendee.TypeRegular, Priority: 3, Group: "g"},
	}
	ix := attendee.Build(attendees)
	a := []int{5, 10}

	r1, _ := Evaluate(a, v, ix, equalWeights())
	r2, _ := Evaluate(a, v, ix, equalWeights())

	if r1 != r2 {
		t.Errorf("Evaluate is not deterministic: %+v vs %+v", r1, r2)
	}
}
