// ABOUTME: Attendee records and derived group/friendship indices
// ABOUTME: Builds the group map and symmetric friendship map from an attendee list

package attendee

import (
	"slices"
	"strconv"
)

// Preference is a stage-zone seating preference.
type Preference string

const (
	PreferenceAny    Preference = "any"
	PreferenceFront  Preference = "front"
	PreferenceMiddle Preference = "middle"
	PreferenceBack   Preference = "back"
)

// Type distinguishes VIP attendees from regular ones.
type Type string

const (
	TypeVIP     Type = "vip"
	TypeRegular Type = "regular"
)

// DefaultPriority is applied when an attendee's Priority field is unset (0).
const DefaultPriority = 5

// Attendee is a single attendee record. Index is assigned by Build and
// matches the attendee's position in the input list.
type Attendee struct {
	ID         string
	Type       Type
	Group      string
	Preference Preference
	Priority   int
	Index      int
}

// Index holds the attendee list plus derived lookups built once per
// optimization call and treated as immutable for its duration.
type Index struct {
	Attendees   []Attendee
	Groups      map[string][]int // group tag -> ordered attendee indices
	Friendships map[int]map[int]bool
}

// Build constructs an Index from a raw attendee list:
//   - priority defaults to 5 if missing (<= 0)
//   - if id is absent, the 0-based index is used
//   - groups preserve attendee insertion order
//   - friendships are symmetric and exclude self
func Build(list []Attendee) *Index {
	attendees := make([]Attendee, len(list))
	copy(attendees, list)

	groups := make(map[string][]int)

	for i := range attendees {
		a := &attendees[i]
		a.Index = i

		if a.ID == "" {
			a.ID = strconv.Itoa(i)
		}

		if a.Priority <= 0 {
			a.Priority = DefaultPriority
		}

		if a.Preference == "" {
			a.Preference = PreferenceAny
		}

		if a.Group != "" {
			groups[a.Group] = append(groups[a.Group], i)
		}
	}

	friendships := make(map[int]map[int]bool)

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}

		for _, i := range members {
			for _, j := range members {
				if i == j {
					continue
				}

				if friendships[i] == nil {
					friendships[i] = make(map[int]bool)
				}

				friendships[i][j] = true
			}
		}
	}

	return &Index{
		Attendees:   attendees,
		Groups:      groups,
		Friendships: friendships,
	}
}

// N is the number of attendees.
func (ix *Index) N() int {
	return len(ix.Attendees)
}

// OrderedGroupTags returns the group tags in sorted order, so callers that
// iterate every group (fitness's group-cohesion scoring, the annealer's
// weak-area search) get deterministic summation/search order instead of
// Go's randomized map iteration. Same determinism rationale as
// OrderedFriendPairs.
func (ix *Index) OrderedGroupTags() []string {
	tags := make([]string, 0, len(ix.Groups))
	for tag := range ix.Groups {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	return tags
}

// OrderedFriendPairs returns every directed (i,j) friendship pair, iterating
// i and j in ascending attendee-index order so results don't depend on
// map iteration order.
func (ix *Index) OrderedFriendPairs() [][2]int {
	var pairs [][2]int

	keys := make([]int, 0, len(ix.Friendships))
	for i := range ix.Friendships {
		keys = append(keys, i)
	}

	slices.Sort(keys)

	for _, i := range keys {
		partners := make([]int, 0, len(ix.Friendships[i]))
		for j := range ix.Friendships[i] {
			partners = append(partners, j)
		}

		slices.Sort(partners)

		for _, j := range partners {
			pairs = append(pairs, [2]int{i, j})
		}
	}

	return pairs
}
