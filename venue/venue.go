// ABOUTME: Venue seat matrix model with precomputed stage distances
// ABOUTME: Builds an immutable, row-major indexed seat table from rows/cols/vip_rows

package venue

import "math"

// Seat is a single position in the venue's row-major seat table.
type Seat struct {
	Row             int
	Col             int
	IsVIP           bool
	DistanceToStage float64
}

// Venue is an immutable rectangular seat matrix. Build constructs one; it
// carries no mutators.
type Venue struct {
	Rows    int
	Cols    int
	VIPRows int
	Seats   []Seat
	MaxDist float64 // normalization constant for stage-distance scoring
}

// Build produces an indexed seat table with precomputed DistanceToStage and
// the MaxDist normalization constant.
//
// Seat at index r*cols+c has row r, col c. VIP seats form the top vipRows
// rows (row < vipRows). The stage is treated as a virtual point one row in
// front of row 0, centered on columns.
func Build(rows, cols, vipRows int) *Venue {
	seats := make([]Seat, rows*cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			seats[idx] = Seat{
				Row:             r,
				Col:             c,
				IsVIP:           r < vipRows,
				DistanceToStage: stageDistance(r, c, cols),
			}
		}
	}

	return &Venue{
		Rows:    rows,
		Cols:    cols,
		VIPRows: vipRows,
		Seats:   seats,
		MaxDist: maxVenueDistance(rows, cols),
	}
}

// stageDistance is the Euclidean distance from seat (r,c) to a virtual
// stage point one row in front of row 0, centered on columns.
func stageDistance(r, c, cols int) float64 {
	dr := float64(r + 1)
	dc := float64(c) - float64(cols)/2

	return math.Sqrt(dr*dr + dc*dc)
}

// maxVenueDistance is the theoretical maximum stage distance, used to
// normalize stage-distance fitness scores to [0,1].
func maxVenueDistance(rows, cols int) float64 {
	dr := float64(rows + 1)
	dc := float64(cols) / 2

	return math.Sqrt(dr*dr + dc*dc)
}

// Seat returns the seat at a given position, by row-major index.
func (v *Venue) Seat(pos int) Seat {
	return v.Seats[pos]
}

// Capacity is the total number of seats, R*C.
func (v *Venue) Capacity() int {
	return v.Rows * v.Cols
}

// ManhattanDistance returns the grid (taxicab) distance between two seat
// positions, by row-major index. This is the distance metric used
// throughout fitness scoring; Euclidean is used only for stage distance.
func (v *Venue) ManhattanDistance(a, b int) int {
	sa, sb := v.Seats[a], v.Seats[b]

	return absInt(sa.Row-sb.Row) + absInt(sa.Col-sb.Col)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
