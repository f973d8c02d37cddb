// ABOUTME: Top-level seating optimization driver: population lifecycle, generation loop, SA polish
// ABOUTME: Owns configuration, venue, attendees and cooperative cancellation for one optimize() call

package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"seatopt/anneal"
	"seatopt/attendee"
	"seatopt/fitness"
	"seatopt/generate"
	"seatopt/genetic"
	"seatopt/pool"
	"seatopt/venue"
)

// Mode selects a generation/SA-iteration budget preset.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeBalanced Mode = "balanced"
	ModeThorough Mode = "thorough"
)

var modeBudgets = map[Mode][2]int{
	ModeFast:     {50, 20},
	ModeBalanced: {200, 100},
	ModeThorough: {500, 200},
}

// Errors raised synchronously at Optimize entry, before any state is
// mutated.
var (
	ErrVenueNotSet      = errors.New("optimizer: venue not configured")
	ErrNoAttendees      = errors.New("optimizer: no attendees supplied")
	ErrCapacityExceeded = errors.New("optimizer: attendee count exceeds venue capacity")
)

// Params are the optimizer's tunables.
type Params struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	ElitismCount   int
	TournamentSize int
	InitialTemp    float64
	CoolingRate    float64
	MinTemp        float64
	Mode           Mode
	Weights        fitness.Weights
}

// DefaultParams returns the standard tunables.
func DefaultParams() Params {
	return Params{
		PopulationSize: 100,
		Generations:    200,
		MutationRate:   0.15,
		CrossoverRate:  0.85,
		ElitismCount:   5,
		TournamentSize: 5,
		InitialTemp:    1000,
		CoolingRate:    0.995,
		MinTemp:        1,
		Mode:           ModeBalanced,
		Weights:        fitness.Weights{Friend: 1, VIP: 1, Group: 1, Distance: 1},
	}
}

// Progress is delivered to the progress callback each generation, in
// generation order.
type Progress struct {
	Generation       int
	TotalGenerations int
	BestFitness      float64
	ProgressFraction float64
}

// Result is returned by Optimize: the best assignment found, its fitness
// record, and the monotone history of best-total per generation.
type Result struct {
	Solution []int
	Fitness  fitness.Record
	History  []float64
}

// SeatedAttendee is one row of the SeatingPlan decoder output. SeatID
// (row letter plus 1-based seat number, e.g. "B7") is the format callers
// use for display and ticket generation.
type SeatedAttendee struct {
	AttendeeID string
	Row        int
	Col        int
	RowLabel   string
	SeatNumber int
	IsVIP      bool
	SeatID     string
}

// Optimizer owns all mutable state for one sequence of Optimize calls:
// venue, attendee index, params, and an injectable RNG. There is no
// process-global state; callers owning an instance serialize their own
// calls.
type Optimizer struct {
	mu           sync.Mutex
	venue        *venue.Venue
	index        *attendee.Index
	params       Params
	rng          *rand.Rand
	cancel       atomic.Bool
	lastSolution []int
}

// New creates an Optimizer with default params. Venue and attendees must
// be set before Optimize is called.
func New() *Optimizer {
	return &Optimizer{params: DefaultParams()}
}

// Configure replaces the optimizer's tunables.
func (o *Optimizer) Configure(p Params) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.params = p
}

// SetVenue builds and stores the seat table.
func (o *Optimizer) SetVenue(rows, cols, vipRows int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.venue = venue.Build(rows, cols, vipRows)
}

// SetAttendees builds and stores the attendee index.
func (o *Optimizer) SetAttendees(list []attendee.Attendee) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.index = attendee.Build(list)
}

// UpdateWeights replaces the four fitness weights, re-normalized to sum
// to 1. All-zero weights are rejected with fitness.ErrZeroWeights.
func (o *Optimizer) UpdateWeights(w fitness.Weights) error {
	normalized, err := w.Normalized()
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.params.Weights = normalized

	return nil
}

// SetMode selects the generation/SA-iteration budget preset.
func (o *Optimizer) SetMode(m Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.params.Mode = m
}

// SetRNG injects a seeded RNG. Two runs with the same seed, venue,
// attendees, and params produce identical solutions and history.
func (o *Optimizer) SetRNG(rng *rand.Rand) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.rng = rng
}

// Stop requests cooperative cancellation; checked at the top of the
// generation loop. The in-progress generation runs to completion and the
// final annealing pass is skipped.
func (o *Optimizer) Stop() {
	o.cancel.Store(true)
}

// liveTunables returns the optimizer's currently configured
// weights/mutation/crossover rates, or the given in-flight values if the
// configured weights sum to zero.
func (o *Optimizer) liveTunables(weights fitness.Weights, mutationRate, crossoverRate float64) (fitness.Weights, float64, float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.params.Weights.Sum() == 0 {
		return weights, mutationRate, crossoverRate
	}

	return o.params.Weights, o.params.MutationRate, o.params.CrossoverRate
}

// Optimize runs the full GA + SA pipeline. onProgress, if non-nil, is
// invoked once per generation in generation order.
func (o *Optimizer) Optimize(ctx context.Context, onProgress func(Progress)) (Result, error) {
	o.mu.Lock()
	v := o.venue
	ix := o.index
	params := o.params
	rng := o.rng
	o.mu.Unlock()

	if v == nil {
		return Result{}, ErrVenueNotSet
	}

	if ix == nil || ix.N() == 0 {
		return Result{}, ErrNoAttendees
	}

	if ix.N() > v.Capacity() {
		return Result{}, ErrCapacityExceeded
	}

	if params.Weights.Sum() == 0 {
		return Result{}, fitness.ErrZeroWeights
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(len(ix.Attendees)), uint64(v.Capacity())))
	}

	totalGenerations, saIterations := budgetFor(params.Mode, params.Generations)

	population := initPopulation(v, ix, params.PopulationSize, rng)

	scored, err := evaluatePopulation(population, v, ix, params.Weights)
	if err != nil {
		return Result{}, err
	}

	sortDescending(scored)

	best := cloneScored(scored[0])
	history := []float64{best.Fitness.Total}

	o.cancel.Store(false)

	for gen := 0; gen < totalGenerations; gen++ {
		if o.cancel.Load() {
			break
		}

		select {
		case <-ctx.Done():
			o.cancel.Store(true)
		default:
		}

		if o.cancel.Load() {
			break
		}

		// Re-read the live-tunable subset of params at each generation
		// boundary, so a config file watched concurrently via
		// config.Watch (see WatchConfigFile at the root package) can
		// retune fitness weights and mutation/crossover rates without
		// restarting the run. Structural knobs (population size,
		// elitism, tournament size, mode) stay fixed for the call's
		// duration.
		params.Weights, params.MutationRate, params.CrossoverRate = o.liveTunables(params.Weights, params.MutationRate, params.CrossoverRate)

		next := make([]genetic.Scored, 0, params.PopulationSize)

		elitism := params.ElitismCount
		if elitism > len(scored) {
			elitism = len(scored)
		}

		for i := 0; i < elitism; i++ {
			next = append(next, cloneScored(scored[i]))
		}

		for len(next) < params.PopulationSize {
			parent1 := genetic.TournamentSelect(scored, params.TournamentSize, rng)
			parent2 := genetic.TournamentSelect(scored, params.TournamentSize, rng)

			var child1, child2 []int
			if rng.Float64() < params.CrossoverRate {
				child1, child2 = genetic.OrderCrossover(parent1, parent2, rng)
			} else {
				child1, child2 = slices.Clone(parent1), slices.Clone(parent2)
			}

			child1 = genetic.SwapMutate(child1, params.MutationRate, gen, rng)
			child2 = genetic.SwapMutate(child2, params.MutationRate, gen, rng)

			if rng.Float64() < 0.3 {
				rec1, err := fitness.Evaluate(child1, v, ix, params.Weights)
				if err != nil {
					return Result{}, err
				}

				child1 = genetic.SmartMutate(child1, rec1, v, ix)
			}

			rec1, err := fitness.Evaluate(child1, v, ix, params.Weights)
			if err != nil {
				return Result{}, err
			}

			next = append(next, genetic.Scored{Assignment: child1, Fitness: rec1})

			if len(next) >= params.PopulationSize {
				break
			}

			rec2, err := fitness.Evaluate(child2, v, ix, params.Weights)
			if err != nil {
				return Result{}, err
			}

			next = append(next, genetic.Scored{Assignment: child2, Fitness: rec2})
		}

		scored = next
		sortDescending(scored)

		if scored[0].Fitness.Total > best.Fitness.Total {
			best = cloneScored(scored[0])
		}

		history = append(history, best.Fitness.Total)

		if onProgress != nil {
			onProgress(Progress{
				Generation:       gen,
				TotalGenerations: totalGenerations,
				BestFitness:      best.Fitness.Total,
				ProgressFraction: float64(gen+1) / float64(totalGenerations),
			})
		}

		// Scheduled yield every 5 generations, keeping long runs
		// responsive to the host. The progress callback above and the
		// context check at the top of the loop are the other
		// suspension points.
		if (gen+1)%5 == 0 {
			runtime.Gosched()
		}
	}

	if !o.cancel.Load() {
		saCfg := anneal.Config{
			InitialTemp: params.InitialTemp,
			CoolingRate: params.CoolingRate,
			MinTemp:     params.MinTemp,
			Iterations:  saIterations,
		}

		saResult, err := anneal.Run(best.Assignment, best.Fitness, v, ix, params.Weights, saCfg, rng)
		if err != nil {
			return Result{}, err
		}

		if saResult.BestFitness.Total > best.Fitness.Total {
			best = genetic.Scored{Assignment: saResult.Best, Fitness: saResult.BestFitness}
			history = append(history, best.Fitness.Total)
		}
	}

	o.mu.Lock()
	o.lastSolution = slices.Clone(best.Assignment)
	o.mu.Unlock()

	return Result{Solution: best.Assignment, Fitness: best.Fitness, History: history}, nil
}

// SeatingPlan decodes solution into per-attendee seat records. If
// solution is nil, it decodes the best assignment from the most recent
// Optimize call instead.
func (o *Optimizer) SeatingPlan(solution []int) []SeatedAttendee {
	o.mu.Lock()
	v := o.venue
	ix := o.index

	if solution == nil {
		solution = o.lastSolution
	}

	o.mu.Unlock()

	out := make([]SeatedAttendee, len(ix.Attendees))

	for _, a := range ix.Attendees {
		seat := v.Seat(solution[a.Index])
		rowLabel := string(rune('A' + seat.Row))
		seatNumber := seat.Col + 1

		out[a.Index] = SeatedAttendee{
			AttendeeID: a.ID,
			Row:        seat.Row,
			Col:        seat.Col,
			RowLabel:   rowLabel,
			SeatNumber: seatNumber,
			IsVIP:      seat.IsVIP,
			SeatID:     fmt.Sprintf("%s%d", rowLabel, seatNumber),
		}
	}

	return out
}

func budgetFor(mode Mode, configuredGenerations int) (generations, saIterations int) {
	budget, ok := modeBudgets[mode]
	if !ok {
		budget = modeBudgets[ModeBalanced]
	}

	generations = budget[0]
	if mode == ModeBalanced && configuredGenerations > 0 {
		generations = configuredGenerations
	}

	return generations, budget[1]
}

// initPopulation builds floor(0.2*size) greedy individuals (each
// perturbed by 5 swap mutations) and fills the remainder with random
// permutations.
func initPopulation(v *venue.Venue, ix *attendee.Index, size int, rng *rand.Rand) [][]int {
	if size <= 0 {
		size = 1
	}

	greedyCount := int(0.2 * float64(size))

	population := make([][]int, 0, size)

	for i := 0; i < greedyCount; i++ {
		a := generate.Greedy(v, ix)
		for s := 0; s < 5; s++ {
			a = genetic.SwapMutate(a, 1.0, 0, rng)
		}

		population = append(population, a)
	}

	for len(population) < size {
		population = append(population, generate.Random(v, ix.N(), rng))
	}

	return population
}

func evaluatePopulation(population [][]int, v *venue.Venue, ix *attendee.Index, w fitness.Weights) ([]genetic.Scored, error) {
	scored := make([]genetic.Scored, len(population))

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	wp := pool.NewWorkerPool(workers)
	defer wp.Close()

	var firstErr error

	var mu sync.Mutex

	for i := range population {
		i := i

		wp.Submit(func() {
			rec, err := fitness.Evaluate(population[i], v, ix, w)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()

				return
			}

			scored[i] = genetic.Scored{Assignment: population[i], Fitness: rec}
		})
	}

	wp.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return scored, nil
}

func sortDescending(scored []genetic.Scored) {
	slices.SortFunc(scored, func(a, b genetic.Scored) int {
		switch {
		case a.Fitness.Total > b.Fitness.Total:
			return -1
		case a.Fitness.Total < b.Fitness.Total:
			return 1
		default:
			return 0
		}
	})
}

func cloneScored(s genetic.Scored) genetic.Scored {
	return genetic.Scored{Assignment: slices.Clone(s.Assignment), Fitness: s.Fitness}
}
