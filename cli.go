// ABOUTME: CLI mode implementation for non-interactive seating optimization
// ABOUTME: Handles progress display, seating-plan output, and signal handling for command-line usage

package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"seatopt/config"
	"seatopt/fitness"
	"seatopt/optimizer"
)

const (
	spinnerUpdateInterval     = 500 * time.Millisecond
	fitnessImprovementEpsilon = 1e-10
)

// isTTY checks if the given file is a terminal.
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// RunCLI executes CLI mode optimization: load input, configure the
// optimizer, run it to completion (or until Ctrl-C), and print the
// resulting seating plan.
func RunCLI(opts RunOptions) error {
	if opts.DebugLog {
		if err := SetupDebugLog("seatopt-debug.log"); err != nil {
			return err
		}
	}

	input, err := LoadInput(opts.InputPath)
	if err != nil {
		return err
	}

	cfg, resolvedConfigPath, err := LoadOptimizerConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Mode != "" {
		cfg.Mode = opts.Mode
	}

	opt := optimizer.New()
	opt.SetVenue(input.Rows, input.Cols, input.VIPRows)
	opt.SetAttendees(input.Attendees)
	opt.Configure(paramsFromConfig(cfg))

	if opts.WatchConfig {
		stopWatch, err := WatchConfigFile(resolvedConfigPath, cfg, opt)
		if err != nil {
			return fmt.Errorf("failed to watch config file: %w", err)
		}

		defer stopWatch()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		opt.Stop()
		cancel()
	}()

	fmt.Println("\nOptimizing seating plan... (press Ctrl+C to stop early)")
	fmt.Printf("Venue: %dx%d (%d VIP rows), %d attendees\n", input.Rows, input.Cols, input.VIPRows, len(input.Attendees))
	fmt.Println()

	result, err := cliOptimize(ctx, opt)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	fmt.Println("\nSeating plan:")

	plan := opt.SeatingPlan(result.Solution)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "Attendee\tSeat\tRow\tCol\tVIP"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(w, "--------\t----\t---\t---\t---"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for _, seated := range plan {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\n",
			truncate(seated.AttendeeID, 24),
			seated.SeatID,
			seated.Row,
			seated.Col,
			seated.IsVIP,
		); err != nil {
			log.Printf("Warning: failed to write row: %v", err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	fmt.Printf("\nFinal fitness: total=%.4f friend=%.4f vip=%.4f group=%.4f stage=%.4f\n",
		result.Fitness.Total, result.Fitness.FriendProximity, result.Fitness.VIPPlacement,
		result.Fitness.GroupCohesion, result.Fitness.StageDistance)

	return nil
}

// cliOptimize wraps Optimizer.Optimize with CLI-specific progress
// display: a spinner while idle and a printed line whenever the best
// fitness improves.
func cliOptimize(ctx context.Context, opt *optimizer.Optimizer) (optimizer.Result, error) {
	startTime := time.Now()

	previousBest := -math.MaxFloat64
	minPrecision := 2

	isTerminal := isTTY(os.Stdout)

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerIdx := 0

	var statusTicker *time.Ticker
	if isTerminal {
		statusTicker = time.NewTicker(spinnerUpdateInterval)
		defer statusTicker.Stop()
	}

	formatElapsed := func(d time.Duration) string {
		var s string
		if d >= time.Minute {
			s = fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
		} else {
			s = fmt.Sprintf("%ds", int(d.Seconds()))
		}

		return fmt.Sprintf("%6s", s)
	}

	printStatus := func(gen int) {
		if !isTerminal {
			return
		}

		elapsed := time.Since(startTime)
		fmt.Printf("\r%s Gen %d %s     ", formatElapsed(elapsed), gen, spinnerFrames[spinnerIdx])
		spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
	}

	progressCh := make(chan optimizer.Progress, 10)

	type outcome struct {
		result optimizer.Result
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		result, err := opt.Optimize(ctx, func(p optimizer.Progress) {
			select {
			case progressCh <- p:
			default:
			}
		})
		close(progressCh)
		done <- outcome{result: result, err: err}
	}()

	var currentGen, completedGens int

	for {
		select {
		case p, ok := <-progressCh:
			if !ok {
				progressCh = nil
				continue
			}

			currentGen = p.Generation
			completedGens = p.Generation + 1

			if !hasFitnessImproved(p.BestFitness, previousBest, fitnessImprovementEpsilon) {
				continue
			}

			elapsedStr := formatElapsed(time.Since(startTime))

			if isTerminal {
				fmt.Print("\r\033[K")
			}

			var fitnessStr string
			fitnessStr, minPrecision = FormatWithMonotonicPrecision(previousBest, p.BestFitness, minPrecision)
			fmt.Printf("%s Gen %7d - fitness: %s\n", elapsedStr, currentGen, fitnessStr)
			previousBest = p.BestFitness

		case <-tickerChan(statusTicker):
			printStatus(currentGen)

		case o := <-done:
			if isTerminal {
				fmt.Print("\r\033[K")
			}

			fmt.Printf("\nCompleted %d generations in %v\n", completedGens, time.Since(startTime).Round(time.Millisecond))

			return o.result, o.err
		}
	}
}

// tickerChan returns t's channel, or nil if t is nil. A nil channel
// blocks forever in a select, which is exactly the desired behavior when
// no spinner ticker is running (non-TTY output).
func tickerChan(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}

	return t.C
}

func paramsFromConfig(cfg config.OptimizerConfig) optimizer.Params {
	return optimizer.Params{
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		MutationRate:   cfg.MutationRate,
		CrossoverRate:  cfg.CrossoverRate,
		ElitismCount:   cfg.ElitismCount,
		TournamentSize: cfg.TournamentSize,
		InitialTemp:    cfg.InitialTemp,
		CoolingRate:    cfg.CoolingRate,
		MinTemp:        cfg.MinTemp,
		Mode:           optimizer.Mode(cfg.Mode),
		Weights: fitness.Weights{
			Friend:   cfg.Weights.Friend,
			VIP:      cfg.Weights.VIP,
			Group:    cfg.Weights.Group,
			Distance: cfg.Weights.Distance,
		},
	}
}
