// ABOUTME: Visual mode implementation using bubbletea for a live progress display
// ABOUTME: Renders a progress bar, generation rate, and best-fitness readout while optimizing

package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seatopt/optimizer"
)

// visualKeyMap is the sole keybinding the read-only progress view needs.
type visualKeyMap struct {
	Quit key.Binding
}

var visualKeys = visualKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "stop and return best-so-far"),
	),
}

var (
	visualTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12"))

	visualLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	visualValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	visualBarFilledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10"))

	visualBarEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("238"))

	visualStatusStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	visualHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// visualModel is the bubbletea model for seatopt's live progress display.
// The view is read-only: a live best-fitness trace to watch and a cancel
// key.
type visualModel struct {
	input      InputData
	opt        *optimizer.Optimizer
	ctx        context.Context
	cancel     context.CancelFunc
	updateChan chan OptimizeUpdate
	resultChan chan visualResult

	generation       int
	totalGenerations int
	bestFitness      float64
	genPerSec        float64
	startTime        time.Time

	result   optimizer.Result
	err      error
	done     bool
	quitting bool

	width int
}

// visualResult carries the final Optimize outcome across goroutine
// boundaries as a single bubbletea message.
type visualResult struct {
	result optimizer.Result
	err    error
}

// RunVisual executes visual mode: load input, configure the optimizer, and
// drive it inside a bubbletea program that repaints a live progress view
// each generation, same data the CLI prints as lines but rendered as a
// persistent dashboard.
func RunVisual(opts RunOptions) error {
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

	m := newVisualModel(*input, opt)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("visual mode error: %w", err)
	}

	final, ok := finalModel.(visualModel)
	if !ok {
		return fmt.Errorf("visual mode: unexpected model type")
	}

	if final.err != nil {
		return fmt.Errorf("optimization failed: %w", final.err)
	}

	return nil
}

func newVisualModel(input InputData, opt *optimizer.Optimizer) visualModel {
	ctx, cancel := context.WithCancel(context.Background())

	return visualModel{
		input:      input,
		opt:        opt,
		ctx:        ctx,
		cancel:     cancel,
		updateChan: make(chan OptimizeUpdate, 16),
		resultChan: make(chan visualResult, 1),
		startTime:  time.Now(),
	}
}

// Init starts the optimizer in the background and begins listening for
// progress updates.
func (m visualModel) Init() tea.Cmd {
	return tea.Batch(
		runOptimize(m.ctx, m.opt, m.updateChan, m.resultChan),
		waitForOptimizeUpdate(m.updateChan),
	)
}

// runOptimize runs Optimize in a goroutine, forwarding every progress
// event onto updateChan and the final result onto resultChan.
func runOptimize(ctx context.Context, opt *optimizer.Optimizer, updateChan chan<- OptimizeUpdate, resultChan chan<- visualResult) tea.Cmd {
	return func() tea.Msg {
		tracker := newRateTracker()

		result, err := opt.Optimize(ctx, func(p optimizer.Progress) {
			select {
			case updateChan <- tracker.observe(p):
			default:
			}
		})

		close(updateChan)
		resultChan <- visualResult{result: result, err: err}

		return nil
	}
}

// waitForOptimizeUpdate blocks for the next progress update and returns it
// as a bubbletea message, re-queued after every delivery.
func waitForOptimizeUpdate(updateChan <-chan OptimizeUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updateChan
		if !ok {
			return optimizeChannelClosedMsg{}
		}

		return update
	}
}

// optimizeChannelClosedMsg signals that the progress channel has closed,
// so the model should switch to waiting on the final result instead.
type optimizeChannelClosedMsg struct{}

// waitForResult blocks for the final Optimize outcome.
func waitForResult(resultChan <-chan visualResult) tea.Cmd {
	return func() tea.Msg {
		return <-resultChan
	}
}

func (m visualModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case OptimizeUpdate:
		m.generation = msg.Generation
		m.totalGenerations = msg.TotalGenerations
		m.bestFitness = msg.BestFitness
		m.genPerSec = msg.GenPerSec

		return m, waitForOptimizeUpdate(m.updateChan)

	case optimizeChannelClosedMsg:
		return m, waitForResult(m.resultChan)

	case visualResult:
		m.done = true
		m.result = msg.result
		m.err = msg.err

		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, visualKeys.Quit) {
			m.quitting = true
			m.opt.Stop()
			m.cancel()

			return m, waitForResult(m.resultChan)
		}
	}

	return m, nil
}

func (m visualModel) View() string {
	if m.done {
		return m.renderFinal()
	}

	var s string

	s += visualTitleStyle.Render("seatopt — live optimization") + "\n\n"
	s += fmt.Sprintf("Venue: %dx%d (%d VIP rows), %d attendees\n\n",
		m.input.Rows, m.input.Cols, m.input.VIPRows, len(m.input.Attendees))

	s += m.renderProgress() + "\n\n"
	s += m.renderStatus() + "\n"
	s += visualHelpStyle.Render("q: stop and return best-so-far")

	if m.quitting {
		s += "\n" + visualLabelStyle.Render("stopping, waiting for current generation to finish...")
	}

	return s
}

// renderProgress draws a fixed-width text progress bar plus generation
// count.
func (m visualModel) renderProgress() string {
	const barWidth = 40

	fraction := 0.0
	if m.totalGenerations > 0 {
		fraction = float64(m.generation+1) / float64(m.totalGenerations)
	}

	fraction = math.Min(math.Max(fraction, 0), 1)
	filled := int(fraction * barWidth)

	bar := visualBarFilledStyle.Render(repeatRune('█', filled)) +
		visualBarEmptyStyle.Render(repeatRune('░', barWidth-filled))

	return fmt.Sprintf("%s %s\nGeneration %s / %s",
		bar,
		visualValueStyle.Render(fmt.Sprintf("%5.1f%%", fraction*100)),
		visualValueStyle.Render(fmt.Sprintf("%d", m.generation)),
		visualLabelStyle.Render(fmt.Sprintf("%d", m.totalGenerations)),
	)
}

func (m visualModel) renderStatus() string {
	elapsed := time.Since(m.startTime).Round(time.Second)

	line := fmt.Sprintf(" best fitness: %s  |  %s gen/sec  |  elapsed %s ",
		FormatMinimalPrecision(0, m.bestFitness),
		fmt.Sprintf("%.1f", m.genPerSec),
		elapsed,
	)

	return visualStatusStyle.Render(line)
}

func (m visualModel) renderFinal() string {
	if m.err != nil {
		return fmt.Sprintf("optimization failed: %v\n", m.err)
	}

	var s string

	s += visualTitleStyle.Render("Optimization complete") + "\n\n"
	s += fmt.Sprintf("Final fitness: total=%.4f friend=%.4f vip=%.4f group=%.4f stage=%.4f\n\n",
		m.result.Fitness.Total, m.result.Fitness.FriendProximity, m.result.Fitness.VIPPlacement,
		m.result.Fitness.GroupCohesion, m.result.Fitness.StageDistance)

	plan := m.opt.SeatingPlan(m.result.Solution)

	maxRows := 20
	if len(plan) < maxRows {
		maxRows = len(plan)
	}

	for i := 0; i < maxRows; i++ {
		seated := plan[i]
		s += fmt.Sprintf("%-24s  %-6s  vip=%v\n", truncate(seated.AttendeeID, 24), seated.SeatID, seated.IsVIP)
	}

	if len(plan) > maxRows {
		s += fmt.Sprintf("... and %d more\n", len(plan)-maxRows)
	}

	return s
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		return ""
	}

	runes := make([]rune, n)
	for i := range runes {
		runes[i] = r
	}

	return string(runes)
}
