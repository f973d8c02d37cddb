// ABOUTME: Shared initialization code for CLI and visual modes
// ABOUTME: Provides venue/attendee JSON loading, config setup, and debug logging

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"seatopt/attendee"
	"seatopt/config"
	"seatopt/optimizer"
)

// Debug logger - writes to file for debugging.
var debugLog *log.Logger

// RunOptions contains command-line options shared by CLI and visual modes.
type RunOptions struct {
	InputPath   string
	ConfigPath  string
	Mode        string
	DebugLog    bool
	WatchConfig bool
}

// venueSpec mirrors the venue object of the input JSON document.
type venueSpec struct {
	Rows    int `json:"rows"`
	Cols    int `json:"cols"`
	VIPRows int `json:"vip_rows"`
}

// attendeeSpec mirrors one entry of the input JSON document's attendees array.
type attendeeSpec struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Group      string `json:"group"`
	Preference string `json:"preference"`
	Priority   int    `json:"priority"`
}

// inputDocument is the full shape of a venue+attendees JSON file.
type inputDocument struct {
	Venue     venueSpec      `json:"venue"`
	Attendees []attendeeSpec `json:"attendees"`
}

// InputData is the parsed and validated result of loading an input document.
type InputData struct {
	Rows, Cols, VIPRows int
	Attendees           []attendee.Attendee
}

// LoadInput reads and validates a venue+attendees JSON document from path.
func LoadInput(path string) (*InputData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var doc inputDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %w", err)
	}

	if doc.Venue.Rows <= 0 || doc.Venue.Cols <= 0 {
		return nil, errors.New("venue must have positive rows and cols")
	}

	if len(doc.Attendees) == 0 {
		return nil, errors.New("attendee list is empty")
	}

	attendees := make([]attendee.Attendee, len(doc.Attendees))
	for i, a := range doc.Attendees {
		t := attendee.TypeRegular
		if a.Type == string(attendee.TypeVIP) {
			t = attendee.TypeVIP
		}

		pref := attendee.Preference(a.Preference)
		if pref == "" {
			pref = attendee.PreferenceAny
		}

		attendees[i] = attendee.Attendee{
			ID:         a.ID,
			Type:       t,
			Group:      a.Group,
			Preference: pref,
			Priority:   a.Priority,
		}
	}

	return &InputData{
		Rows:      doc.Venue.Rows,
		Cols:      doc.Venue.Cols,
		VIPRows:   doc.Venue.VIPRows,
		Attendees: attendees,
	}, nil
}

// LoadOptimizerConfig loads the TOML tunables from path, falling back to
// config.DefaultConfig() when path is empty or the file doesn't exist.
// It returns the resolved path alongside the config so callers can pass
// the same path to WatchConfigFile.
func LoadOptimizerConfig(path string) (config.OptimizerConfig, string, error) {
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path)

	return cfg, path, err
}

// WatchConfigFile starts watching path for edits and applies retuned
// weights/mutation/crossover rates to opt as they land, without
// restarting the run. It returns a stop function; callers must call it
// to release the watcher goroutine.
func WatchConfigFile(path string, initial config.OptimizerConfig, opt *optimizer.Optimizer) (stop func(), err error) {
	sc := config.NewShared(initial)
	stopWatch := make(chan struct{})

	if err := config.Watch(path, sc, stopWatch, debugLog); err != nil {
		return nil, err
	}

	applyDone := make(chan struct{})

	go func() {
		defer close(applyDone)

		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopWatch:
				return
			case <-ticker.C:
				cfg := sc.Get()
				debugf("config watch: applying weights=%+v mutation=%.3f crossover=%.3f", cfg.Weights, cfg.MutationRate, cfg.CrossoverRate)
				opt.Configure(paramsFromConfig(cfg))
			}
		}
	}()

	return func() {
		close(stopWatch)
		<-applyDone
	}, nil
}

// SetupDebugLog initializes debug logging to the given file.
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	fileInfo, _ := os.Stdout.Stat()
	if (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging to a file.
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages to file if debug logging is enabled.
func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// truncate truncates a string to maxLen characters, adding "..." if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}

// hasFitnessImproved returns true if newTotal is significantly better
// than oldTotal. Seating fitness is maximized, so improvement means a
// strictly higher total.
func hasFitnessImproved(newTotal, oldTotal, epsilon float64) bool {
	return newTotal > oldTotal+epsilon
}
