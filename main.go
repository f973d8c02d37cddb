// ABOUTME: Entry point for seatopt
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI or visual progress modes

// Package main provides the entry point for seatopt, a genetic-algorithm
// and simulated-annealing based seating optimizer for event planning.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	visual := flag.Bool("visual", false, "show a live progress display while optimizing")
	debug := flag.Bool("debug", false, "enable debug logging to seatopt-debug.log")
	mode := flag.String("mode", "", "optimization mode: fast, balanced, or thorough (default: from config)")
	configPath := flag.String("config", "", "path to a TOML config file (default: ./seatopt.toml or ~/.config/seatopt/config.toml)")
	watchConfig := flag.Bool("watch-config", false, "reload weights and mutation/crossover rates from the config file as it's edited, without restarting")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: seatopt [flags] <input.json>")
		fmt.Println("Example: seatopt -mode=thorough conference-hall.json")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	inputPath := args[0]

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	opts := RunOptions{
		InputPath:   inputPath,
		ConfigPath:  *configPath,
		Mode:        *mode,
		DebugLog:    *debug,
		WatchConfig: *watchConfig,
	}

	if *visual {
		if err := RunVisual(opts); err != nil {
			log.Printf("visual mode error: %v", err)

			return 1
		}

		return 0
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function.
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes a heap profile to file.
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
