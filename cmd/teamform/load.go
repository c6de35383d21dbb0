package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/teammate/internal/loadtest"
)

// Default load run settings.
const (
	defaultLoadParticipants = 500
	defaultLoadTimeout      = 30 * time.Second
	defaultRunTimeout       = 10 * time.Minute
)

var loadConfig = loadtest.Config{}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Exercise a running server with a generated roster",
	Long: `Enroll a generated roster into a running server with concurrent
workers, request a formation and verify that every participant was placed
exactly once.`,
	Example: `  teamform load --url http://localhost:9080 --count 1000 --size 5`,
	RunE:    runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadConfig.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVarP(&loadConfig.Participants, "count", "n", defaultLoadParticipants, "Participants to generate and enroll")
	f.IntVarP(&loadConfig.TeamSize, "size", "s", 5, "Team size")
	f.BoolVar(&loadConfig.Parallel, "parallel", true, "Ask for a parallel formation")
	f.IntVar(&loadConfig.Workers, "workers", runtime.NumCPU()*2, "Concurrent enrollment workers")
	f.Uint64Var(&loadConfig.Seed, "seed", 1, "Roster seed")
	f.DurationVar(&loadConfig.Timeout, "timeout", defaultLoadTimeout, "HTTP request timeout")
	f.BoolVarP(&loadConfig.Verbose, "verbose", "v", false, "Log every failed request")
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	stats, err := loadtest.Run(ctx, &loadConfig)
	if err != nil {
		printStatus(out, "✗", "Load run failed", color.FgRed)
		return err
	}
	printStatus(out, "✓", fmt.Sprintf("Enrolled %d (duplicates %d, failed %d) of %d",
		stats.Enrolled, stats.Duplicates, stats.Failed, stats.Generated), color.FgGreen)
	printStatus(out, "✓", fmt.Sprintf("Formed %d teams (%s), score %.2f in %s",
		stats.Teams, stats.Mode, stats.Score, stats.Duration.Round(time.Millisecond)), color.FgGreen)
	return nil
}
