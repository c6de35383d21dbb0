package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/teammate/internal/adapters/csvio"
	"github.com/okian/teammate/internal/adapters/mq/queue"
	"github.com/okian/teammate/internal/adapters/mq/worker"
	"github.com/okian/teammate/internal/config"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/orchestrator"
)

var (
	formInput    string
	formOutput   string
	formSize     int
	formParallel bool
	formSeed     uint64
	formAttempts int
	formTimeout  time.Duration
	formQuiet    bool
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Form balanced teams from a roster file",
	Long: `Read a roster CSV, search for the best balanced partition and print
the teams. Defaults come from TEAMMATE_* environment variables and the
optional TEAMMATE_CONFIG file; flags override them.

Rosters above the parallel threshold are split into batches that are
formed independently.`,
	Example: `  teamform form --input participants.csv --size 5
  teamform form -i participants.csv -s 4 --seed 42 -o teams.csv`,
	RunE: runForm,
}

func init() {
	formCmd.Flags().StringVarP(&formInput, "input", "i", "", "Roster CSV to read")
	formCmd.Flags().StringVarP(&formOutput, "output", "o", "", "Write the teams to this CSV file")
	formCmd.Flags().IntVarP(&formSize, "size", "s", 0, "Team size (default from config)")
	formCmd.Flags().BoolVar(&formParallel, "parallel", true, "Spread the search over the worker pool")
	formCmd.Flags().Uint64Var(&formSeed, "seed", 0, "Seed for a reproducible search (0 = random)")
	formCmd.Flags().IntVar(&formAttempts, "attempts", 0, "Candidate partitions to evaluate (default from config)")
	formCmd.Flags().DurationVar(&formTimeout, "timeout", 0, "Formation timeout (default from config)")
	formCmd.Flags().BoolVarP(&formQuiet, "quiet", "q", false, "Only print the summary")
	_ = formCmd.MarkFlagRequired("input")
}

func runForm(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	applyFormFlags(cmd, cfg)

	roster, err := csvio.LoadParticipants(ctx, formInput)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printStatus(out, "✓", fmt.Sprintf("Loaded %d participants from %s", len(roster.Participants), formInput), color.FgGreen)
	for _, skipped := range roster.Skipped {
		printStatus(out, "!", "Skipped "+skipped.Error(), color.FgYellow)
	}

	opts := []formation.BalancedOption{formation.WithAttempts(cfg.Attempts)}
	if cfg.Seed != 0 {
		opts = append(opts, formation.WithSeed(cfg.Seed))
	}
	pool := worker.NewPool(cfg.WorkerCount, queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize)))
	pool.Start(ctx)
	orch := orchestrator.New(formation.NewBalanced(opts...), pool,
		orchestrator.WithThreshold(cfg.ParallelThreshold),
		orchestrator.WithMinBatchSize(cfg.MinBatchSize),
		orchestrator.WithParallelism(cfg.Parallelism),
		orchestrator.WithTimeout(cfg.FormationTimeout()),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = orch.Shutdown(shutdownCtx)
	}()

	res, err := orch.Form(ctx, roster.Participants, cfg.DefaultTeamSize, formParallel)
	if err != nil {
		printStatus(out, "✗", "Formation failed", color.FgRed)
		return err
	}

	if !formQuiet {
		printTeams(out, res.Teams)
	}
	printStatus(out, "✓", fmt.Sprintf("Formed %d teams of up to %d (%s, %d batch(es)) in %s, score %.2f",
		len(res.Teams), cfg.DefaultTeamSize, res.Mode, res.Batches, res.Elapsed.Round(time.Millisecond), res.Score), color.FgGreen)

	if formOutput != "" {
		if err := csvio.SaveTeams(formOutput, res.Teams); err != nil {
			return err
		}
		printStatus(out, "✓", "Saved teams to "+formOutput, color.FgGreen)
	}
	return nil
}

// applyFormFlags lets explicitly set flags win over loaded configuration.
func applyFormFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.DefaultTeamSize = formSize
	}
	if flags.Changed("seed") {
		cfg.Seed = formSeed
	}
	if flags.Changed("attempts") {
		cfg.Attempts = formAttempts
	}
	if flags.Changed("timeout") {
		cfg.FormationTimeoutMS = int(formTimeout.Milliseconds())
	}
}
