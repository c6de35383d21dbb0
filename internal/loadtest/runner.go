// Package loadtest drives a running team formation server: it enrolls a
// generated roster concurrently, asks for a formation and checks that the
// returned partition covers the roster.
package loadtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/internal/sample"
	"github.com/okian/teammate/pkg/logger"
)

// Run executes a complete load run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	c := newClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("participants", config.Participants),
		logger.Int("teamSize", config.TeamSize),
		logger.Int("workers", config.Workers),
		logger.Bool("parallel", config.Parallel))

	// Step 1: Check service health
	if _, err := c.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate and enroll the roster
	roster := sample.Roster(config.Seed, config.Participants)
	stats.Generated = len(roster)
	enroll(ctx, c, config, roster, stats)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Step 3: Form teams on the server
	var f types.Formation
	req := map[string]any{"team_size": config.TeamSize, "parallel": config.Parallel}
	if _, err := c.post(ctx, "/teams", req, &f); err != nil {
		return nil, fmt.Errorf("team formation failed: %w", err)
	}
	stats.Teams, stats.Score, stats.Mode = f.TeamCount, f.AverageScore, f.Mode

	// Step 4: Verify the partition
	if err := Verify(roster, &f); err != nil {
		return nil, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "load run completed",
		logger.Int("enrolled", stats.Enrolled),
		logger.Int("teams", stats.Teams),
		logger.Float64("score", stats.Score),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}

// enroll submits the roster using a fixed set of workers.
func enroll(ctx context.Context, c *client, config *Config, roster []model.Participant, stats *Stats) {
	var enrolled, duplicate, failed atomic.Int64

	workers := max(1, config.Workers)
	jobs := make(chan model.Participant, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				code, err := c.post(ctx, "/participants", types.NewParticipantView(p), nil)
				switch {
				case code == http.StatusConflict:
					duplicate.Add(1)
				case err != nil:
					failed.Add(1)
					if config.Verbose {
						logger.Get().Warn(ctx, "enroll failed", logger.String("id", p.ID), logger.Error(err))
					}
				default:
					enrolled.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range roster {
			select {
			case <-ctx.Done():
				return
			case jobs <- roster[i]:
			}
		}
	}()
	wg.Wait()

	stats.Enrolled = int(enrolled.Load())
	stats.Duplicates = int(duplicate.Load())
	stats.Failed = int(failed.Load())
}
