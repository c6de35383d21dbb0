package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/teammate/internal/adapters/mq/queue"
	"github.com/okian/teammate/internal/adapters/mq/worker"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/orchestrator"
	"github.com/okian/teammate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func roster(n int) []model.Participant {
	games := []string{"Chess", "FIFA", "Valorant", "Dota", "Basketball"}
	scores := []int{95, 60, 75, 91, 55, 82}
	roles := model.Roles()
	out := make([]model.Participant, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("P%03d", i+1)
		p, err := model.NewParticipant(id, "Player "+id, id+"@club.test",
			games[i%len(games)], 1+i%10, roles[i%len(roles)], scores[i%len(scores)])
		if err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

func newPool(workers int) *worker.Pool {
	pool := worker.NewPool(workers, queue.NewInMemoryQueue(queue.WithCapacity(64)))
	pool.Start(context.Background())
	return pool
}

func covered(teams []*model.Team) map[string]int {
	seen := make(map[string]int)
	for _, t := range teams {
		for _, m := range t.Members() {
			seen[m.ID]++
		}
	}
	return seen
}

func memberIDs(teams []*model.Team) [][]string {
	out := make([][]string, len(teams))
	for i, t := range teams {
		for _, m := range t.Members() {
			out[i] = append(out[i], m.ID)
		}
	}
	return out
}

func shortTeams(teams []*model.Team, teamSize int) int {
	short := 0
	for _, t := range teams {
		if t.Size() < teamSize {
			short++
		}
	}
	return short
}

// blocking waits for cancellation in every entry point.
type blocking struct{}

func (blocking) FormTeams(ctx context.Context, _ []model.Participant, _ int) ([]*model.Team, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blocking) FormTeamsParallel(ctx context.Context, _ []model.Participant, _ int, exec formation.Executor) ([]*model.Team, error) {
	err := exec.Execute(ctx, 4, func(ctx context.Context, _ int) error {
		<-ctx.Done()
		return ctx.Err()
	})
	return nil, err
}

func (blocking) Name() string        { return "blocking" }
func (blocking) Description() string { return "never finishes" }

func TestOrchestratorSmallPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given an orchestrator over a running pool", t, func() {
		pool := newPool(4)
		strategy := formation.NewBalanced(formation.WithSeed(7), formation.WithAttempts(40))
		o := orchestrator.New(strategy, pool, orchestrator.WithThreshold(50))
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When forming 12 participants into teams of 4 in parallel", func() {
			res, err := o.Form(ctx, roster(12), 4, true)

			Convey("Then all attempts are searched and 3 full teams come back", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, orchestrator.ModeAttempts)
				So(res.Teams, ShouldHaveLength, 3)
				for _, team := range res.Teams {
					So(team.Size(), ShouldEqual, 4)
				}
				So(res.Score, ShouldBeBetweenOrEqual, 0.0, 100.0)
			})
		})

		Convey("When the same seed runs sequentially and in parallel", func() {
			participants := roster(30)
			seq, err := o.Form(ctx, participants, 5, false)
			So(err, ShouldBeNil)
			par, err := o.Form(ctx, participants, 5, true)
			So(err, ShouldBeNil)

			Convey("Then both pick the same partition", func() {
				So(seq.Mode, ShouldEqual, orchestrator.ModeSequential)
				So(memberIDs(par.Teams), ShouldResemble, memberIDs(seq.Teams))
				So(par.Score, ShouldEqual, seq.Score)
			})
		})

		Convey("When the input is invalid", func() {
			_, errSize := o.Form(ctx, roster(5), 0, true)
			_, errEmpty := o.Form(ctx, nil, 3, false)

			Convey("Then formation is rejected before any work starts", func() {
				So(errors.Is(errSize, formation.ErrInvalidTeamSize), ShouldBeTrue)
				So(errors.Is(errEmpty, formation.ErrNoParticipants), ShouldBeTrue)
			})
		})
	})
}

func TestOrchestratorLargePool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a roster above the threshold", t, func() {
		pool := newPool(4)
		o := orchestrator.New(formation.NewBalanced(), pool,
			orchestrator.WithThreshold(50),
			orchestrator.WithParallelism(4),
			orchestrator.WithMinBatchSize(10))
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When the roster splits evenly", func() {
			participants := roster(120)
			res, err := o.Form(ctx, participants, 5, true)

			Convey("Then each batch is formed independently and concatenated", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, orchestrator.ModeBatches)
				So(res.Batches, ShouldEqual, 4)
				So(res.Teams, ShouldHaveLength, 24)
				seen := covered(res.Teams)
				So(seen, ShouldHaveLength, 120)
			})
		})

		Convey("When the roster leaves a remainder", func() {
			participants := roster(125)
			res, err := o.Form(ctx, participants, 5, true)

			Convey("Then the tail is formed too and team ids stay unique", func() {
				So(err, ShouldBeNil)
				seen := covered(res.Teams)
				So(seen, ShouldHaveLength, 125)
				for _, p := range participants {
					So(seen[p.ID], ShouldEqual, 1)
				}
				ids := make(map[string]bool)
				for i, team := range res.Teams {
					So(team.ID, ShouldEqual, model.TeamID(i+1))
					ids[team.ID] = true
				}
				So(ids, ShouldHaveLength, len(res.Teams))
			})

			Convey("And batches hold whole teams so none come back short", func() {
				So(res.Batches, ShouldEqual, 4)
				So(res.Teams, ShouldHaveLength, 25)
				So(shortTeams(res.Teams, 5), ShouldEqual, 0)
			})
		})

		Convey("When the roster is only just above the threshold", func() {
			res, err := o.Form(ctx, roster(51), 5, true)

			Convey("Then the minimum batch size caps the batch count", func() {
				So(err, ShouldBeNil)
				So(res.Batches, ShouldEqual, 4)
				So(covered(res.Teams), ShouldHaveLength, 51)
			})

			Convey("And only the final team is short", func() {
				So(res.Teams, ShouldHaveLength, 11)
				So(shortTeams(res.Teams, 5), ShouldEqual, 1)
				So(res.Teams[len(res.Teams)-1].Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given more workers than whole teams per batch", t, func() {
		pool := newPool(4)
		o := orchestrator.New(formation.NewBalanced(), pool,
			orchestrator.WithThreshold(50),
			orchestrator.WithParallelism(8),
			orchestrator.WithMinBatchSize(10))
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When 100 participants form teams of 5", func() {
			res, err := o.Form(ctx, roster(100), 5, true)

			Convey("Then batch sizes round up to whole teams and the partition holds", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, orchestrator.ModeBatches)
				So(res.Batches, ShouldEqual, 7)
				So(res.Teams, ShouldHaveLength, 20)
				So(shortTeams(res.Teams, 5), ShouldEqual, 0)
				So(covered(res.Teams), ShouldHaveLength, 100)
			})
		})
	})

	Convey("Given a team size that does not divide the roster", t, func() {
		pool := newPool(4)
		o := orchestrator.New(formation.NewBalanced(), pool,
			orchestrator.WithThreshold(5),
			orchestrator.WithParallelism(4),
			orchestrator.WithMinBatchSize(1))
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When 22 participants form teams of 4", func() {
			res, err := o.Form(ctx, roster(22), 4, true)

			Convey("Then ceil(n/size) teams come back with at most one short", func() {
				So(err, ShouldBeNil)
				So(res.Batches, ShouldEqual, 3)
				So(res.Teams, ShouldHaveLength, 6)
				So(shortTeams(res.Teams, 4), ShouldEqual, 1)
				So(covered(res.Teams), ShouldHaveLength, 22)
			})
		})
	})
}

func TestOrchestratorFailures(t *testing.T) {
	ctx := context.Background()

	Convey("Given an orchestrator with a short timeout", t, func() {
		pool := newPool(2)
		o := orchestrator.New(blocking{}, pool, orchestrator.WithTimeout(30*time.Millisecond))
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When a sequential run never finishes", func() {
			_, err := o.Form(ctx, roster(6), 3, false)

			Convey("Then it fails with ErrTimeout", func() {
				So(errors.Is(err, formation.ErrTimeout), ShouldBeTrue)
			})
		})

		Convey("When parallel units never finish", func() {
			start := time.Now()
			_, err := o.Form(ctx, roster(6), 3, true)

			Convey("Then outstanding units are cancelled and ErrTimeout is returned", func() {
				So(errors.Is(err, formation.ErrTimeout), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 2*time.Second)
			})
		})
	})

	Convey("Given units executed on the pool", t, func() {
		pool := newPool(2)
		o := orchestrator.New(formation.NewBalanced(), pool)
		defer func() { _ = o.Shutdown(ctx) }()

		Convey("When one unit fails", func() {
			boom := errors.New("boom")
			var ran atomic.Int64
			err := o.Execute(ctx, 20, func(_ context.Context, i int) error {
				ran.Add(1)
				if i == 3 {
					return boom
				}
				return nil
			})

			Convey("Then the run aborts with one wrapped failure", func() {
				So(errors.Is(err, formation.ErrFormationFailed), ShouldBeTrue)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When a unit panics", func() {
			err := o.Execute(ctx, 3, func(_ context.Context, i int) error {
				if i == 1 {
					panic("bad unit")
				}
				return nil
			})

			Convey("Then the panic is reported as a failure", func() {
				So(errors.Is(err, formation.ErrFormationFailed), ShouldBeTrue)
				So(errors.Is(err, worker.ErrPanic), ShouldBeTrue)
			})
		})

		Convey("When every unit succeeds", func() {
			var ran atomic.Int64
			err := o.Execute(ctx, 20, func(context.Context, int) error {
				ran.Add(1)
				return nil
			})

			Convey("Then all of them ran", func() {
				So(err, ShouldBeNil)
				So(ran.Load(), ShouldEqual, int64(20))
			})
		})
	})
}

func TestOrchestratorCancelledPool(t *testing.T) {
	Convey("Given a pool whose start context is cancelled", t, func() {
		poolCtx, cancel := context.WithCancel(context.Background())
		pool := worker.NewPool(2, queue.NewInMemoryQueue(queue.WithCapacity(64)))
		pool.Start(poolCtx)
		o := orchestrator.New(formation.NewBalanced(), pool, orchestrator.WithTimeout(2*time.Second))
		cancel()
		time.Sleep(50 * time.Millisecond)

		Convey("When a parallel run is requested", func() {
			start := time.Now()
			_, err := o.Form(context.Background(), roster(12), 4, true)

			Convey("Then it fails promptly with ErrStopped instead of timing out", func() {
				So(errors.Is(err, worker.ErrStopped), ShouldBeTrue)
				So(errors.Is(err, formation.ErrTimeout), ShouldBeFalse)
				So(time.Since(start), ShouldBeLessThan, time.Second)
			})
		})
	})
}

func TestOrchestratorShutdown(t *testing.T) {
	ctx := context.Background()

	Convey("Given a shut down orchestrator", t, func() {
		o := orchestrator.New(formation.NewBalanced(), newPool(2))
		So(o.Shutdown(ctx), ShouldBeNil)
		So(o.Shutdown(ctx), ShouldBeNil)

		Convey("When another run is requested", func() {
			_, err := o.Form(ctx, roster(6), 3, true)

			Convey("Then it is refused", func() {
				So(errors.Is(err, orchestrator.ErrShutdown), ShouldBeTrue)
				So(errors.Is(err, formation.ErrFormationFailed), ShouldBeTrue)
			})
		})

		Convey("When units are executed directly", func() {
			err := o.Execute(ctx, 2, func(context.Context, int) error { return nil })

			Convey("Then dispatch fails because the pool stopped", func() {
				So(errors.Is(err, worker.ErrStopped), ShouldBeTrue)
			})
		})
	})
}
