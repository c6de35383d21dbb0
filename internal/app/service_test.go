package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	service "github.com/okian/teammate/internal/app"
	"github.com/okian/teammate/internal/adapters/repository"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/orchestrator"
	"github.com/okian/teammate/internal/sample"
	"github.com/okian/teammate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newStarted(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func enroll(svc *service.Service, roster []model.Participant) {
	for _, p := range roster {
		if err := svc.Enroll(context.Background(), p); err != nil {
			panic(err)
		}
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should describe the balanced strategy", func() {
			info := svc.StrategyInfo()
			So(info.Name, ShouldEqual, "Balanced Team Strategy")
			So(info.Attempts, ShouldEqual, formation.DefaultAttempts)
			So(svc.DefaultTeamSize(), ShouldEqual, 5)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
			service.WithAttempts(10),
			service.WithSeed(3),
			service.WithDefaultTeamSize(4),
			service.WithStore(repository.NewMemoryStore()),
		)

		Convey("Then the options are applied", func() {
			So(svc.StrategyInfo().Attempts, ShouldEqual, 10)
			So(svc.DefaultTeamSize(), ShouldEqual, 4)
		})
	})
}

func TestService_FormTeams(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with an enrolled roster", t, func() {
		svc := newStarted(service.WithWorkerCount(2), service.WithAttempts(20), service.WithSeed(11))
		defer svc.Stop()
		enroll(svc, sample.Roster(5, 12))

		Convey("When teams of 4 are formed in parallel", func() {
			f, err := svc.FormTeams(ctx, 4, true)

			Convey("Then three full teams are stored as the latest formation", func() {
				So(err, ShouldBeNil)
				So(f.TeamCount, ShouldEqual, 3)
				So(f.Participants, ShouldEqual, 12)
				So(f.Mode, ShouldEqual, orchestrator.ModeAttempts)
				So(f.RunID, ShouldNotBeEmpty)

				latest, err := svc.LatestFormation(ctx)
				So(err, ShouldBeNil)
				So(latest.RunID, ShouldEqual, f.RunID)

				stats := svc.GetStats(ctx)
				So(stats.Participants, ShouldEqual, 12)
				So(stats.Formations, ShouldEqual, int64(1))
				So(stats.LastRunID, ShouldEqual, f.RunID)
			})
		})

		Convey("When the seed is fixed", func() {
			seq, err := svc.FormTeams(ctx, 4, false)
			So(err, ShouldBeNil)
			par, err := svc.FormTeams(ctx, 4, true)
			So(err, ShouldBeNil)

			Convey("Then sequential and parallel runs agree", func() {
				So(par.AverageScore, ShouldEqual, seq.AverageScore)
				So(par.Teams[0].Members, ShouldResemble, seq.Teams[0].Members)
			})
		})

		Convey("When the team size is invalid", func() {
			_, err := svc.FormTeams(ctx, 0, true)

			Convey("Then formation is rejected", func() {
				So(errors.Is(err, formation.ErrInvalidTeamSize), ShouldBeTrue)
			})
		})
	})

	Convey("Given a started service without participants", t, func() {
		svc := newStarted(service.WithWorkerCount(1))
		defer svc.Stop()

		Convey("When teams are requested", func() {
			_, err := svc.FormTeams(ctx, 4, false)
			_, errLatest := svc.LatestFormation(ctx)

			Convey("Then there is nothing to form", func() {
				So(errors.Is(err, formation.ErrNoParticipants), ShouldBeTrue)
				So(errors.Is(errLatest, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When teams are requested", func() {
			_, err := svc.FormTeams(ctx, 4, true)

			Convey("Then ErrNotStarted is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a large roster", t, func() {
		svc := newStarted(
			service.WithWorkerCount(4),
			service.WithParallelThreshold(50),
			service.WithParallelism(4),
			service.WithMinBatchSize(10),
			service.WithFormationTimeout(10*time.Second),
		)
		defer svc.Stop()
		enroll(svc, sample.Roster(9, 103))

		Convey("When teams are formed in parallel", func() {
			f, err := svc.FormTeams(ctx, 5, true)

			Convey("Then batches cover the whole roster", func() {
				So(err, ShouldBeNil)
				So(f.Mode, ShouldEqual, orchestrator.ModeBatches)
				So(f.Batches, ShouldEqual, 4)
				So(f.Participants, ShouldEqual, 103)
			})
		})
	})
}

func TestService_Enrollment(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		svc := service.New()
		ada, _ := model.NewParticipant("P001", "Ada", "ada@club.test", "Chess", 9, model.RoleStrategist, 95)

		Convey("When the same participant is enrolled twice", func() {
			So(svc.Enroll(ctx, ada), ShouldBeNil)
			err := svc.Enroll(ctx, ada)

			Convey("Then the second enrollment is a conflict", func() {
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				So(svc.Participants(ctx), ShouldHaveLength, 1)
			})
		})

		Convey("When a CSV roster is imported", func() {
			So(svc.Enroll(ctx, ada), ShouldBeNil)
			input := "ID,Name,Email,PreferredGame,SkillLevel,PreferredRole,PersonalityScore,PersonalityType\n" +
				"P001,Ada,ada@club.test,Chess,9,Strategist,95,Leader\n" +
				"P002,Bob,bob@club.test,FIFA,4,Attacker,60,Thinker\n" +
				"P003,Cy,not-an-email,Dota,5,Defender,75,Balanced\n"
			res, err := svc.ImportCSV(ctx, strings.NewReader(input))

			Convey("Then new rows are added and the rest reported", func() {
				So(err, ShouldBeNil)
				So(res.Added, ShouldEqual, 1)
				So(res.Duplicates, ShouldEqual, 1)
				So(res.Skipped, ShouldHaveLength, 1)
				So(res.Skipped[0], ShouldContainSubstring, "line 4")
				So(svc.Participants(ctx), ShouldHaveLength, 2)
			})
		})

		Convey("When stats are read", func() {
			So(svc.Enroll(ctx, ada), ShouldBeNil)
			stats := svc.GetStats(ctx)

			Convey("Then personalities and skill are summarized", func() {
				So(stats.Participants, ShouldEqual, 1)
				So(stats.HighSkill, ShouldEqual, 1)
				So(stats.Personalities["Leader"], ShouldEqual, 1)
				So(stats.UptimeSeconds, ShouldEqual, 0.0)
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStarted(service.WithWorkerCount(1))

		Convey("When it is started twice and stopped twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then formation is refused afterwards", func() {
				_, err := svc.FormTeams(context.Background(), 3, true)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_StartContext(t *testing.T) {
	Convey("Given a service started with a context that is later cancelled", t, func() {
		startCtx, cancel := context.WithCancel(context.Background())
		svc := service.New(service.WithWorkerCount(2), service.WithAttempts(10))
		So(svc.Start(startCtx), ShouldBeNil)
		defer svc.Stop()
		enroll(svc, sample.Roster(3, 12))
		cancel()
		time.Sleep(20 * time.Millisecond)

		Convey("When teams are formed in parallel", func() {
			f, err := svc.FormTeams(context.Background(), 4, true)

			Convey("Then the pool is still serving until Stop", func() {
				So(err, ShouldBeNil)
				So(f.TeamCount, ShouldEqual, 3)
			})
		})
	})
}
