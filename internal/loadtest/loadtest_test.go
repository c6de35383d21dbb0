package loadtest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/teammate/internal/adapters/http/api"
	service "github.com/okian/teammate/internal/app"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/internal/loadtest"
	"github.com/okian/teammate/internal/sample"
	"github.com/okian/teammate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		svc := service.New(service.WithWorkerCount(2), service.WithAttempts(10))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		cfg := &loadtest.Config{
			BaseURL:      srv.URL,
			Participants: 23,
			TeamSize:     5,
			Parallel:     true,
			Workers:      4,
			Seed:         8,
			Timeout:      5 * time.Second,
		}

		Convey("When a load run is executed", func() {
			stats, err := loadtest.Run(context.Background(), cfg)

			Convey("Then the roster is enrolled and partitioned", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 23)
				So(stats.Enrolled, ShouldEqual, 23)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Teams, ShouldEqual, 5)
			})

			Convey("And running it again only finds duplicates", func() {
				again, err := loadtest.Run(context.Background(), cfg)
				So(err, ShouldBeNil)
				So(again.Duplicates, ShouldEqual, 23)
				So(again.Enrolled, ShouldEqual, 0)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := &loadtest.Config{BaseURL: "http://127.0.0.1:1", Participants: 3, TeamSize: 2, Timeout: time.Second}

		Convey("Then the health check fails", func() {
			_, err := loadtest.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a roster", t, func() {
		roster := sample.Roster(1, 3)
		views := types.ParticipantViews(roster)

		Convey("When every participant is placed once", func() {
			f := &types.Formation{TeamSize: 2, Participants: 3, Teams: []types.TeamView{
				{ID: "T1", Size: 2, Members: views[:2]},
				{ID: "T2", Size: 1, Members: views[2:]},
			}}
			So(loadtest.Verify(roster, f), ShouldBeNil)
		})

		Convey("When a participant is missing", func() {
			f := &types.Formation{TeamSize: 2, Participants: 2, Teams: []types.TeamView{
				{ID: "T1", Size: 2, Members: views[:2]},
			}}
			So(errors.Is(loadtest.Verify(roster, f), loadtest.ErrVerification), ShouldBeTrue)
		})

		Convey("When a participant is placed twice", func() {
			f := &types.Formation{TeamSize: 2, Participants: 4, Teams: []types.TeamView{
				{ID: "T1", Size: 2, Members: views[:2]},
				{ID: "T2", Size: 2, Members: views[1:]},
			}}
			So(errors.Is(loadtest.Verify(roster, f), loadtest.ErrVerification), ShouldBeTrue)
		})

		Convey("When a team is too large", func() {
			f := &types.Formation{TeamSize: 2, Participants: 3, Teams: []types.TeamView{
				{ID: "T1", Size: 3, Members: views},
			}}
			So(errors.Is(loadtest.Verify(roster, f), loadtest.ErrVerification), ShouldBeTrue)
		})
	})
}
