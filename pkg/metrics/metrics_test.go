package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the collectors are registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.attemptsEvaluated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "teammate_formation_attempts_evaluated_total")
			})
		})

		Convey("When creating with custom naming options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("club"),
				WithSubsystem("teams"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.rosterSize.Set(12)

			Convey("Then metric names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "club_teams_roster_size" {
						found = true
						So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 12.0)
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording a formation run", func() {
			before, _ := Value("teammate_formation_runs_total", "attempts")
			RecordFormation("attempts", 12.5)
			after, err := Value("teammate_formation_runs_total", "attempts")

			Convey("Then the mode counter increases", func() {
				So(err, ShouldBeNil)
				So(after, ShouldEqual, before+1.0)
			})
		})

		Convey("When recording attempts and scores", func() {
			before, _ := Value("teammate_formation_attempts_evaluated_total")
			RecordAttempts(100)
			RecordAggregateScore(87.5)
			UpdateBalancedTeamRatio(0.75)
			after, err := Value("teammate_formation_attempts_evaluated_total")

			Convey("Then they are visible through Value", func() {
				So(err, ShouldBeNil)
				So(after-before, ShouldEqual, 100.0)
				ratio, err := Value("teammate_formation_balanced_team_ratio")
				So(err, ShouldBeNil)
				So(ratio, ShouldEqual, 0.75)
			})
		})

		Convey("When recording operational metrics", func() {
			Convey("Then none of the recorders panic", func() {
				So(func() {
					RecordFormationFailure("timeout")
					UpdateBatchCount(4)
					UpdateRosterSize(60)
					UpdateQueueSize(3)
					UpdateQueueCapacity(1024)
					RecordQueueEnqueueError()
					UpdateWorkerActiveCount(8)
					RecordWorkerTaskProcessed()
					RecordWorkerProcessingLatency(0.3)
					RecordWorkerError()
					RecordWorkerPanic()
					RecordHTTPRequest("teams", "POST", "200")
					RecordHTTPRequestDuration("teams", "POST", "200", 4)
					RecordErrorByComponent("worker", "panic")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When asking for an unknown metric", func() {
			_, err := Value("teammate_formation_does_not_exist")

			Convey("Then ErrNotRegistered is returned", func() {
				So(errors.Is(err, ErrNotRegistered), ShouldBeTrue)
			})
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
