package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/teammate/internal/domain/model"
	types "github.com/okian/teammate/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func participant(id, game string, role model.Role, score int) model.Participant {
	p, err := model.NewParticipant(id, "Name "+id, id+"@club.test", game, 8, role, score)
	if err != nil {
		panic(err)
	}
	return p
}

func TestTeamView(t *testing.T) {
	Convey("Given a balanced team", t, func() {
		team := model.NewTeam(model.TeamID(1))
		team.AddMember(participant("a", "Chess", model.RoleStrategist, 95))
		team.AddMember(participant("b", "FIFA", model.RoleAttacker, 60))
		team.AddMember(participant("c", "Dota", model.RoleDefender, 75))

		Convey("When it is converted to a view", func() {
			view := types.NewTeamView(team)

			Convey("Then the statistics are filled in", func() {
				So(view.ID, ShouldEqual, "T1")
				So(view.Size, ShouldEqual, 3)
				So(view.AverageSkill, ShouldEqual, 8.0)
				So(view.BalanceScore, ShouldEqual, 100.0)
				So(view.Balanced, ShouldBeTrue)
				So(view.Issues, ShouldBeEmpty)
				So(view.Members, ShouldHaveLength, 3)
				So(view.Roles["Strategist"], ShouldEqual, 1)
				So(view.Personalities["Leader"], ShouldEqual, 1)
			})

			Convey("Then the JSON uses snake case keys", func() {
				raw, err := json.Marshal(view)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"balance_score":100`)
				So(string(raw), ShouldContainSubstring, `"preferred_role":"Strategist"`)
				So(string(raw), ShouldNotContainSubstring, `"issues"`)
			})
		})
	})
}

func TestFormation(t *testing.T) {
	Convey("Given two teams", t, func() {
		good := model.NewTeam(model.TeamID(1))
		good.AddMember(participant("a", "Chess", model.RoleStrategist, 95))
		good.AddMember(participant("b", "FIFA", model.RoleAttacker, 60))
		good.AddMember(participant("c", "Dota", model.RoleDefender, 75))
		poor := model.NewTeam(model.TeamID(2))
		poor.AddMember(participant("d", "Chess", model.RoleAttacker, 75))

		Convey("When a formation view is built", func() {
			f := types.NewFormation("run-1", "Balanced Team Strategy", "attempts", 3, 1, 15*time.Millisecond,
				[]*model.Team{good, poor})

			Convey("Then the aggregate fields summarize the teams", func() {
				So(f.RunID, ShouldEqual, "run-1")
				So(f.TeamCount, ShouldEqual, 2)
				So(f.Participants, ShouldEqual, 4)
				So(f.BalancedTeams, ShouldEqual, 1)
				So(f.AverageScore, ShouldEqual, 87.5)
				So(f.ElapsedMs, ShouldEqual, int64(15))
				So(f.Teams[1].Issues, ShouldNotBeEmpty)
				So(f.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}
