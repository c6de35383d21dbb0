package survey_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/survey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResponse(t *testing.T) {
	Convey("Given questionnaire answers", t, func() {
		Convey("When all five answers are in range", func() {
			r, err := survey.NewResponse("P7", []int{5, 5, 4, 5, 5})

			Convey("Then the score is the sum times four", func() {
				So(err, ShouldBeNil)
				So(r.Score(), ShouldEqual, 96)
				kind, err := r.Personality()
				So(err, ShouldBeNil)
				So(kind, ShouldEqual, model.Leader)
				So(r.Answers(), ShouldResemble, []int{5, 5, 4, 5, 5})
			})

			Convey("Then the respondent can be enrolled", func() {
				p, err := r.NewParticipant("Ada", "ada@club.test", "Chess", 7, model.RoleStrategist)
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "P7")
				So(p.PersonalityScore, ShouldEqual, 96)
			})
		})

		Convey("When answers are out of range or missing", func() {
			_, errRange := survey.NewResponse("P1", []int{5, 6, 4, 5, 5})
			_, errCount := survey.NewResponse("P1", []int{5, 5})

			Convey("Then ErrInvalidAnswer is returned", func() {
				So(errors.Is(errRange, survey.ErrInvalidAnswer), ShouldBeTrue)
				So(errors.Is(errCount, survey.ErrInvalidAnswer), ShouldBeTrue)
			})
		})

		Convey("When the score falls below every personality band", func() {
			r, err := survey.NewResponse("", []int{1, 2, 2, 2, 2})

			Convey("Then enrollment is rejected", func() {
				So(err, ShouldBeNil)
				So(r.Score(), ShouldEqual, 36)
				So(strings.HasPrefix(r.ParticipantID, "SURVEY-"), ShouldBeTrue)
				_, err := r.NewParticipant("Bob", "bob@club.test", "FIFA", 4, model.RoleDefender)
				So(errors.Is(err, model.ErrInvalidPersonalityScore), ShouldBeTrue)
			})
		})

		Convey("When answers are parsed from text", func() {
			answers, err := survey.ParseAnswers(" 3,4 ,5,3,3")
			_, errBad := survey.ParseAnswers("3,x,5")

			Convey("Then numbers are trimmed and garbage rejected", func() {
				So(err, ShouldBeNil)
				So(answers, ShouldResemble, []int{3, 4, 5, 3, 3})
				So(errors.Is(errBad, survey.ErrInvalidAnswer), ShouldBeTrue)
			})
		})
	})
}
