package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/teammate/pkg/logger"
)

func init() {
	_ = logger.Init()
	color.NoColor = true
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateAndForm(t *testing.T) {
	convey.Convey("Given a generated roster file", t, func() {
		dir := t.TempDir()
		roster := filepath.Join(dir, "participants.csv")
		teams := filepath.Join(dir, "teams.csv")

		out, err := execute("generate", "--count", "12", "--seed", "3", "--output", roster)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "Wrote 12 participants")

		convey.Convey("When teams of four are formed from it", func() {
			out, err := execute("form", "--input", roster, "--size", "4", "--seed", "9", "--attempts", "20", "--output", teams)

			convey.Convey("Then three teams are printed and saved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Loaded 12 participants")
				convey.So(out, convey.ShouldContainSubstring, "Formed 3 teams of up to 4")
				convey.So(out, convey.ShouldContainSubstring, "T3")

				data, err := os.ReadFile(teams)
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				convey.So(lines, convey.ShouldHaveLength, 4)
				convey.So(lines[0], convey.ShouldEqual, "TeamID,MemberCount,AverageSkill,BalanceScore,Members")
			})
		})

		convey.Convey("When the roster file does not exist", func() {
			_, err := execute("form", "--input", filepath.Join(dir, "missing.csv"), "--size", "4")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	convey.Convey("Given the classify command", t, func() {
		convey.Convey("When a leader score is given", func() {
			out, err := execute("classify", "92", "--answers=")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Score 92")
			convey.So(out, convey.ShouldContainSubstring, "Leader")
		})

		convey.Convey("When survey answers are given", func() {
			out, err := execute("classify", "--answers", "4,4,4,4,3")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Score 76")
			convey.So(out, convey.ShouldContainSubstring, "Balanced")
		})

		convey.Convey("When the score has no type", func() {
			_, err := execute("classify", "30", "--answers=")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestEnroll(t *testing.T) {
	convey.Convey("Given an empty directory", t, func() {
		path := filepath.Join(t.TempDir(), "participants.csv")

		convey.Convey("When a participant is enrolled from survey answers", func() {
			out, err := execute("enroll", "-f", path, "--id", "P900", "--name", "Ada", "--email", "ada@club.test",
				"--game", "Chess", "--skill", "8", "--role", "strategist", "--answers", "5,5,4,5,4")

			convey.Convey("Then the roster file holds a header and the new row", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Enrolled P900")
				data, err := os.ReadFile(path)
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				convey.So(lines, convey.ShouldHaveLength, 2)
				convey.So(lines[1], convey.ShouldEqual, "P900,Ada,ada@club.test,Chess,8,Strategist,92,Leader")
			})
		})
	})
}
