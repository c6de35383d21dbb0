package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/teammate/internal/adapters/csvio"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/survey"
)

var (
	enrollFile    string
	enrollID      string
	enrollName    string
	enrollEmail   string
	enrollGame    string
	enrollSkill   int
	enrollRole    string
	enrollScore   int
	enrollAnswers string
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Append a participant to a roster file",
	Long: `Validate a participant and append it to a roster CSV, creating the
file with a header when needed. The personality score is given directly
or derived from five survey answers.`,
	Example: `  teamform enroll -f participants.csv --name Ada --email ada@club.test \
    --game Chess --skill 8 --role Strategist --answers 5,5,4,5,4`,
	RunE: runEnroll,
}

func init() {
	f := enrollCmd.Flags()
	f.StringVarP(&enrollFile, "file", "f", "participants.csv", "Roster CSV to append to")
	f.StringVar(&enrollID, "id", "", "Participant id (default generated)")
	f.StringVar(&enrollName, "name", "", "Display name")
	f.StringVar(&enrollEmail, "email", "", "Email address")
	f.StringVar(&enrollGame, "game", "", "Preferred game")
	f.IntVar(&enrollSkill, "skill", 5, "Skill level 1-10")
	f.StringVar(&enrollRole, "role", "", "Preferred role: Strategist, Attacker, Defender, Supporter, Coordinator")
	f.IntVar(&enrollScore, "score", 0, "Personality score 50-100")
	f.StringVarP(&enrollAnswers, "answers", "a", "", "Comma separated survey answers instead of --score")
	_ = enrollCmd.MarkFlagRequired("name")
	_ = enrollCmd.MarkFlagRequired("email")
	_ = enrollCmd.MarkFlagRequired("game")
	_ = enrollCmd.MarkFlagRequired("role")
	enrollCmd.MarkFlagsMutuallyExclusive("score", "answers")
	enrollCmd.MarkFlagsOneRequired("score", "answers")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	role, err := model.ParseRole(enrollRole)
	if err != nil {
		return err
	}

	var p model.Participant
	if enrollAnswers != "" {
		answers, err := survey.ParseAnswers(enrollAnswers)
		if err != nil {
			return err
		}
		resp, err := survey.NewResponse(enrollID, answers)
		if err != nil {
			return err
		}
		p, err = resp.NewParticipant(enrollName, enrollEmail, enrollGame, enrollSkill, role)
		if err != nil {
			return err
		}
	} else {
		id := enrollID
		if id == "" {
			id = survey.NewID()
		}
		p, err = model.NewParticipant(id, enrollName, enrollEmail, enrollGame, enrollSkill, role, enrollScore)
		if err != nil {
			return err
		}
	}

	if err := csvio.AppendParticipant(enrollFile, p); err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Enrolled %s into %s", p, enrollFile), color.FgGreen)
	return nil
}
