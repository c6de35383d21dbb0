package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/survey"
)

var classifyAnswers string

var classifyCmd = &cobra.Command{
	Use:   "classify [SCORE]",
	Short: "Classify a personality score or survey answers",
	Long: `Print the personality type for a score between 50 and 100, or for
five survey answers on a 1-5 scale (score = sum x 4).`,
	Example: `  teamform classify 92
  teamform classify --answers 5,4,4,5,3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyAnswers, "answers", "a", "", "Comma separated survey answers")
}

func runClassify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var score int
	switch {
	case classifyAnswers != "":
		answers, err := survey.ParseAnswers(classifyAnswers)
		if err != nil {
			return err
		}
		resp, err := survey.NewResponse("", answers)
		if err != nil {
			return err
		}
		for i, q := range survey.Questions {
			fmt.Fprintf(out, "  %d. %s %s\n", i+1, q, color.CyanString("%d", answers[i]))
		}
		score = resp.Score()
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("score %q is not a number", args[0])
		}
		score = n
	default:
		return fmt.Errorf("give a SCORE or --answers")
	}

	kind, err := model.ClassifyPersonality(score)
	if err != nil {
		printStatus(out, "✗", fmt.Sprintf("Score %d has no personality type", score), color.FgRed)
		return err
	}
	printStatus(out, "●", fmt.Sprintf("Score %d: %s", score, color.New(color.Bold).Sprint(kind)), color.FgGreen)
	return nil
}
