package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/scoring"
)

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// printTeams writes a summary of every team followed by its members.
func printTeams(w io.Writer, teams []*model.Team) {
	bold := color.New(color.Bold)
	for _, t := range teams {
		score := scoring.Team(t)
		attr := color.FgYellow
		if scoring.IsBalanced(t) {
			attr = color.FgGreen
		}
		printStatus(w, "●", fmt.Sprintf("%s  members=%d  avg skill=%.2f  balance=%.1f",
			bold.Sprint(t.ID), t.Size(), t.AverageSkill(), score), attr)
		for _, m := range t.Members() {
			fmt.Fprintf(w, "    %-24s %-12s %-11s skill %2d  %s\n",
				m.Name, m.PreferredGame, m.PreferredRole, m.SkillLevel, m.PersonalityType)
		}
		for _, issue := range scoring.Issues(t) {
			fmt.Fprintf(w, "    %s %s\n", color.YellowString("!"), issue)
		}
	}
}
