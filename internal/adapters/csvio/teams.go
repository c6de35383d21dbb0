package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/scoring"
)

// TeamHeader is the column layout of a formed-teams file.
var TeamHeader = []string{"TeamID", "MemberCount", "AverageSkill", "BalanceScore", "Members"}

// WriteTeams writes one row per team. Members are listed as Name(Role)
// separated by semicolons.
func WriteTeams(w io.Writer, teams []*model.Team) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TeamHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range teams {
		members := t.Members()
		names := make([]string, len(members))
		for i := range members {
			names[i] = fmt.Sprintf("%s(%s)", members[i].Name, members[i].PreferredRole)
		}
		record := []string{
			t.ID,
			strconv.Itoa(t.Size()),
			strconv.FormatFloat(t.AverageSkill(), 'f', 2, 64),
			strconv.FormatFloat(scoring.Team(t), 'f', 2, 64),
			strings.Join(names, ";"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write team %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveTeams writes the teams file at path.
func SaveTeams(path string, teams []*model.Team) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create teams file: %w", err)
	}
	if err := WriteTeams(f, teams); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
