// Package types contains the JSON views shared by the HTTP API and the CLI.
package types

import (
	"time"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/scoring"
)

// ParticipantView is the wire form of a participant.
type ParticipantView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PreferredGame    string `json:"preferred_game"`
	SkillLevel       int    `json:"skill_level"`
	PreferredRole    string `json:"preferred_role"`
	PersonalityScore int    `json:"personality_score"`
	PersonalityType  string `json:"personality_type"`
}

// NewParticipantView converts p.
func NewParticipantView(p model.Participant) ParticipantView { //nolint:gocritic // hugeParam: participants are passed by value everywhere
	return ParticipantView{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		PreferredGame:    p.PreferredGame,
		SkillLevel:       p.SkillLevel,
		PreferredRole:    string(p.PreferredRole),
		PersonalityScore: p.PersonalityScore,
		PersonalityType:  string(p.PersonalityType),
	}
}

// ParticipantViews converts a roster.
func ParticipantViews(ps []model.Participant) []ParticipantView {
	out := make([]ParticipantView, len(ps))
	for i := range ps {
		out[i] = NewParticipantView(ps[i])
	}
	return out
}

// TeamView is a finished team with its derived statistics.
type TeamView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Size          int               `json:"size"`
	AverageSkill  float64           `json:"average_skill"`
	BalanceScore  float64           `json:"balance_score"`
	Balanced      bool              `json:"balanced"`
	Issues        []string          `json:"issues,omitempty"`
	Members       []ParticipantView `json:"members"`
	Games         map[string]int    `json:"games"`
	Roles         map[string]int    `json:"roles"`
	Personalities map[string]int    `json:"personalities"`
}

// NewTeamView snapshots t.
func NewTeamView(t *model.Team) TeamView {
	v := TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Size:          t.Size(),
		AverageSkill:  t.AverageSkill(),
		BalanceScore:  scoring.Team(t),
		Balanced:      scoring.IsBalanced(t),
		Issues:        scoring.Issues(t),
		Members:       ParticipantViews(t.Members()),
		Games:         t.GameDistribution(),
		Roles:         make(map[string]int),
		Personalities: make(map[string]int),
	}
	for r, n := range t.RoleDistribution() {
		v.Roles[string(r)] = n
	}
	for k, n := range t.PersonalityDistribution() {
		v.Personalities[string(k)] = n
	}
	return v
}

// Formation is the outcome of one formation run.
type Formation struct {
	RunID         string     `json:"run_id"`
	Strategy      string     `json:"strategy"`
	Mode          string     `json:"mode"`
	TeamSize      int        `json:"team_size"`
	Participants  int        `json:"participants"`
	TeamCount     int        `json:"team_count"`
	BalancedTeams int        `json:"balanced_teams"`
	AverageScore  float64    `json:"average_score"`
	Batches       int        `json:"batches"`
	ElapsedMs     int64      `json:"elapsed_ms"`
	CreatedAt     time.Time  `json:"created_at"`
	Teams         []TeamView `json:"teams"`
}

// NewFormation builds the view of a partition.
func NewFormation(runID, strategy, mode string, teamSize, batches int, elapsed time.Duration, teams []*model.Team) Formation {
	f := Formation{
		RunID:        runID,
		Strategy:     strategy,
		Mode:         mode,
		TeamSize:     teamSize,
		TeamCount:    len(teams),
		AverageScore: scoring.Partition(teams),
		Batches:      batches,
		ElapsedMs:    elapsed.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
		Teams:        make([]TeamView, len(teams)),
	}
	for i, t := range teams {
		f.Teams[i] = NewTeamView(t)
		f.Participants += t.Size()
		if f.Teams[i].Balanced {
			f.BalancedTeams++
		}
	}
	return f
}

// StrategyInfo describes the formation strategy in use.
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Attempts    int    `json:"attempts,omitempty"`
}

// Stats summarizes service state.
type Stats struct {
	Participants  int            `json:"participants"`
	Personalities map[string]int `json:"personalities"`
	HighSkill     int            `json:"high_skill"`
	Formations    int64          `json:"formations"`
	LastRunID     string         `json:"last_run_id,omitempty"`
	LastScore     float64        `json:"last_score,omitempty"`
	UptimeSeconds float64        `json:"uptime_seconds"`
}

// ImportResult reports what a roster import did.
type ImportResult struct {
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Skipped    []string `json:"skipped,omitempty"`
}
