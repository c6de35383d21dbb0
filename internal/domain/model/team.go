package model

import (
	"maps"
	"strconv"
)

// Team accumulates members during formation. Distributions are maintained
// incrementally by AddMember. A Team is not safe for concurrent mutation;
// formation code owns each Team exclusively until it is returned.
type Team struct {
	Identity

	members       []Participant
	index         map[string]struct{}
	games         map[string]int
	roles         map[Role]int
	personalities map[PersonalityType]int
}

// NewTeam returns an empty team named "Team-<id>".
func NewTeam(id string) *Team {
	return &Team{
		Identity:      Identity{ID: id, Name: "Team-" + id},
		index:         make(map[string]struct{}),
		games:         make(map[string]int),
		roles:         make(map[Role]int),
		personalities: make(map[PersonalityType]int),
	}
}

// TeamID returns the sequential id used for the n-th team (1-based).
func TeamID(n int) string { return "T" + strconv.Itoa(n) }

// AddMember appends p unless a participant with the same id is already a
// member. It reports whether p was added.
func (t *Team) AddMember(p Participant) bool {
	if _, ok := t.index[p.ID]; ok {
		return false
	}
	t.index[p.ID] = struct{}{}
	t.members = append(t.members, p)
	t.games[p.PreferredGame]++
	t.roles[p.PreferredRole]++
	t.personalities[p.PersonalityType]++
	return true
}

// Renumber relabels the team as the n-th team of a partition.
func (t *Team) Renumber(n int) {
	t.ID = TeamID(n)
	t.Name = "Team-" + t.ID
}

// Members returns a copy of the members in insertion order.
func (t *Team) Members() []Participant {
	out := make([]Participant, len(t.members))
	copy(out, t.members)
	return out
}

// Size returns the member count.
func (t *Team) Size() int { return len(t.members) }

// AverageSkill returns the mean skill level, or 0 for an empty team.
func (t *Team) AverageSkill() float64 {
	if len(t.members) == 0 {
		return 0
	}
	total := 0
	for _, m := range t.members {
		total += m.SkillLevel
	}
	return float64(total) / float64(len(t.members))
}

// GameDistribution returns member counts per preferred game.
func (t *Team) GameDistribution() map[string]int { return maps.Clone(t.games) }

// RoleDistribution returns member counts per preferred role.
func (t *Team) RoleDistribution() map[Role]int { return maps.Clone(t.roles) }

// PersonalityDistribution returns member counts per personality type.
func (t *Team) PersonalityDistribution() map[PersonalityType]int { return maps.Clone(t.personalities) }

// CountPersonality returns how many members have the given type.
func (t *Team) CountPersonality(kind PersonalityType) int { return t.personalities[kind] }
