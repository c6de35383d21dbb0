// Package model contains the participant and team entities shared by every layer.
package model

import (
	"fmt"
	"strings"
)

// Skill bounds, inclusive.
const (
	MinSkill = 1
	MaxSkill = 10

	highSkillThreshold = 8
)

// Identity is the id/name pair carried by participants and teams.
type Identity struct {
	ID   string
	Name string
}

// Participant is an enrolled club member. Values are immutable after
// NewParticipant returns them; pass them by value.
type Participant struct {
	Identity
	Email            string
	PreferredGame    string
	SkillLevel       int
	PreferredRole    Role
	PersonalityScore int
	PersonalityType  PersonalityType
}

// NewParticipant validates its arguments and derives the personality type.
func NewParticipant(id, name, email, game string, skill int, role Role, personalityScore int) (Participant, error) {
	id, name, game, email = strings.TrimSpace(id), strings.TrimSpace(name), strings.TrimSpace(game), strings.TrimSpace(email)

	switch {
	case id == "":
		return Participant{}, fmt.Errorf("missing id: %w", ErrInvalidParticipant)
	case name == "":
		return Participant{}, fmt.Errorf("missing name: %w", ErrInvalidParticipant)
	case !strings.Contains(email, "@"):
		return Participant{}, fmt.Errorf("email %q: %w", email, ErrInvalidParticipant)
	case game == "":
		return Participant{}, fmt.Errorf("missing preferred game: %w", ErrInvalidParticipant)
	case skill < MinSkill || skill > MaxSkill:
		return Participant{}, fmt.Errorf("skill level %d not in %d-%d: %w", skill, MinSkill, MaxSkill, ErrInvalidParticipant)
	}

	parsed, err := ParseRole(string(role))
	if err != nil {
		return Participant{}, err
	}
	kind, err := ClassifyPersonality(personalityScore)
	if err != nil {
		return Participant{}, err
	}

	return Participant{
		Identity:         Identity{ID: id, Name: name},
		Email:            email,
		PreferredGame:    game,
		SkillLevel:       skill,
		PreferredRole:    parsed,
		PersonalityScore: personalityScore,
		PersonalityType:  kind,
	}, nil
}

// IsHighSkill reports a skill level of 8 or more.
func (p Participant) IsHighSkill() bool { return p.SkillLevel >= highSkillThreshold }

// HasLeadershipPotential reports whether p classifies as a Leader.
func (p Participant) HasLeadershipPotential() bool { return p.PersonalityType == Leader }

func (p Participant) String() string {
	return fmt.Sprintf("%s: %s | %s | Skill: %d | %s", p.ID, p.Name, p.PreferredGame, p.SkillLevel, p.PersonalityType)
}
