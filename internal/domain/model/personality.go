package model

import "fmt"

// PersonalityType is the classification derived from a personality score.
type PersonalityType string

// Personality types, highest band first.
const (
	Leader   PersonalityType = "Leader"
	Balanced PersonalityType = "Balanced"
	Thinker  PersonalityType = "Thinker"
)

// band is an inclusive score range.
type band struct {
	kind     PersonalityType
	min, max int
}

// bands are disjoint. Scores below 50 or above 100 classify as nothing.
var bands = [...]band{ //nolint:gochecknoglobals // immutable lookup table
	{Leader, 90, 100},
	{Balanced, 70, 89},
	{Thinker, 50, 69},
}

// ClassifyPersonality maps a raw score to its personality type.
func ClassifyPersonality(score int) (PersonalityType, error) {
	for _, b := range bands {
		if score >= b.min && score <= b.max {
			return b.kind, nil
		}
	}
	return "", fmt.Errorf("%d: %w", score, ErrInvalidPersonalityScore)
}

// PersonalityTypes lists the types in band order.
func PersonalityTypes() []PersonalityType {
	return []PersonalityType{Leader, Balanced, Thinker}
}

func (p PersonalityType) String() string { return string(p) }
