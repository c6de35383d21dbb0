// Package scoring computes balance scores for teams and partitions.
//
// Scores depend only on the multiset of member attributes, never on the
// order members were added, so the same member set always scores the same.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/teammate/internal/domain/model"
)

// Score weights and thresholds.
const (
	gameVarietyPoints      = 25
	roleDiversityPoints    = 25
	personalityMixPoints   = 50
	personalityMixPartial  = 25
	maxPlayersPerGame      = 2
	minDistinctRoles       = 3
	maxThinkers            = 2
	balancedScoreThreshold = 80.0

	// MaxScore is the best achievable team score.
	MaxScore = gameVarietyPoints + roleDiversityPoints + personalityMixPoints
)

// Team returns the balance score of t in [0, 100].
func Team(t *model.Team) float64 {
	score := 0.0
	if hasGameVariety(t) {
		score += gameVarietyPoints
	}
	if hasRoleDiversity(t) {
		score += roleDiversityPoints
	}
	if hasPersonalityMix(t) {
		score += personalityMixPoints
	} else {
		score += personalityMixPartial
	}
	return score
}

// Partition returns the unweighted mean of the team scores, or 0 when
// teams is empty.
func Partition(teams []*model.Team) float64 {
	if len(teams) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range teams {
		total += Team(t)
	}
	return total / float64(len(teams))
}

// IsBalanced reports a team score of at least 80.
func IsBalanced(t *model.Team) bool {
	return Team(t) >= balancedScoreThreshold
}

// Issues describes every criterion t fails, in a stable order.
func Issues(t *model.Team) []string {
	var issues []string
	if !hasGameVariety(t) {
		issues = append(issues, "too many players from same game: "+formatCounts(t.GameDistribution()))
	}
	if !hasRoleDiversity(t) {
		roles := make(map[string]int)
		for r, n := range t.RoleDistribution() {
			roles[string(r)] = n
		}
		issues = append(issues, "insufficient role diversity: "+formatCounts(roles))
	}
	if !hasPersonalityMix(t) {
		kinds := make(map[string]int)
		for k, n := range t.PersonalityDistribution() {
			kinds[string(k)] = n
		}
		issues = append(issues, "poor personality mix: "+formatCounts(kinds))
	}
	return issues
}

func hasGameVariety(t *model.Team) bool {
	for _, n := range t.GameDistribution() {
		if n > maxPlayersPerGame {
			return false
		}
	}
	return true
}

func hasRoleDiversity(t *model.Team) bool {
	return len(t.RoleDistribution()) >= min(minDistinctRoles, t.Size())
}

func hasPersonalityMix(t *model.Team) bool {
	leaders := t.CountPersonality(model.Leader)
	thinkers := t.CountPersonality(model.Thinker)
	return leaders >= 1 && thinkers >= 1 && thinkers <= maxThinkers
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
