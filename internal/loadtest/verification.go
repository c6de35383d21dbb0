package loadtest

import (
	"errors"
	"fmt"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
)

// ErrVerification marks a formation that does not partition the roster.
var ErrVerification = errors.New("formation verification failed")

// Verify checks that every participant of roster is placed exactly once,
// that no member appears twice and that no team exceeds the team size.
func Verify(roster []model.Participant, f *types.Formation) error {
	seen := make(map[string]int, f.Participants)
	members := 0
	for _, t := range f.Teams {
		if t.Size > f.TeamSize {
			return fmt.Errorf("team %s has %d members, limit %d: %w", t.ID, t.Size, f.TeamSize, ErrVerification)
		}
		for _, m := range t.Members {
			seen[m.ID]++
			if seen[m.ID] > 1 {
				return fmt.Errorf("participant %s placed twice: %w", m.ID, ErrVerification)
			}
			members++
		}
	}
	if members != f.Participants {
		return fmt.Errorf("counted %d members, formation reports %d: %w", members, f.Participants, ErrVerification)
	}
	for i := range roster {
		if seen[roster[i].ID] == 0 {
			return fmt.Errorf("participant %s missing: %w", roster[i].ID, ErrVerification)
		}
	}
	return nil
}
