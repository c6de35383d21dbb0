package formation

import "errors"

// Sentinel kinds for formation errors.
var (
	ErrInvalidTeamSize      = errors.New("team size must be positive")
	ErrNoParticipants       = errors.New("no participants to form teams from")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrFormationFailed      = errors.New("team formation failed")
	ErrTimeout              = errors.New("team formation timed out")
)
