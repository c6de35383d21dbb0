package model

import (
	"fmt"
	"strings"
)

// Role is the preferred in-game role of a participant. The set is closed.
type Role string

// Known roles.
const (
	RoleStrategist  Role = "Strategist"
	RoleAttacker    Role = "Attacker"
	RoleDefender    Role = "Defender"
	RoleSupporter   Role = "Supporter"
	RoleCoordinator Role = "Coordinator"
)

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleStrategist, RoleAttacker, RoleDefender, RoleSupporter, RoleCoordinator}
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("role must not be empty: %w", ErrInvalidRole)
	}
	for _, r := range Roles() {
		if strings.EqualFold(string(r), trimmed) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
