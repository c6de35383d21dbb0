package model

import "errors"

// Sentinel kinds for entity validation errors.
var (
	ErrInvalidParticipant      = errors.New("invalid participant")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidPersonalityScore = errors.New("invalid personality score")
)
