package models

import "github.com/myrjola/interrogation/internal/errors"

var (
	// ErrNotFound is returned when a scenario, session, suspect or evidence reference does not resolve.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrRuleViolation is returned when an operation breaks a game rule, e.g., mutating a finished session.
	ErrRuleViolation = errors.NewSentinel("rule violation")
	// ErrInvalidInput is returned for malformed input. It is detected before anything is mutated.
	ErrInvalidInput = errors.NewSentinel("invalid input")
)
