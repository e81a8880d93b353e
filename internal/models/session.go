package models

import "time"

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusFinished   SessionStatus = "finished"
)

type VerdictResult string

const (
	VerdictResultCorrect VerdictResult = "correct"
	VerdictResultPartial VerdictResult = "partial"
	VerdictResultWrong   VerdictResult = "wrong"
)

// Session is one playthrough of a scenario. The verdict fields are set exactly once when the session finishes.
type Session struct {
	ID                int64          `db:"id"`
	ScenarioID        int64          `db:"scenario_id"`
	Status            SessionStatus  `db:"status"`
	CreatedAt         time.Time      `db:"created_at"`
	ChosenSuspectID   *int64         `db:"chosen_suspect_id"`
	ChosenEvidenceIDs IDList         `db:"chosen_evidence_ids"`
	Result            *VerdictResult `db:"result"`
	FinishedAt        *time.Time     `db:"finished_at"`
}

// Finished reports whether the verdict has been given.
func (s Session) Finished() bool {
	return s.Status == SessionStatusFinished
}

// SuspectState is the interrogation progress of one suspect within one session.
type SuspectState struct {
	SessionID int64     `db:"session_id"`
	SuspectID int64     `db:"suspect_id"`
	Revealed  SecretSet `db:"revealed_secret_ids"`
	Progress  float64   `db:"progress"`
	Closed    bool      `db:"closed"`
}

// SuspectSnapshot is the player-facing view of a suspect and its progress.
type SuspectSnapshot struct {
	ID               int64   `db:"id"                json:"id"`
	Name             string  `db:"name"              json:"name"`
	Backstory        string  `db:"backstory"         json:"backstory"`
	InitialStatement string  `db:"initial_statement" json:"initial_statement"`
	Progress         float64 `db:"progress"          json:"progress"`
	Closed           bool    `db:"closed"            json:"closed"`
}

// Overview aggregates a session with its scenario summary and the per-suspect progress.
type Overview struct {
	SessionID int64             `json:"session_id"`
	Status    SessionStatus     `json:"status"`
	Result    *VerdictResult    `json:"result,omitempty"`
	Scenario  ScenarioSummary   `json:"scenario"`
	Suspects  []SuspectSnapshot `json:"suspects"`
}

// Verdict is the outcome of an accusation.
type Verdict struct {
	SessionID           int64         `json:"session_id"`
	Status              SessionStatus `json:"status"`
	Result              VerdictResult `json:"result"`
	ChosenSuspectID     int64         `json:"chosen_suspect_id"`
	CulpritID           int64         `json:"culprit_id"`
	RequiredEvidenceIDs []int64       `json:"required_evidence_ids"`
	MissingEvidenceIDs  []int64       `json:"missing_evidence_ids"`
	Description         string        `json:"description"`
}
