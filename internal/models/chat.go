package models

import "time"

type Sender string

const (
	SenderPlayer Sender = "player"
	SenderNPC    Sender = "npc"
)

// ChatMessage is an immutable entry in the interrogation log of a suspect.
type ChatMessage struct {
	ID         int64     `db:"id"          json:"id"`
	SessionID  int64     `db:"session_id"  json:"session_id"`
	SuspectID  int64     `db:"suspect_id"  json:"suspect_id"`
	Sender     Sender    `db:"sender"      json:"sender"`
	Text       string    `db:"text"        json:"text"`
	EvidenceID *int64    `db:"evidence_id" json:"evidence_id,omitempty"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// EvidenceUsage records that evidence was presented to a suspect during a session.
//
// WasEffective is sticky: once a presentation revealed a secret it stays true.
type EvidenceUsage struct {
	SessionID    int64     `db:"session_id"`
	SuspectID    int64     `db:"suspect_id"`
	EvidenceID   int64     `db:"evidence_id"`
	FirstUsedAt  time.Time `db:"first_used_at"`
	WasEffective bool      `db:"was_effective"`
}

// EvidenceEffect classifies the outcome of presenting evidence during a turn.
type EvidenceEffect string

const (
	EvidenceEffectNone           EvidenceEffect = "none"
	EvidenceEffectRevealedSecret EvidenceEffect = "revealed_secret"
	EvidenceEffectDuplicate      EvidenceEffect = "duplicate"
)

// PublicEvidence is evidence as listed to the player. It has no required flag to avoid spoiling the verdict.
type PublicEvidence struct {
	ID          int64  `db:"id"          json:"id"`
	Name        string `db:"name"        json:"name"`
	Description string `db:"description" json:"description"`
}
