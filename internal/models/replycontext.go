package models

// ReplyContext is everything a reply generator may know when it voices a suspect.
//
// It carries revealed secrets only. Unrevealed secrets, the true timeline and the culprit have no field here.
type ReplyContext struct {
	CaseSummary    string
	Suspect        SuspectProfile
	Progress       float64
	Closed         bool
	FinalPhrase    string
	Revealed       []RevealedSecret
	RevealedNow    []RevealedSecret
	PressurePoints []PressurePoint
	Rules          RuleFlags
	History        []ChatMessage
}

// SuspectProfile is the public identity of a suspect.
type SuspectProfile struct {
	ID               int64
	Name             string
	Backstory        string
	InitialStatement string
}

// RevealedSecret is a secret the player has uncovered.
type RevealedSecret struct {
	ID      int64  `db:"id"      json:"id"`
	Content string `db:"content" json:"content"`
	IsCore  bool   `db:"is_core" json:"is_core"`
}

// PressurePoint is an earlier moment in the interrogation where the player presented evidence.
type PressurePoint struct {
	EvidenceID   int64
	EvidenceName string
	Text         string
}

// RuleFlags steer how the suspect reacts during the current turn.
type RuleFlags struct {
	EvidencePresented bool
	Effect            EvidenceEffect
	// MustRefuse is set once the suspect has nothing left to tell and should answer with the final phrase.
	MustRefuse bool
}

// PlayerMessage is the player's input of the current turn.
type PlayerMessage struct {
	Text     string
	Evidence *PublicEvidence
}
