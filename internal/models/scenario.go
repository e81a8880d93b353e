package models

// DefaultFinalPhrase is the refusal line of a suspect whose case file does not define one.
const DefaultFinalPhrase = "I've told you everything I know."

// ObjectiveFindCulprit is the only objective a scenario currently has.
const ObjectiveFindCulprit = "find_culprit"

// Scenario is static case content. It is immutable after it has been loaded.
type Scenario struct {
	ID               int64  `db:"id"`
	Title            string `db:"title"`
	Description      string `db:"description"`
	CaseSummary      string `db:"case_summary"`
	CulpritSuspectID *int64 `db:"culprit_suspect_id"`
}

// ScenarioSummary is the public part of a Scenario. It never reveals the culprit.
type ScenarioSummary struct {
	ID          int64  `db:"id"          json:"id"`
	Title       string `db:"title"       json:"title"`
	Description string `db:"description" json:"description"`
	Objective   string `db:"-"           json:"objective"`
}

// Suspect is a person of interest in a scenario.
type Suspect struct {
	ID               int64  `db:"id"`
	ScenarioID       int64  `db:"scenario_id"`
	Position         int    `db:"position"`
	Name             string `db:"name"`
	Backstory        string `db:"backstory"`
	InitialStatement string `db:"initial_statement"`
	FinalPhrase      string `db:"final_phrase"`
}

// Evidence can be presented to suspects during interrogation.
//
// Required marks evidence that a correct accusation must cite. It must not leak to the player before the verdict.
type Evidence struct {
	ID          int64  `db:"id"`
	ScenarioID  int64  `db:"scenario_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Required    bool   `db:"required"`
}

// Secret is revealed when its evidence is presented to its suspect.
type Secret struct {
	ID         int64  `db:"id"`
	SuspectID  int64  `db:"suspect_id"`
	EvidenceID int64  `db:"evidence_id"`
	Content    string `db:"content"`
	IsCore     bool   `db:"is_core"`
}
