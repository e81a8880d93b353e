package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
)

// ScenarioRepository reads and writes static case content.
//
// Every method takes the querier it runs against so that callers decide whether it joins a transaction or reads from
// the read-only pool.
type ScenarioRepository struct {
	logger *slog.Logger
}

func NewScenarioRepository(logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{
		logger: logger.With("source", "ScenarioRepository"),
	}
}

func (r *ScenarioRepository) List(ctx context.Context, q sqlx.QueryerContext) ([]models.ScenarioSummary, error) {
	scenarios := []models.ScenarioSummary{}
	if err := sqlx.SelectContext(ctx, q, &scenarios,
		`SELECT id, title, description FROM scenarios ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select scenarios")
	}
	for i := range scenarios {
		scenarios[i].Objective = models.ObjectiveFindCulprit
	}
	return scenarios, nil
}

func (r *ScenarioRepository) Get(ctx context.Context, q sqlx.QueryerContext, id int64) (models.Scenario, error) {
	var scenario models.Scenario
	err := sqlx.GetContext(ctx, q, &scenario,
		`SELECT id, title, description, case_summary, culprit_suspect_id FROM scenarios WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return scenario, errors.Wrap(models.ErrNotFound, "scenario not found", slog.Int64("scenario_id", id))
	}
	if err != nil {
		return scenario, errors.Wrap(err, "select scenario", slog.Int64("scenario_id", id))
	}
	return scenario, nil
}

// IDByTitle returns the id of the scenario with title. The boolean is false when no such scenario exists.
func (r *ScenarioRepository) IDByTitle(ctx context.Context, q sqlx.QueryerContext, title string) (int64, bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, `SELECT id FROM scenarios WHERE title = ?`, title)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "select scenario id", slog.String("title", title))
	}
	return id, true, nil
}

// Suspects returns the suspects of a scenario in their defined order.
func (r *ScenarioRepository) Suspects(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
) ([]models.Suspect, error) {
	suspects := []models.Suspect{}
	if err := sqlx.SelectContext(ctx, q, &suspects, `SELECT id, scenario_id, position, name, backstory,
       initial_statement, final_phrase
FROM suspects
WHERE scenario_id = ?
ORDER BY position`, scenarioID); err != nil {
		return nil, errors.Wrap(err, "select suspects", slog.Int64("scenario_id", scenarioID))
	}
	return suspects, nil
}

// Suspect returns the suspect if it belongs to the scenario.
func (r *ScenarioRepository) Suspect(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
	suspectID int64,
) (models.Suspect, error) {
	var suspect models.Suspect
	err := sqlx.GetContext(ctx, q, &suspect, `SELECT id, scenario_id, position, name, backstory,
       initial_statement, final_phrase
FROM suspects
WHERE id = ? AND scenario_id = ?`, suspectID, scenarioID)
	if errors.Is(err, sql.ErrNoRows) {
		return suspect, errors.Wrap(models.ErrNotFound, "suspect not found in scenario",
			slog.Int64("scenario_id", scenarioID), slog.Int64("suspect_id", suspectID))
	}
	if err != nil {
		return suspect, errors.Wrap(err, "select suspect", slog.Int64("suspect_id", suspectID))
	}
	return suspect, nil
}

// Evidence returns all evidence of a scenario including the required flag.
func (r *ScenarioRepository) Evidence(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
) ([]models.Evidence, error) {
	evidence := []models.Evidence{}
	if err := sqlx.SelectContext(ctx, q, &evidence, `SELECT id, scenario_id, name, description, required
FROM evidence
WHERE scenario_id = ?
ORDER BY id`, scenarioID); err != nil {
		return nil, errors.Wrap(err, "select evidence", slog.Int64("scenario_id", scenarioID))
	}
	return evidence, nil
}

// PublicEvidence lists the evidence of a scenario without the required flag.
func (r *ScenarioRepository) PublicEvidence(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
) ([]models.PublicEvidence, error) {
	evidence := []models.PublicEvidence{}
	if err := sqlx.SelectContext(ctx, q, &evidence, `SELECT id, name, description
FROM evidence
WHERE scenario_id = ?
ORDER BY id`, scenarioID); err != nil {
		return nil, errors.Wrap(err, "select public evidence", slog.Int64("scenario_id", scenarioID))
	}
	return evidence, nil
}

// EvidenceByID returns the evidence if it belongs to the scenario.
func (r *ScenarioRepository) EvidenceByID(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
	evidenceID int64,
) (models.Evidence, error) {
	var evidence models.Evidence
	err := sqlx.GetContext(ctx, q, &evidence, `SELECT id, scenario_id, name, description, required
FROM evidence
WHERE id = ? AND scenario_id = ?`, evidenceID, scenarioID)
	if errors.Is(err, sql.ErrNoRows) {
		return evidence, errors.Wrap(models.ErrNotFound, "evidence not found in scenario",
			slog.Int64("scenario_id", scenarioID), slog.Int64("evidence_id", evidenceID))
	}
	if err != nil {
		return evidence, errors.Wrap(err, "select evidence", slog.Int64("evidence_id", evidenceID))
	}
	return evidence, nil
}

// RequiredEvidenceIDs returns the ids of the mandatory evidence in ascending order.
func (r *ScenarioRepository) RequiredEvidenceIDs(
	ctx context.Context,
	q sqlx.QueryerContext,
	scenarioID int64,
) ([]int64, error) {
	ids := []int64{}
	if err := sqlx.SelectContext(ctx, q, &ids,
		`SELECT id FROM evidence WHERE scenario_id = ? AND required = 1 ORDER BY id`, scenarioID); err != nil {
		return nil, errors.Wrap(err, "select required evidence", slog.Int64("scenario_id", scenarioID))
	}
	return ids, nil
}

// SecretsFor returns the secrets keyed by exactly this suspect and evidence pair.
func (r *ScenarioRepository) SecretsFor(
	ctx context.Context,
	q sqlx.QueryerContext,
	suspectID int64,
	evidenceID int64,
) ([]models.Secret, error) {
	secrets := []models.Secret{}
	if err := sqlx.SelectContext(ctx, q, &secrets, `SELECT id, suspect_id, evidence_id, content, is_core
FROM secrets
WHERE suspect_id = ? AND evidence_id = ?
ORDER BY id`, suspectID, evidenceID); err != nil {
		return nil, errors.Wrap(err, "select secrets",
			slog.Int64("suspect_id", suspectID), slog.Int64("evidence_id", evidenceID))
	}
	return secrets, nil
}

// CoreSecretIDs returns the ids of the suspect's core secrets.
func (r *ScenarioRepository) CoreSecretIDs(
	ctx context.Context,
	q sqlx.QueryerContext,
	suspectID int64,
) ([]int64, error) {
	ids := []int64{}
	if err := sqlx.SelectContext(ctx, q, &ids,
		`SELECT id FROM secrets WHERE suspect_id = ? AND is_core = 1 ORDER BY id`, suspectID); err != nil {
		return nil, errors.Wrap(err, "select core secrets", slog.Int64("suspect_id", suspectID))
	}
	return ids, nil
}

// RevealedSecrets loads the content of the given secret ids of a suspect.
func (r *ScenarioRepository) RevealedSecrets(
	ctx context.Context,
	q sqlx.QueryerContext,
	suspectID int64,
	set models.SecretSet,
) ([]models.RevealedSecret, error) {
	secrets := []models.RevealedSecret{}
	if set.Len() == 0 {
		return secrets, nil
	}
	query, args, err := sqlx.In(`SELECT id, content, is_core
FROM secrets
WHERE suspect_id = ? AND id IN (?)
ORDER BY id`, suspectID, set.IDs())
	if err != nil {
		return nil, errors.Wrap(err, "expand revealed secrets query")
	}
	if err = sqlx.SelectContext(ctx, q, &secrets, query, args...); err != nil {
		return nil, errors.Wrap(err, "select revealed secrets", slog.Int64("suspect_id", suspectID))
	}
	return secrets, nil
}

// Insert adds a scenario without culprit and returns its id.
func (r *ScenarioRepository) Insert(ctx context.Context, tx sqlx.ExecerContext, scenario models.Scenario) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO scenarios (title, description, case_summary) VALUES (?, ?, ?)`,
		scenario.Title, scenario.Description, scenario.CaseSummary)
	if err != nil {
		return 0, errors.Wrap(err, "insert scenario", slog.String("title", scenario.Title))
	}
	return lastInsertID(res)
}

func (r *ScenarioRepository) InsertSuspect(ctx context.Context, tx sqlx.ExecerContext, s models.Suspect) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO suspects
    (scenario_id, position, name, backstory, initial_statement, final_phrase)
VALUES (?, ?, ?, ?, ?, ?)`, s.ScenarioID, s.Position, s.Name, s.Backstory, s.InitialStatement, s.FinalPhrase)
	if err != nil {
		return 0, errors.Wrap(err, "insert suspect", slog.String("name", s.Name))
	}
	return lastInsertID(res)
}

func (r *ScenarioRepository) InsertEvidence(ctx context.Context, tx sqlx.ExecerContext, e models.Evidence) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO evidence (scenario_id, name, description, required)
VALUES (?, ?, ?, ?)`, e.ScenarioID, e.Name, e.Description, e.Required)
	if err != nil {
		return 0, errors.Wrap(err, "insert evidence", slog.String("name", e.Name))
	}
	return lastInsertID(res)
}

func (r *ScenarioRepository) InsertSecret(ctx context.Context, tx sqlx.ExecerContext, s models.Secret) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO secrets (suspect_id, evidence_id, content, is_core)
VALUES (?, ?, ?, ?)`, s.SuspectID, s.EvidenceID, s.Content, s.IsCore)
	if err != nil {
		return 0, errors.Wrap(err, "insert secret", slog.Int64("suspect_id", s.SuspectID))
	}
	return lastInsertID(res)
}

func (r *ScenarioRepository) SetCulprit(ctx context.Context, tx sqlx.ExecerContext, scenarioID, suspectID int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE scenarios SET culprit_suspect_id = ? WHERE id = ?`,
		suspectID, scenarioID); err != nil {
		return errors.Wrap(err, "set culprit", slog.Int64("scenario_id", scenarioID))
	}
	return nil
}

func lastInsertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "last insert id")
	}
	return id, nil
}
