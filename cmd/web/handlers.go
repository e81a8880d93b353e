package main

import (
	"net/http"

	"github.com/myrjola/interrogation/internal/game"
)

type createSessionRequest struct {
	ScenarioID int64 `json:"scenario_id"`
}

type turnRequest struct {
	Text       string `json:"text"`
	EvidenceID *int64 `json:"evidence_id"`
}

type accuseRequest struct {
	SuspectID   int64   `json:"suspect_id"`
	EvidenceIDs []int64 `json:"evidence_ids"`
}

func (app *application) listScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := app.engine.Scenarios(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"scenarios": orEmpty(scenarios)})
}

func (app *application) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	overview, err := app.engine.CreateSession(r.Context(), req.ScenarioID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	overview.Suspects = orEmpty(overview.Suspects)
	app.writeJSON(w, r, http.StatusCreated, overview)
}

func (app *application) sessionOverview(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	overview, err := app.engine.Overview(r.Context(), sessionID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	overview.Suspects = orEmpty(overview.Suspects)
	app.writeJSON(w, r, http.StatusOK, overview)
}

func (app *application) listSuspects(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	suspects, err := app.engine.Suspects(r.Context(), sessionID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"suspects": orEmpty(suspects)})
}

func (app *application) listEvidence(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	evidence, err := app.engine.Evidence(r.Context(), sessionID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"evidence": orEmpty(evidence)})
}

func (app *application) chatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	suspectID, err := pathID(r, "suspectID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	messages, err := app.engine.ChatHistory(r.Context(), sessionID, suspectID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"messages": orEmpty(messages)})
}

func (app *application) interrogate(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	suspectID, err := pathID(r, "suspectID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var req turnRequest
	if err = decodeJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	result, err := app.engine.Turn(r.Context(), game.TurnInput{
		SessionID:  sessionID,
		SuspectID:  suspectID,
		Text:       req.Text,
		EvidenceID: req.EvidenceID,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	result.RevealedNow = orEmpty(result.RevealedNow)
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionID")
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var req accuseRequest
	if err = decodeJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	verdict, err := app.engine.Accuse(r.Context(), game.AccuseInput{
		SessionID:   sessionID,
		SuspectID:   req.SuspectID,
		EvidenceIDs: req.EvidenceIDs,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	verdict.RequiredEvidenceIDs = orEmpty(verdict.RequiredEvidenceIDs)
	verdict.MissingEvidenceIDs = orEmpty(verdict.MissingEvidenceIDs)
	app.writeJSON(w, r, http.StatusOK, verdict)
}
