package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
)

func (app *application) routes(defaultTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.HandleFunc("GET /api/scenarios", app.listScenarios)
	mux.HandleFunc("POST /api/sessions", app.createSession)
	mux.HandleFunc("GET /api/sessions/{sessionID}", app.sessionOverview)
	mux.HandleFunc("GET /api/sessions/{sessionID}/suspects", app.listSuspects)
	mux.HandleFunc("GET /api/sessions/{sessionID}/evidence", app.listEvidence)
	mux.HandleFunc("GET /api/sessions/{sessionID}/suspects/{suspectID}/messages", app.chatHistory)
	mux.HandleFunc("POST /api/sessions/{sessionID}/suspects/{suspectID}/messages", app.interrogate)
	mux.HandleFunc("POST /api/sessions/{sessionID}/accuse", app.accuse)

	common := alice.New(app.recoverPanic, app.requestID, app.logRequest, secureHeaders)
	return common.Then(timeoutHandler(mux, defaultTimeout))
}
