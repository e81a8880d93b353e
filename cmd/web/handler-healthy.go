package main

import (
	"net/http"

	"github.com/myrjola/interrogation/internal/errors"
)

// healthy responds with a JSON object indicating that the server and its database are healthy.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	if err := app.db.Ping(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "health check"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
