package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
)

func (a *App) TrustShareholders(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Trust.ShareholderStats()})
}

// TrustProjection projects at ?velocity= per month, or the configured
// default velocity when absent.
func (a *App) TrustProjection(w http.ResponseWriter, r *http.Request) {
	velocity := a.Velocity
	if raw := r.URL.Query().Get("velocity"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "velocity must be a number")
			return
		}
		velocity = v
	}
	a.json(w, http.StatusOK, a.Trust.ProjectResolution(velocity))
}
