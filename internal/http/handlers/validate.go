package handlers

import (
	"encoding/json"
	"net/http"

	"campaignops/internal/middleware"
	"campaignops/internal/pipeline"
	"campaignops/internal/validator"
)

type validateRequest struct {
	Text  string            `json:"text"`
	Rules validator.Rules   `json:"rules"`
	Vars  map[string]string `json:"vars"`
}

// Validate checks text against the given rules. {name} placeholders in rule
// values are filled from vars and the liq_* variables of the goal_amount variable.
func (a *App) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	vars := map[string]string{}
	if goal, ok := req.Vars[pipeline.GoalVariable]; ok {
		for k, v := range a.Calc.Variables(goal, middleware.LocaleFromContext(r.Context())) {
			vars[k] = v
		}
	}
	for k, v := range req.Vars {
		vars[k] = v
	}
	a.json(w, http.StatusOK, validator.Validate(req.Text, validator.Substitute(req.Rules, vars)))
}
