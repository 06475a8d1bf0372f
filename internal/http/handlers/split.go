package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"campaignops/internal/campaigns"
	"campaignops/internal/liquidity"
	"campaignops/internal/middleware"
)

type splitRequest struct {
	// Goal is free text such as "€1.200,50"; numbers are accepted too.
	Goal json.RawMessage `json:"goal"`
}

func (req splitRequest) goalText() string {
	raw := strings.TrimSpace(string(req.Goal))
	var s string
	if err := json.Unmarshal(req.Goal, &s); err == nil {
		return s
	}
	return raw
}

type splitResponse struct {
	Split      liquidity.Split `json:"split"`
	Disclosure string          `json:"disclosure"`
	Locale     string          `json:"locale"`
}

// Split previews the split of a goal. The ledger is left untouched.
func (a *App) Split(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Goal) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.json(w, http.StatusOK, a.preview(r, req.goalText()))
}

func (a *App) preview(r *http.Request, goal string) splitResponse {
	locale := middleware.LocaleFromContext(r.Context())
	s := a.Calc.Preview(goal)
	return splitResponse{
		Split:      s,
		Disclosure: liquidity.Disclosure(s, a.Calc.Policy(), locale),
		Locale:     string(locale),
	}
}

// campaignGoal is the goal text a campaign is split on: its stated goal, or
// the amount raised when no goal was imported.
func campaignGoal(c campaigns.Campaign) string {
	if strings.TrimSpace(c.Goal) != "" {
		return c.Goal
	}
	return c.Raised.String()
}

func (a *App) loadCampaign(w http.ResponseWriter, r *http.Request) (campaigns.Campaign, bool) {
	id := chi.URLParam(r, "id")
	c, err := a.Campaigns.Get(r.Context(), id)
	switch {
	case errors.Is(err, campaigns.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "campaign not found")
		return c, false
	case err != nil:
		a.Logger.Error().Err(err).Str("campaign_id", id).Msg("campaign lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load campaign")
		return c, false
	}
	return c, true
}

func (a *App) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	items, err := a.Campaigns.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("campaign list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load campaigns")
		return
	}
	if items == nil {
		items = []campaigns.Campaign{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) CampaignSplit(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadCampaign(w, r)
	if !ok {
		return
	}
	resp := a.preview(r, campaignGoal(c))
	a.json(w, http.StatusOK, map[string]any{
		"campaign":   c,
		"split":      resp.Split,
		"disclosure": resp.Disclosure,
		"locale":     resp.Locale,
	})
}

// CampaignResolve applies the campaign's split to the ledger. Repeated calls
// for one campaign return the first application with replayed set.
func (a *App) CampaignResolve(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadCampaign(w, r)
	if !ok {
		return
	}
	app, err := a.Calc.Apply(r.Context(), c.ID, a.Calc.Compute(campaignGoal(c)))
	if err != nil {
		if errors.Is(err, liquidity.ErrNoLedger) {
			a.error(w, http.StatusConflict, "no_ledger", "no transaction ledger loaded")
			return
		}
		a.Logger.Error().Err(err).Str("campaign_id", c.ID).Msg("debt resolution failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to apply split")
		return
	}
	status := http.StatusCreated
	if app.Replayed {
		status = http.StatusOK
	}
	a.Logger.Info().
		Str("campaign_id", c.ID).
		Str("operator", middleware.OperatorFromContext(r.Context())).
		Bool("replayed", app.Replayed).
		Msg("campaign resolved")
	a.json(w, status, map[string]any{
		"campaign_id": c.ID,
		"entry_id":    app.EntryID,
		"replayed":    app.Replayed,
		"split":       app.Split,
	})
}
