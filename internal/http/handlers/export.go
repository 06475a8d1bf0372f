package handlers

import (
	"net/http"

	"campaignops/internal/export"
	"campaignops/internal/middleware"
)

// ExportTransparency streams the transparency bundle for ?goal= as a zip.
func (a *App) ExportTransparency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b := export.Build(a.Calc, a.Trust, q.Get("goal"), middleware.LocaleFromContext(r.Context()), a.Velocity, a.now())
	data, err := export.Archive(b)
	if err != nil {
		a.Logger.Error().Err(err).Msg("transparency export failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build export")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="transparency.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
