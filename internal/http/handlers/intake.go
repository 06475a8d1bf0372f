package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"campaignops/internal/ledger"
)

// IntakeTransactions stores an uploaded transaction log and reports how it
// parses. The live ledger is not replaced; a restart picks the file up when
// TRANSACTIONS_PATH points at it.
func (a *App) IntakeTransactions(w http.ResponseWriter, r *http.Request) {
	if a.Files == nil {
		a.error(w, http.StatusServiceUnavailable, "storage_disabled", "upload storage is not configured")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty upload")
		return
	}

	opts := ledger.Options{Normalizer: a.Normalizer, Logger: &a.Logger}
	entries, stats, err := ledger.ParseEntries(bytes.NewReader(body), opts)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "invalid_csv", err.Error())
		return
	}
	preview := ledger.FromEntries(entries, opts)

	key := fmt.Sprintf("transactions/%s-%s.csv", a.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	key, err = a.Files.Write(r.Context(), key, body)
	if err != nil {
		a.Logger.Error().Err(err).Msg("transaction upload not stored")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"key":           key,
		"rows":          stats.Rows,
		"kept":          stats.Kept,
		"ignored":       stats.Ignored,
		"malformed":     stats.Malformed,
		"base_currency": preview.BaseCurrency(),
		"total_debt":    preview.TotalUnsatisfiedDebt().InexactFloat64(),
	})
}
