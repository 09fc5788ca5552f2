package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/generic"
)

// =============================================================================
// BAS REPORT
// =============================================================================

// GetBasReport computes every period of a fiscal year.
// GET /api/reports/bas?frequency=&basis=&fiscalYearStart=&fyStartMonth=
func (h *Handler) GetBasReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overrides, err := overridesFromQuery(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	req, err := h.resolveRequest(ctx, overrides)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	report, err := h.Reporter.Run(ctx, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// ListBasRuns returns frozen period summaries, newest first.
// GET /api/reports/bas/runs
func (h *Handler) ListBasRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, runs)
}

// CloseBasRuns snapshots every elapsed period of the requested fiscal year
// that has not been snapshotted yet. The body is optional.
// POST /api/reports/bas/runs
func (h *Handler) CloseBasRuns(w http.ResponseWriter, r *http.Request) {
	var body SnapshotRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	req, err := h.resolveRequest(r.Context(), bas.Overrides{
		Frequency:       body.Frequency,
		Basis:           body.Basis,
		FiscalYearStart: body.FiscalYearStart,
		FYStartMonth:    body.FYStartMonth,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	created, err := h.Snapshots.CloseElapsed(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if created == nil {
		created = []bas.Run{}
	}
	writeData(w, http.StatusOK, created)
}

// resolveRequest applies overrides over stored settings over config.
func (h *Handler) resolveRequest(ctx context.Context, o bas.Overrides) (bas.Request, error) {
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		return bas.Request{}, err
	}
	defaults := bas.DefaultsFromSettings(settings, h.defaults)
	return bas.ResolveRequest(defaults, o, generic.DateOf(h.now()))
}

func overridesFromQuery(q url.Values) (bas.Overrides, error) {
	var o bas.Overrides
	v := generic.NewValidationError()

	if s := q.Get("frequency"); s != "" {
		o.Frequency = &s
	}
	if s := q.Get("basis"); s != "" {
		o.Basis = &s
	}
	if s := q.Get("fiscalYearStart"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			v.Add("fiscalYearStart", "must be a year")
		} else {
			o.FiscalYearStart = &n
		}
	}
	if s := q.Get("fyStartMonth"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			v.Add("fyStartMonth", "must be between 1 and 12")
		} else {
			o.FYStartMonth = &n
		}
	}

	return o, v.OrNil()
}
