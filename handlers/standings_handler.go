package handlers

import (
	"net/http"

	"github.com/matchdayhq/league-platform/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// GetStandingsHandler serves the cached table for
// GET /stages/{stageID}/standings?group_id=N.
func (h *StandingsHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groupID, err := getGroupIDQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.GetTable(r.Context(), stageID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculateStandingsHandler forces a recompute of one scope for
// POST /stages/{stageID}/standings/recalculate?group_id=N. Normally the
// table follows match finalization on its own; this is the admin escape
// hatch after manual data fixes.
func (h *StandingsHandler) RecalculateStandingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groupID, err := getGroupIDQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.standingsService.Recalculate(r.Context(), stageID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	payload := jsonResponse{"standings": table.Rows}
	if len(table.Warnings) > 0 {
		payload["warnings"] = table.Warnings
	}
	if err := writeJSON(w, http.StatusOK, payload, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
