package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shiftguard/internal/compliance"
)

type validateRequest struct {
	EntryID      string             `json:"entry_id"`
	UserAge      *int               `json:"user_age,omitempty"`
	IsPregnant   bool               `json:"is_pregnant,omitempty"`
	SiteLocation *coordinatePayload `json:"site_location,omitempty"`
	UserLocation *coordinatePayload `json:"user_location,omitempty"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[validateRequest](w, r)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(req.EntryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_entry_id"})
		return
	}

	results, err := h.compliance.ValidateEntry(r.Context(), compliance.ValidateRequest{
		EntryID:        entryID,
		UserAge:        req.UserAge,
		IsPregnant:     req.IsPregnant,
		LocationCoords: req.SiteLocation.toDomain(),
		UserCoords:     req.UserLocation.toDomain(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleChainList(w http.ResponseWriter, r *http.Request) {
	chainID := chi.URLParam(r, "chainID")
	entries, err := h.audits.Chain(r.Context(), chainID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chain_id": chainID, "entries": entries})
}

func (h *Handler) handleChainVerify(w http.ResponseWriter, r *http.Request) {
	chainID := chi.URLParam(r, "chainID")
	report, err := h.audits.VerifyChain(r.Context(), chainID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
