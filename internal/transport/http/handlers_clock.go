package httptransport

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"shiftguard/internal/domain"
)

type coordinatePayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *coordinatePayload) toDomain() *domain.Coordinate {
	if c == nil {
		return nil
	}
	return &domain.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

type clockRequest struct {
	WorkerID string             `json:"worker_id"`
	At       *time.Time         `json:"at,omitempty"`
	Location *coordinatePayload `json:"location,omitempty"`
}

func (req clockRequest) parse() (uuid.UUID, time.Time, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}
	return workerID, at, nil
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[clockRequest](w, r)
	if !ok {
		return
	}
	workerID, at, err := req.parse()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_worker_id"})
		return
	}

	entry, err := h.workforce.ClockIn(r.Context(), workerID, at, req.Location.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[clockRequest](w, r)
	if !ok {
		return
	}
	workerID, at, err := req.parse()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_worker_id"})
		return
	}

	entry, err := h.workforce.ClockOut(r.Context(), workerID, at, req.Location.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type breakStartRequest struct {
	WorkerID  string     `json:"worker_id"`
	At        *time.Time `json:"at,omitempty"`
	BreakType string     `json:"break_type"`
}

func (h *Handler) handleBreakStart(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[breakStartRequest](w, r)
	if !ok {
		return
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_worker_id"})
		return
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}
	breakType := domain.BreakType(req.BreakType)
	if breakType != domain.BreakPaid && breakType != domain.BreakUnpaid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_break_type"})
		return
	}

	b, err := h.workforce.StartBreak(r.Context(), workerID, at, breakType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type breakEndRequest struct {
	WorkerID string     `json:"worker_id"`
	BreakID  string     `json:"break_id"`
	At       *time.Time `json:"at,omitempty"`
}

func (h *Handler) handleBreakEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[breakEndRequest](w, r)
	if !ok {
		return
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_worker_id"})
		return
	}
	breakID, err := uuid.Parse(req.BreakID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_break_id"})
		return
	}
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	b, err := h.workforce.EndBreak(r.Context(), workerID, breakID, at)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type correctionRequest struct {
	EntryID  string    `json:"entry_id"`
	ClockIn  time.Time `json:"clock_in"`
	ClockOut time.Time `json:"clock_out"`
}

func (h *Handler) handleCorrectionApprove(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[correctionRequest](w, r)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(req.EntryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_entry_id"})
		return
	}

	entry, err := h.workforce.ApproveCorrection(r.Context(), entryID, req.ClockIn, req.ClockOut)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
