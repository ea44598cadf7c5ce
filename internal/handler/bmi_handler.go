package handler

import (
	"net/http"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
	"github.com/yusufkecer/bmi-tracker/internal/middleware"
	"github.com/yusufkecer/bmi-tracker/internal/service"
)

type BMIHandler struct {
	tracker *service.Tracker
}

func NewBMIHandler(tracker *service.Tracker) *BMIHandler {
	return &BMIHandler{tracker: tracker}
}

type calculateRequest struct {
	Weight formValue `json:"weight"`
	Height formValue `json:"height"`
}

type calculateResponse struct {
	Record  domain.BmiRecord      `json:"record"`
	History []domain.HistoryPoint `json:"history"`
	Message string                `json:"message"`
}

// Calculate records a new measurement for the session's user.
func (h *BMIHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	calc, err := h.tracker.Calculate(r.Context(), sess, string(req.Weight), string(req.Height))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, calculateResponse{
		Record:  calc.Record,
		History: calc.History,
		Message: calc.Summary(),
	})
}

func (h *BMIHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.tracker.Latest(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec})
}

// History returns the chart series, oldest first.
func (h *BMIHandler) History(w http.ResponseWriter, r *http.Request) {
	points, err := h.tracker.History(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}
