package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/algovyborg/lesson-payments/internal/infra/poller"
)

// PollerHandler is the thin control surface over the poll scheduler.
type PollerHandler struct {
	Poller *poller.Poller
}

func NewPollerHandler(p *poller.Poller) *PollerHandler {
	return &PollerHandler{Poller: p}
}

func (h *PollerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.Poller.Start(); err != nil {
		writePollerError(w, err, http.StatusBadRequest)
		return
	}
	writePollerStatus(w, h.Poller.Status())
}

func (h *PollerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.Poller.Stop(); err != nil {
		writePollerError(w, err, http.StatusBadRequest)
		return
	}
	writePollerStatus(w, h.Poller.Status())
}

func (h *PollerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writePollerStatus(w, h.Poller.Status())
}

// HandleTrigger runs one full poll synchronously: the response only comes
// back once the batch is done. A run already in progress is a 409, not a
// queued request.
func (h *PollerHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if err := h.Poller.TriggerOnce(r.Context()); err != nil {
		if errors.Is(err, poller.ErrAlreadyRunning) {
			writePollerError(w, err, http.StatusConflict)
			return
		}
		writePollerError(w, err, http.StatusInternalServerError)
		return
	}
	writePollerStatus(w, h.Poller.Status())
}

func writePollerStatus(w http.ResponseWriter, status poller.Status) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "status": status})
}

func writePollerError(w http.ResponseWriter, err error, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": err.Error()})
}
