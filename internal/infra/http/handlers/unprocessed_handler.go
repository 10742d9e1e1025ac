package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

// UnprocessedHandler exposes the dead-letter queue for manual remediation.
type UnprocessedHandler struct {
	Repo entity.UnprocessedPaymentRepositoryInterface
}

func NewUnprocessedHandler(repo entity.UnprocessedPaymentRepositoryInterface) *UnprocessedHandler {
	return &UnprocessedHandler{Repo: repo}
}

func (h *UnprocessedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	onlyUnresolved := r.URL.Query().Get("unresolved") == "true"

	items, err := h.Repo.List(r.Context(), onlyUnresolved)
	if err != nil {
		log.Printf("❌ failed to list unprocessed payments: %v", err)
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "items": items})
}

// HandleResolve flips an unprocessed payment to resolved. This is the
// out-of-band manual action; it does not replay the event.
func (h *UnprocessedHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	var body struct {
		StudentID *int64 `json:"student_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Bad JSON", http.StatusBadRequest)
			return
		}
	}

	if err := h.Repo.MarkResolved(r.Context(), id, body.StudentID); err != nil {
		log.Printf("❌ failed to resolve unprocessed payment %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
