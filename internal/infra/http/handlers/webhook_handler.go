package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/algovyborg/lesson-payments/internal/infra/queue"
	"github.com/algovyborg/lesson-payments/internal/usecase"
)

type WebhookHandler struct {
	Producer queue.ProducerInterface
}

func NewWebhookHandler(producer queue.ProducerInterface) *WebhookHandler {
	return &WebhookHandler{Producer: producer}
}

// Handle accepts an amoCRM lead push. Structurally invalid payloads are
// rejected here with field errors; they are not business cases and never
// reach the dead-letter queue. Valid lead actions are enqueued per lead and
// reconciled by the worker.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload usecase.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	if errs := usecase.ValidateWebhookPayload(payload); len(errs) > 0 {
		fields := make([]map[string]string, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, map[string]string{"field": e.Field, "message": e.Message})
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "errors": fields})
		return
	}

	for _, leadID := range payload.LeadIDs() {
		err := h.Producer.PublishLead(r.Context(), queue.LeadQueuedPayload{
			LeadID:    leadID,
			Subdomain: payload.Account.Subdomain,
			Origin:    "WEBHOOK",
		})
		if err != nil {
			log.Printf("❌ failed to enqueue lead %d: %v", leadID, err)
			http.Error(w, "queue unavailable", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
