package usecase

// ProcessOutcome classifies one event's terminal state. Success means exactly
// one payment was committed; otherwise Reason names the dead-letter bucket.
type ProcessOutcome struct {
	LeadID  int    `json:"lead_id"`
	EventID string `json:"event_id,omitempty"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}
