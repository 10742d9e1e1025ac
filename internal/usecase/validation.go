package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WebhookPayload is the shape amoCRM pushes on lead changes. Only the action
// lists carrying lead ids matter here; everything else in the push is noise.
type WebhookPayload struct {
	Account struct {
		Subdomain string `json:"subdomain"`
	} `json:"account"`
	Leads struct {
		Add    []LeadAction `json:"add"`
		Status []LeadAction `json:"status"`
	} `json:"leads"`
}

type LeadAction struct {
	ID int `json:"id"`
}

// LeadIDs returns the lead ids of the push, preferring "add" actions and
// falling back to "status" ones, mirroring the upstream contract where a push
// carries exactly one of the two.
func (p WebhookPayload) LeadIDs() []int {
	actions := p.Leads.Add
	if len(actions) == 0 {
		actions = p.Leads.Status
	}

	ids := make([]int, 0, len(actions))
	for _, a := range actions {
		if a.ID > 0 {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ValidateWebhookPayload is the structural gate: a payload failing here is
// rejected at the boundary and never reaches the reconciliation pipeline.
func ValidateWebhookPayload(p WebhookPayload) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.Account.Subdomain) == "" {
		errs = append(errs, ValidationError{"account.subdomain", "is required"})
	}
	if len(p.Leads.Add) == 0 && len(p.Leads.Status) == 0 {
		errs = append(errs, ValidationError{"leads", "must carry at least one add or status action"})
	}
	for i, a := range p.Leads.Add {
		if a.ID <= 0 {
			errs = append(errs, ValidationError{fmt.Sprintf("leads.add[%d].id", i), "must be a positive id"})
		}
	}
	for i, a := range p.Leads.Status {
		if a.ID <= 0 {
			errs = append(errs, ValidationError{fmt.Sprintf("leads.status[%d].id", i), "must be a positive id"})
		}
	}

	return errs
}
