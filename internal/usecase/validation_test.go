package usecase_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/algovyborg/lesson-payments/internal/usecase"
)

func decodePayload(t *testing.T, raw string) usecase.WebhookPayload {
	t.Helper()
	var p usecase.WebhookPayload
	assert.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestValidateWebhookPayloadValid(t *testing.T) {
	p := decodePayload(t, `{
		"account": {"subdomain": "algovyborg"},
		"leads": {"status": [{"id": 101}]}
	}`)

	assert.Empty(t, usecase.ValidateWebhookPayload(p))
}

func TestValidateWebhookPayloadMissingSubdomain(t *testing.T) {
	p := decodePayload(t, `{"leads": {"add": [{"id": 101}]}}`)

	errs := usecase.ValidateWebhookPayload(p)
	assert.Len(t, errs, 1)
	assert.Equal(t, "account.subdomain", errs[0].Field)
}

func TestValidateWebhookPayloadWithoutActions(t *testing.T) {
	p := decodePayload(t, `{"account": {"subdomain": "algovyborg"}, "leads": {}}`)

	errs := usecase.ValidateWebhookPayload(p)
	assert.Len(t, errs, 1)
	assert.Equal(t, "leads", errs[0].Field)
}

func TestValidateWebhookPayloadRejectsNonPositiveIDs(t *testing.T) {
	p := decodePayload(t, `{
		"account": {"subdomain": "algovyborg"},
		"leads": {"add": [{"id": 0}], "status": [{"id": -3}]}
	}`)

	errs := usecase.ValidateWebhookPayload(p)
	assert.Len(t, errs, 2)
	assert.Equal(t, "leads.add[0].id", errs[0].Field)
	assert.Equal(t, "leads.status[0].id", errs[1].Field)
}

func TestLeadIDsPrefersAddActions(t *testing.T) {
	p := decodePayload(t, `{
		"account": {"subdomain": "algovyborg"},
		"leads": {"add": [{"id": 101}, {"id": 102}], "status": [{"id": 999}]}
	}`)

	assert.Equal(t, []int{101, 102}, p.LeadIDs())
}

func TestLeadIDsFallsBackToStatus(t *testing.T) {
	p := decodePayload(t, `{
		"account": {"subdomain": "algovyborg"},
		"leads": {"status": [{"id": 101}]}
	}`)

	assert.Equal(t, []int{101}, p.LeadIDs())
}

func TestLeadIDsFiltersZeroIDs(t *testing.T) {
	p := decodePayload(t, `{
		"account": {"subdomain": "algovyborg"},
		"leads": {"add": [{"id": 0}, {"id": 101}]}
	}`)

	assert.Equal(t, []int{101}, p.LeadIDs())
}
