package usecase

import (
	"context"

	"github.com/algovyborg/lesson-payments/internal/entity"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
)

// ResolveLeadProductsUseCase turns a lead id into the product lines of its
// most recently attached catalog element.
type ResolveLeadProductsUseCase struct {
	CRM CRMGateway
}

func NewResolveLeadProductsUseCase(crm CRMGateway) *ResolveLeadProductsUseCase {
	return &ResolveLeadProductsUseCase{CRM: crm}
}

// Execute fetches the lead and unwraps the items of its last catalog element.
// A lead without catalog elements is not an error: the lead comes back with
// an empty line list so the caller can dead-letter it with full context.
// Read-only: no CRM or local state is mutated.
func (uc *ResolveLeadProductsUseCase) Execute(ctx context.Context, leadID int) (*amocrm.Lead, []entity.ProductLine, error) {
	lead, err := uc.CRM.GetLead(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	if len(lead.CatalogElements) == 0 {
		return lead, nil, nil
	}

	// Attachment order, not creation time: the last element is the bundle
	// the manager attached most recently.
	last := lead.CatalogElements[len(lead.CatalogElements)-1]

	element, err := uc.CRM.GetCatalogElement(ctx, last.Metadata.CatalogID, last.ID)
	if err != nil {
		return lead, nil, err
	}

	return lead, element.Items(), nil
}
