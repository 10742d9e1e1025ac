package usecase

import (
	"context"

	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
)

// CRMGateway is the read-only window into the CRM. Not-found conditions
// surface as amocrm.ErrNotFound.
type CRMGateway interface {
	GetLead(ctx context.Context, id int) (*amocrm.Lead, error)
	GetCatalogElement(ctx context.Context, catalogID, elementID int) (*amocrm.CatalogElement, error)
	GetInvoicePaidEvents(ctx context.Context, createdAtSince int64) ([]amocrm.Event, error)
	GetCatalogElementLinks(ctx context.Context, catalogID, elementID int, toEntityType string) ([]amocrm.EntityLink, error)
}

// Notifier is the operational notification sink. Delivery failures must never
// change a reconciliation outcome; callers ignore the returned error beyond
// logging.
type Notifier interface {
	LogInfo(message string) error
	LogSuccess(message string) error
	LogError(message string) error
}
