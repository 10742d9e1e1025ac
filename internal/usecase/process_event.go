package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/algovyborg/lesson-payments/internal/entity"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
)

// ProcessEventUseCase is the reconciliation orchestrator. Every event or lead
// handed to it ends in exactly one of two places: a committed payment or a
// dead-lettered record with a diagnostic reason. Failures are terminal per
// event and never abort the batch.
type ProcessEventUseCase struct {
	CRM        CRMGateway
	Resolver   *ResolveLeadProductsUseCase
	Matcher    *StudentMatcher
	Recorder   *RecordPaymentUseCase
	Catalog    *entity.ProductCatalog
	DeadLetter entity.UnprocessedPaymentRepositoryInterface
	Notifier   Notifier
}

func NewProcessEventUseCase(
	crm CRMGateway,
	resolver *ResolveLeadProductsUseCase,
	matcher *StudentMatcher,
	recorder *RecordPaymentUseCase,
	catalog *entity.ProductCatalog,
	deadLetter entity.UnprocessedPaymentRepositoryInterface,
	notifier Notifier,
) *ProcessEventUseCase {
	return &ProcessEventUseCase{
		CRM:        crm,
		Resolver:   resolver,
		Matcher:    matcher,
		Recorder:   recorder,
		Catalog:    catalog,
		DeadLetter: deadLetter,
		Notifier:   notifier,
	}
}

// unprocessedRecord is the raw payload filed with every dead letter. It has
// to carry enough context for a human to finish the case by hand.
type unprocessedRecord struct {
	EventID   string               `json:"event_id,omitempty"`
	LeadID    int                  `json:"lead_id,omitempty"`
	LeadName  string               `json:"lead_name,omitempty"`
	CatalogID int                  `json:"catalog_id,omitempty"`
	ElementID int                  `json:"element_id,omitempty"`
	Products  []entity.ProductLine `json:"products,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// ProcessLead drives the webhook path: lead → last catalog element → items.
func (uc *ProcessEventUseCase) ProcessLead(ctx context.Context, leadID int) ProcessOutcome {
	rec := unprocessedRecord{LeadID: leadID}

	lead, lines, err := uc.Resolver.Execute(ctx, leadID)
	if err != nil {
		rec.Error = err.Error()
		return uc.deadLetter(ctx, ProcessOutcome{LeadID: leadID}, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, nil)
	}

	rec.LeadName = lead.Name
	return uc.finish(ctx, ProcessOutcome{LeadID: lead.ID}, lead, lines, rec)
}

// ProcessEvent drives the poll path: event → catalog element → entity links →
// lead → items.
func (uc *ProcessEventUseCase) ProcessEvent(ctx context.Context, ev amocrm.Event) ProcessOutcome {
	out := ProcessOutcome{EventID: ev.ID}
	rec := unprocessedRecord{EventID: ev.ID, CatalogID: ev.CatalogID, ElementID: ev.EntityID}

	if ev.CatalogID == 0 || ev.EntityID == 0 {
		rec.Error = "event is missing catalog_id or entity_id"
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: event %s is missing catalog_id or entity_id", ReasonProcessingError, ev.ID), ReasonProcessingError, rec, nil)
	}

	element, err := uc.CRM.GetCatalogElement(ctx, ev.CatalogID, ev.EntityID)
	if err != nil {
		rec.Error = err.Error()
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, nil)
	}
	lines := element.Items()

	leadID, err := uc.extractLeadID(ctx, ev.CatalogID, ev.EntityID)
	if err != nil {
		rec.Error = err.Error()
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, nil)
	}
	out.LeadID = leadID
	rec.LeadID = leadID

	lead, err := uc.CRM.GetLead(ctx, leadID)
	if err != nil {
		rec.Error = err.Error()
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, nil)
	}

	rec.LeadName = lead.Name
	return uc.finish(ctx, out, lead, lines, rec)
}

// finish runs the shared tail of the state machine: product count → catalog
// match → student match → record. Each transition is one-way.
func (uc *ProcessEventUseCase) finish(ctx context.Context, out ProcessOutcome, lead *amocrm.Lead, lines []entity.ProductLine, rec unprocessedRecord) ProcessOutcome {
	rec.Products = lines

	if len(lines) == 0 {
		return uc.deadLetter(ctx, out, ReasonNoProducts, ReasonNoProducts, rec, nil)
	}
	if len(lines) > 1 {
		return uc.deadLetter(ctx, out, ReasonMultipleProducts, ReasonMultipleProducts, rec, nil)
	}
	line := lines[0]

	entry, ok := uc.Catalog.Find(line.ProductID, line.Description)
	if !ok {
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: product %d (%s) in lead %d", ReasonUnknownProduct, line.ProductID, line.Description, lead.ID), ReasonUnknownProduct, rec, nil)
	}

	student, err := uc.Matcher.FindStudent(ctx, lead.Name)
	if err != nil {
		if IsDomainError(err) {
			return uc.deadLetter(ctx, out, fmt.Sprintf("%s: lead %d name %q", ReasonInsufficientNameParts, lead.ID, lead.Name), ReasonInsufficientNameParts, rec, nil)
		}
		rec.Error = err.Error()
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, nil)
	}
	if student == nil {
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: lead %d name %q", ReasonStudentNotFound, lead.ID, lead.Name), ReasonStudentNotFound, rec, nil)
	}

	payment, err := uc.Recorder.Execute(ctx, student, entry, line, lead.Name)
	if err != nil {
		rec.Error = err.Error()
		return uc.deadLetter(ctx, out, fmt.Sprintf("%s: %v", ReasonProcessingError, err), ReasonProcessingError, rec, &student.ID)
	}

	log.Printf("✅ lead %d: payment %s recorded for student %d (%d lessons, %.2f)",
		lead.ID, payment.ID, student.ID, payment.LessonCount, payment.Price)
	uc.notify(uc.Notifier.LogSuccess, fmt.Sprintf("Lead %d processed: payment of %.2f for %d lessons credited to student %d %s %s",
		lead.ID, payment.Price, payment.LessonCount, student.ID, student.FirstName, student.LastName))

	out.Success = true
	return out
}

// extractLeadID maps a catalog element back to its owning lead via entity
// links. The first link carrying a lead id wins.
func (uc *ProcessEventUseCase) extractLeadID(ctx context.Context, catalogID, elementID int) (int, error) {
	links, err := uc.CRM.GetCatalogElementLinks(ctx, catalogID, elementID, "leads")
	if err != nil {
		return 0, err
	}
	for _, link := range links {
		if link.ToEntityID != 0 {
			return link.ToEntityID, nil
		}
	}
	return 0, fmt.Errorf("no linked lead for catalog element %d/%d", catalogID, elementID)
}

// deadLetter files an unprocessed payment and closes the event as failed.
// A sink failure here is fatal for this event only: logged, never retried
// inline.
func (uc *ProcessEventUseCase) deadLetter(ctx context.Context, out ProcessOutcome, message, reason string, rec unprocessedRecord, studentID *int64) ProcessOutcome {
	out.Success = false
	out.Reason = reason

	raw, _ := json.Marshal(rec)
	up := entity.NewUnprocessedPayment(raw, reason, studentID)

	if err := uc.DeadLetter.Create(ctx, up); err != nil {
		log.Printf("❌ failed to file unprocessed payment (lead %d, reason %q): %v", out.LeadID, reason, err)
		uc.notify(uc.Notifier.LogError, fmt.Sprintf("Dead-letter store failure for lead %d (%s): %v", out.LeadID, message, err))
		return out
	}

	log.Printf("⚠️ lead %d dead-lettered: %s", out.LeadID, message)
	uc.notify(uc.Notifier.LogError, message)
	return out
}

func (uc *ProcessEventUseCase) notify(fn func(string) error, message string) {
	if err := fn(message); err != nil {
		log.Printf("⚠️ notifier delivery failed: %v", err)
	}
}
