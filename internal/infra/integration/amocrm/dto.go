package amocrm

import (
	"fmt"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

// Wire DTOs for the amoCRM v4 API. Decoding and structural validation happen
// here; the exported types below are what the rest of the system sees. The
// upstream is only partially trustworthy, so every wire field is a pointer
// and validation decides what is actually required.

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// --- lead ---

type rawElementMetadata struct {
	CatalogID *int     `json:"catalog_id"`
	Quantity  *float64 `json:"quantity"`
	PriceID   *int     `json:"price_id"`
}

type rawCatalogElementRef struct {
	ID       *int                `json:"id"`
	Metadata *rawElementMetadata `json:"metadata"`
}

type rawLead struct {
	ID         *int     `json:"id"`
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	StatusID   *int     `json:"status_id"`
	PipelineID *int     `json:"pipeline_id"`
	CreatedAt  *int64   `json:"created_at"`
	Embedded   *struct {
		CatalogElements []rawCatalogElementRef `json:"catalog_elements"`
	} `json:"_embedded"`
}

func (r rawLead) validate() []ValidationError {
	var errs []ValidationError

	if r.ID == nil {
		errs = append(errs, ValidationError{"id", "is required"})
	}
	if r.Name == nil || *r.Name == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}
	if r.Embedded != nil {
		for i, el := range r.Embedded.CatalogElements {
			if el.ID == nil {
				errs = append(errs, ValidationError{fmt.Sprintf("_embedded.catalog_elements[%d].id", i), "is required"})
			}
			if el.Metadata == nil || el.Metadata.CatalogID == nil {
				errs = append(errs, ValidationError{fmt.Sprintf("_embedded.catalog_elements[%d].metadata.catalog_id", i), "is required"})
			}
		}
	}

	return errs
}

// ElementMetadata describes how a catalog element is attached to a lead.
type ElementMetadata struct {
	CatalogID int     `json:"catalog_id"`
	Quantity  float64 `json:"quantity"`
	PriceID   int     `json:"price_id"`
}

type CatalogElementRef struct {
	ID       int             `json:"id"`
	Metadata ElementMetadata `json:"metadata"`
}

// Lead is a CRM sales opportunity. CatalogElements preserves attachment
// order; the reconciliation pipeline always uses the last one.
type Lead struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	Price           float64             `json:"price"`
	StatusID        int                 `json:"status_id"`
	PipelineID      int                 `json:"pipeline_id"`
	CreatedAt       int64               `json:"created_at"`
	CatalogElements []CatalogElementRef `json:"catalog_elements"`
}

func (r rawLead) toLead() *Lead {
	lead := &Lead{
		ID:   intOrZero(r.ID),
		Name: strOrEmpty(r.Name),
	}
	if r.Price != nil {
		lead.Price = *r.Price
	}
	lead.StatusID = intOrZero(r.StatusID)
	lead.PipelineID = intOrZero(r.PipelineID)
	if r.CreatedAt != nil {
		lead.CreatedAt = *r.CreatedAt
	}
	if r.Embedded != nil {
		for _, el := range r.Embedded.CatalogElements {
			ref := CatalogElementRef{ID: intOrZero(el.ID)}
			if el.Metadata != nil {
				ref.Metadata = ElementMetadata{
					CatalogID: intOrZero(el.Metadata.CatalogID),
					PriceID:   intOrZero(el.Metadata.PriceID),
				}
				if el.Metadata.Quantity != nil {
					ref.Metadata.Quantity = *el.Metadata.Quantity
				}
			}
			lead.CatalogElements = append(lead.CatalogElements, ref)
		}
	}
	return lead
}

// --- catalog element ---

type rawItemValue struct {
	ProductID   *int     `json:"product_id"`
	Description *string  `json:"description"`
	UnitPrice   *float64 `json:"unit_price"`
	UnitType    *string  `json:"unit_type"`
	Quantity    *float64 `json:"quantity"`
	TotalSum    *float64 `json:"total_sum"`
}

type rawFieldValue struct {
	// "items"-typed fields nest the payload under "value"; scalar fields put
	// it directly there. Only items are unwrapped, everything else is kept
	// opaque.
	Value *rawItemValue `json:"value"`
}

type rawCustomField struct {
	FieldID   *int            `json:"field_id"`
	FieldName *string         `json:"field_name"`
	FieldType *string         `json:"field_type"`
	Values    []rawFieldValue `json:"values"`
}

type rawCatalogElement struct {
	ID                *int             `json:"id"`
	Name              *string          `json:"name"`
	CustomFieldValues []rawCustomField `json:"custom_fields_values"`
}

func (r rawCatalogElement) validate() []ValidationError {
	var errs []ValidationError

	if r.ID == nil {
		errs = append(errs, ValidationError{"id", "is required"})
	}
	for i, f := range r.CustomFieldValues {
		if f.FieldType == nil {
			errs = append(errs, ValidationError{fmt.Sprintf("custom_fields_values[%d].field_type", i), "is required"})
		}
	}

	return errs
}

type CustomField struct {
	FieldID   int
	FieldName string
	FieldType string
	Items     []entity.ProductLine
}

// CatalogElement is a purchased bundle attached to a lead.
type CatalogElement struct {
	ID     int
	Name   string
	Fields []CustomField
}

// Items unwraps every entry of the element's "items"-typed custom field into
// flat product lines. Other field types are ignored.
func (e *CatalogElement) Items() []entity.ProductLine {
	for _, f := range e.Fields {
		if f.FieldType == "items" {
			return f.Items
		}
	}
	return nil
}

func (r rawCatalogElement) toCatalogElement() *CatalogElement {
	el := &CatalogElement{
		ID:   intOrZero(r.ID),
		Name: strOrEmpty(r.Name),
	}
	for _, f := range r.CustomFieldValues {
		field := CustomField{
			FieldID:   intOrZero(f.FieldID),
			FieldName: strOrEmpty(f.FieldName),
			FieldType: strOrEmpty(f.FieldType),
		}
		if field.FieldType == "items" {
			for _, v := range f.Values {
				if v.Value == nil {
					continue
				}
				line := entity.ProductLine{
					ProductID:   intOrZero(v.Value.ProductID),
					Description: strOrEmpty(v.Value.Description),
					UnitType:    strOrEmpty(v.Value.UnitType),
				}
				if v.Value.UnitPrice != nil {
					line.UnitPrice = *v.Value.UnitPrice
				}
				if v.Value.Quantity != nil {
					line.Quantity = *v.Value.Quantity
				}
				if v.Value.TotalSum != nil {
					line.TotalSum = *v.Value.TotalSum
				}
				field.Items = append(field.Items, line)
			}
		}
		el.Fields = append(el.Fields, field)
	}
	return el
}

// --- events feed ---

type rawEvent struct {
	ID         *string `json:"id"`
	Type       *string `json:"type"`
	EntityID   *int    `json:"entity_id"`
	EntityType *string `json:"entity_type"`
	CreatedAt  *int64  `json:"created_at"`
	Embedded   *struct {
		Entity *struct {
			ID        *int `json:"id"`
			CatalogID *int `json:"catalog_id"`
		} `json:"entity"`
	} `json:"_embedded"`
}

type rawEventsResponse struct {
	Embedded *struct {
		Events []rawEvent `json:"events"`
	} `json:"_embedded"`
}

func (r rawEventsResponse) validate() []ValidationError {
	var errs []ValidationError

	if r.Embedded == nil {
		return errs
	}
	for i, ev := range r.Embedded.Events {
		if ev.CreatedAt == nil {
			errs = append(errs, ValidationError{fmt.Sprintf("_embedded.events[%d].created_at", i), "is required"})
		}
	}

	return errs
}

// Event is one "invoice paid" entry from the CRM events feed. EntityID is the
// paid catalog element; CatalogID comes flattened out of _embedded.entity.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	EntityID   int    `json:"entity_id"`
	EntityType string `json:"entity_type"`
	CreatedAt  int64  `json:"created_at"`
	CatalogID  int    `json:"catalog_id"`
}

func (r rawEventsResponse) toEvents() []Event {
	if r.Embedded == nil {
		return nil
	}
	events := make([]Event, 0, len(r.Embedded.Events))
	for _, ev := range r.Embedded.Events {
		e := Event{
			ID:         strOrEmpty(ev.ID),
			Type:       strOrEmpty(ev.Type),
			EntityID:   intOrZero(ev.EntityID),
			EntityType: strOrEmpty(ev.EntityType),
		}
		if ev.CreatedAt != nil {
			e.CreatedAt = *ev.CreatedAt
		}
		if ev.Embedded != nil && ev.Embedded.Entity != nil {
			e.CatalogID = intOrZero(ev.Embedded.Entity.CatalogID)
			if e.EntityID == 0 {
				e.EntityID = intOrZero(ev.Embedded.Entity.ID)
			}
		}
		events = append(events, e)
	}
	return events
}

// --- entity links ---

type rawEntityLink struct {
	ToEntityID   *int    `json:"to_entity_id"`
	ToEntityType *string `json:"to_entity_type"`
}

type rawLinksResponse struct {
	Embedded *struct {
		Links []rawEntityLink `json:"links"`
	} `json:"_embedded"`
}

// EntityLink maps a catalog element back to a related entity (a lead, for
// this pipeline).
type EntityLink struct {
	ToEntityID   int    `json:"to_entity_id"`
	ToEntityType string `json:"to_entity_type"`
}

func (r rawLinksResponse) toLinks() []EntityLink {
	if r.Embedded == nil {
		return nil
	}
	links := make([]EntityLink, 0, len(r.Embedded.Links))
	for _, l := range r.Embedded.Links {
		links = append(links, EntityLink{
			ToEntityID:   intOrZero(l.ToEntityID),
			ToEntityType: strOrEmpty(l.ToEntityType),
		})
	}
	return links
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
