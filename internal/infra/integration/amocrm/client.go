package amocrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is reported when the CRM has no record for the requested id.
var ErrNotFound = errors.New("amocrm: not found")

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(subdomain, apiToken string) *Client {
	return &Client{
		apiToken: apiToken,
		baseURL:  fmt.Sprintf("https://%s.amocrm.ru/api/v4", url.PathEscape(subdomain)),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) GetLead(ctx context.Context, id int) (*Lead, error) {
	body, err := c.get(ctx, fmt.Sprintf("/leads/%d?with=catalog_elements", id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("lead %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var raw rawLead
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode lead %d: %w", id, err)
	}
	if errs := raw.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("lead %d failed validation: %v", id, errs)
	}

	return raw.toLead(), nil
}

func (c *Client) GetCatalogElement(ctx context.Context, catalogID, elementID int) (*CatalogElement, error) {
	body, err := c.get(ctx, fmt.Sprintf("/catalogs/%d/elements/%d", catalogID, elementID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("catalog element %d/%d: %w", catalogID, elementID, ErrNotFound)
		}
		return nil, err
	}

	var raw rawCatalogElement
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog element %d/%d: %w", catalogID, elementID, err)
	}
	if errs := raw.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("catalog element %d/%d failed validation: %v", catalogID, elementID, errs)
	}

	return raw.toCatalogElement(), nil
}

// GetInvoicePaidEvents returns all "invoice paid" events strictly newer than
// createdAtSince, in feed order. An empty window is not an error.
func (c *Client) GetInvoicePaidEvents(ctx context.Context, createdAtSince int64) ([]Event, error) {
	q := url.Values{}
	q.Set("filter[type]", "invoice_paid")
	if createdAtSince > 0 {
		q.Set("filter[created_at][from]", strconv.FormatInt(createdAtSince, 10))
	}

	body, err := c.get(ctx, "/events?"+q.Encode())
	if err != nil {
		// The feed answers 204 when the window is empty.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var raw rawEventsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode invoice_paid events: %w", err)
	}
	if errs := raw.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invoice_paid events failed validation: %v", errs)
	}

	return raw.toEvents(), nil
}

func (c *Client) GetCatalogElementLinks(ctx context.Context, catalogID, elementID int, toEntityType string) ([]EntityLink, error) {
	path := fmt.Sprintf("/catalogs/%d/elements/%d/links?filter[to_entity_type]=%s",
		catalogID, elementID, url.QueryEscape(toEntityType))

	body, err := c.get(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var raw rawLinksResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode links for element %d/%d: %w", catalogID, elementID, err)
	}

	return raw.toLinks(), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ amoCRM: request failed: %v", err)
		return nil, fmt.Errorf("amocrm request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusNoContent:
		return nil, ErrNotFound
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("amocrm returned %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
