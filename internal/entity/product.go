package entity

import "strings"

// ProductLine is one product entry inside a catalog element's "items" field,
// unwrapped into a flat record.
type ProductLine struct {
	ProductID   int     `json:"product_id"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	UnitType    string  `json:"unit_type"`
	Quantity    float64 `json:"quantity"`
	TotalSum    float64 `json:"total_sum"`
}

// CatalogEntry is a known sellable product. Entries are immutable after
// startup.
type CatalogEntry struct {
	ProductID   int     `json:"product_id"`
	Name        string  `json:"name,omitempty"`
	Price       float64 `json:"price"`
	LessonCount int     `json:"lesson_count"`
}

// ProductCatalog is the read-only product lookup table shared by all
// components. Safe for concurrent reads.
type ProductCatalog struct {
	entries []CatalogEntry
	byID    map[int]CatalogEntry
}

func NewProductCatalog(entries []CatalogEntry) *ProductCatalog {
	byID := make(map[int]CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ProductID] = e
	}
	return &ProductCatalog{entries: entries, byID: byID}
}

func (c *ProductCatalog) FindByID(productID int) (CatalogEntry, bool) {
	e, ok := c.byID[productID]
	return e, ok
}

// Find matches by product id first, then falls back to a case-insensitive
// name match. The events feed occasionally carries lines whose id no longer
// exists in the catalog but whose description still does.
func (c *ProductCatalog) Find(productID int, name string) (CatalogEntry, bool) {
	if e, ok := c.byID[productID]; ok {
		return e, true
	}
	if name == "" {
		return CatalogEntry{}, false
	}
	for _, e := range c.entries {
		if e.Name != "" && strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

func (c *ProductCatalog) Len() int {
	return len(c.entries)
}

// DefaultProductCatalog returns the sellable lesson bundles as sold today.
func DefaultProductCatalog() *ProductCatalog {
	return NewProductCatalog([]CatalogEntry{
		{ProductID: 1762567, Price: 11100, LessonCount: 9},
		{ProductID: 1762569, Price: 7770, LessonCount: 9},
		{ProductID: 1760489, Price: 5490, LessonCount: 4},
		{ProductID: 1761157, Price: 1373, LessonCount: 1},
		{ProductID: 1760789, Price: 39500, LessonCount: 36},
		{ProductID: 1760809, Price: 13167, LessonCount: 12},
		{ProductID: 1761643, Price: 22200, LessonCount: 18},
		{ProductID: 1700877, Price: 300, LessonCount: 1},
		{ProductID: 1760751, Price: 5190, LessonCount: 4},
		{ProductID: 1761153, Price: 12900, LessonCount: 12},
		{ProductID: 1761069, Price: 27650, LessonCount: 36},
		{ProductID: 1762511, Price: 11934, LessonCount: 12},
	})
}
