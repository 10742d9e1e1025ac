package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

func TestCatalogFindByID(t *testing.T) {
	catalog := entity.DefaultProductCatalog()

	entry, ok := catalog.FindByID(1760489)
	assert.True(t, ok)
	assert.Equal(t, 5490.0, entry.Price)
	assert.Equal(t, 4, entry.LessonCount)

	_, ok = catalog.FindByID(999999)
	assert.False(t, ok)
}

func TestCatalogFindNameFallback(t *testing.T) {
	catalog := entity.NewProductCatalog([]entity.CatalogEntry{
		{ProductID: 1760489, Name: "Course, 4 lessons", Price: 5490, LessonCount: 4},
	})

	// Unknown id but description still present in the catalog.
	entry, ok := catalog.Find(12345, "course, 4 LESSONS")
	assert.True(t, ok)
	assert.Equal(t, 1760489, entry.ProductID)
}

func TestCatalogFindMiss(t *testing.T) {
	catalog := entity.DefaultProductCatalog()

	_, ok := catalog.Find(999999, "nonexistent bundle")
	assert.False(t, ok)

	_, ok = catalog.Find(999999, "")
	assert.False(t, ok)
}

func TestNewPaymentDerivesBidForLesson(t *testing.T) {
	entry := entity.CatalogEntry{ProductID: 1760489, Price: 5490, LessonCount: 4}

	p := entity.NewPayment(42, entry, "Maria Ivanova", "Course, 4 lessons")

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, int64(42), p.StudentID)
	assert.Equal(t, 4, p.LessonCount)
	assert.Equal(t, 5490.0, p.Price)
	assert.Equal(t, 1372.5, p.BidForLesson)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewUnprocessedPaymentDefaults(t *testing.T) {
	up := entity.NewUnprocessedPayment([]byte(`{"lead_id":101}`), "student not found", nil)

	assert.NotEmpty(t, up.ID)
	assert.False(t, up.Resolved)
	assert.Nil(t, up.StudentID)
	assert.Equal(t, "student not found", up.Reason)
	assert.JSONEq(t, `{"lead_id":101}`, string(up.RawData))
}
