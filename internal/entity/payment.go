package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payment is a committed, resolved transaction.
type Payment struct {
	ID           string    `json:"id"`
	StudentID    int64     `json:"student_id"`
	LessonCount  int       `json:"lesson_count"`
	Price        float64   `json:"price"`
	BidForLesson float64   `json:"bid_for_lesson"`
	LeadName     string    `json:"lead_name"`
	ProductName  string    `json:"product_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPayment builds a payment from a catalog entry. The catalog is
// authoritative over price and lesson count; the raw line-item unit price is
// never used here.
func NewPayment(studentID int64, entry CatalogEntry, leadName, productName string) *Payment {
	return &Payment{
		ID:           uuid.New().String(),
		StudentID:    studentID,
		LessonCount:  entry.LessonCount,
		Price:        entry.Price,
		BidForLesson: entry.Price / float64(entry.LessonCount),
		LeadName:     leadName,
		ProductName:  productName,
		CreatedAt:    time.Now(),
	}
}

type PaymentRepositoryInterface interface {
	// CreateWithStudentTotals persists the payment and applies the student
	// totals increment inside a single transaction.
	CreateWithStudentTotals(ctx context.Context, p *Payment, inc StudentTotalsIncrement) error
}
