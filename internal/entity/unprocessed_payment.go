package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UnprocessedPayment is a dead-lettered event awaiting manual review.
type UnprocessedPayment struct {
	ID        string          `json:"id"`
	RawData   json.RawMessage `json:"raw_data"`
	Reason    string          `json:"reason"`
	Resolved  bool            `json:"resolved"`
	StudentID *int64          `json:"student_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewUnprocessedPayment always starts unresolved; the flag flips only through
// the manual review surface.
func NewUnprocessedPayment(rawData json.RawMessage, reason string, studentID *int64) *UnprocessedPayment {
	return &UnprocessedPayment{
		ID:        uuid.New().String(),
		RawData:   rawData,
		Reason:    reason,
		Resolved:  false,
		StudentID: studentID,
		CreatedAt: time.Now(),
	}
}

type UnprocessedPaymentRepositoryInterface interface {
	Create(ctx context.Context, up *UnprocessedPayment) error
	List(ctx context.Context, onlyUnresolved bool) ([]UnprocessedPayment, error)
	MarkResolved(ctx context.Context, id string, studentID *int64) error
}
