package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

// RecordPaymentUseCase commits a payment for a resolved student and catalog
// entry, updating the student's running totals in the same transaction.
type RecordPaymentUseCase struct {
	Payments entity.PaymentRepositoryInterface
}

func NewRecordPaymentUseCase(payments entity.PaymentRepositoryInterface) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{Payments: payments}
}

// Execute never retries on conflict; duplicate invocations for the same lead
// are a caller-level idempotency concern.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, student *entity.Student, entry entity.CatalogEntry, line entity.ProductLine, leadName string) (*entity.Payment, error) {
	if entry.LessonCount <= 0 {
		return nil, fmt.Errorf("catalog entry %d has non-positive lesson count %d", entry.ProductID, entry.LessonCount)
	}
	if entry.Price <= 0 || math.IsInf(entry.Price, 0) || math.IsNaN(entry.Price) {
		return nil, fmt.Errorf("catalog entry %d has invalid price %v", entry.ProductID, entry.Price)
	}

	payment := entity.NewPayment(student.ID, entry, leadName, line.Description)

	inc := entity.StudentTotalsIncrement{
		LessonsBalance: entry.LessonCount,
		TotalLessons:   entry.LessonCount,
		TotalPayments:  entry.Price,
	}

	if err := uc.Payments.CreateWithStudentTotals(ctx, payment, inc); err != nil {
		return nil, fmt.Errorf("record payment for student %d: %w", student.ID, err)
	}

	return payment, nil
}
