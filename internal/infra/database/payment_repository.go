package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// CreateWithStudentTotals writes the payment and the student totals as one
// logical unit. The increments run as SET x = x + $n inside the same
// transaction, so concurrent payments for one student can never lose an
// update.
func (r *PaymentRepository) CreateWithStudentTotals(ctx context.Context, p *entity.Payment, inc entity.StudentTotalsIncrement) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO payments (id, student_id, lesson_count, price, bid_for_lesson, lead_name, product_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insert,
		p.ID,
		p.StudentID,
		p.LessonCount,
		p.Price,
		p.BidForLesson,
		p.LeadName,
		p.ProductName,
		p.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	update := `
		UPDATE students
		SET lessons_balance = lessons_balance + $1,
		    total_lessons   = total_lessons + $2,
		    total_payments  = total_payments + $3
		WHERE id = $4
	`
	res, err := tx.ExecContext(ctx, update,
		inc.LessonsBalance,
		inc.TotalLessons,
		inc.TotalPayments,
		p.StudentID,
	)
	if err != nil {
		return fmt.Errorf("increment student totals: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("student %d not found while applying totals", p.StudentID)
	}

	return tx.Commit()
}
