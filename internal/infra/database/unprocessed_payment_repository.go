package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

type UnprocessedPaymentRepository struct {
	DB *sql.DB
}

func NewUnprocessedPaymentRepository(db *sql.DB) *UnprocessedPaymentRepository {
	return &UnprocessedPaymentRepository{DB: db}
}

func (r *UnprocessedPaymentRepository) Create(ctx context.Context, up *entity.UnprocessedPayment) error {
	query := `
		INSERT INTO unprocessed_payments (id, raw_data, reason, resolved, student_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		up.ID,
		[]byte(up.RawData),
		up.Reason,
		up.Resolved,
		up.StudentID,
		up.CreatedAt,
	)
	return err
}

func (r *UnprocessedPaymentRepository) List(ctx context.Context, onlyUnresolved bool) ([]entity.UnprocessedPayment, error) {
	query := `
		SELECT id, raw_data, reason, resolved, student_id, created_at
		FROM unprocessed_payments
	`
	if onlyUnresolved {
		query += ` WHERE resolved = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.UnprocessedPayment
	for rows.Next() {
		var up entity.UnprocessedPayment
		var raw []byte
		var studentID sql.NullInt64

		if err := rows.Scan(&up.ID, &raw, &up.Reason, &up.Resolved, &studentID, &up.CreatedAt); err != nil {
			return nil, err
		}
		up.RawData = raw
		if studentID.Valid {
			up.StudentID = &studentID.Int64
		}
		items = append(items, up)
	}

	return items, rows.Err()
}

// MarkResolved is the out-of-band manual action: flips the resolved flag and
// optionally attaches the student the operator matched by hand.
func (r *UnprocessedPaymentRepository) MarkResolved(ctx context.Context, id string, studentID *int64) error {
	query := `
		UPDATE unprocessed_payments
		SET resolved = TRUE,
		    student_id = COALESCE($2, student_id)
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query, id, studentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("unprocessed payment %s not found", id)
	}

	return nil
}
