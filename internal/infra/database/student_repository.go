package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

type StudentRepository struct {
	DB *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// FindByNameCandidates queries candidates one at a time, in the order the
// matcher ranked them, and stops at the first hit. When two distinct students
// carry swapped name tokens the primary hypothesis wins; the review queue is
// the escape hatch if that ever picks wrong.
func (r *StudentRepository) FindByNameCandidates(ctx context.Context, candidates []entity.NameCandidate) (*entity.Student, error) {
	query := `
		SELECT id, first_name, last_name, lessons_balance, total_lessons, total_payments, created_at
		FROM students
		WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)
		ORDER BY id
		LIMIT 1
	`

	for _, c := range candidates {
		var s entity.Student
		err := r.DB.QueryRowContext(ctx, query, c.FirstName, c.LastName).Scan(
			&s.ID,
			&s.FirstName,
			&s.LastName,
			&s.LessonsBalance,
			&s.TotalLessons,
			&s.TotalPayments,
			&s.CreatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &s, nil
	}

	return nil, nil
}
