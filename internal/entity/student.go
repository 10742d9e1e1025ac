package entity

import (
	"context"
	"time"
)

// Student is a person eligible to receive lesson credit.
type Student struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	LessonsBalance int       `json:"lessons_balance"`
	TotalLessons   int       `json:"total_lessons"`
	TotalPayments  float64   `json:"total_payments"`
	CreatedAt      time.Time `json:"created_at"`
}

// NameCandidate is one hypothesized (first, last) pairing derived from a
// free-text lead display name.
type NameCandidate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// StudentTotalsIncrement carries the running-total deltas applied together
// with a payment. The store applies them as SET x = x + n, never
// read-modify-write.
type StudentTotalsIncrement struct {
	LessonsBalance int
	TotalLessons   int
	TotalPayments  float64
}

type StudentRepositoryInterface interface {
	// FindByNameCandidates tries candidates in order and returns the first
	// match (case-insensitive). nil, nil when no candidate matches.
	FindByNameCandidates(ctx context.Context, candidates []NameCandidate) (*Student, error)
}
