package usecase

import (
	"context"
	"strings"

	"github.com/algovyborg/lesson-payments/internal/entity"
)

// StudentMatcher resolves a free-text lead display name to a known student.
type StudentMatcher struct {
	Students entity.StudentRepositoryInterface
}

func NewStudentMatcher(students entity.StudentRepositoryInterface) *StudentMatcher {
	return &StudentMatcher{Students: students}
}

// FindStudent returns the first student matching any name candidate, in
// candidate order. A name with fewer than two usable tokens yields a
// DomainError and the store is never queried; a parseable name with no match
// yields nil, nil.
func (m *StudentMatcher) FindStudent(ctx context.Context, displayName string) (*entity.Student, error) {
	candidates := NameCandidates(displayName)
	if len(candidates) == 0 {
		return nil, &DomainError{Code: "INSUFFICIENT_NAME_PARTS", Message: ReasonInsufficientNameParts}
	}

	return m.Students.FindByNameCandidates(ctx, candidates)
}

// NameCandidates builds the ordered, de-duplicated (first, last) hypotheses
// for a display name:
//
//	(a, b)          primary: first token as first name
//	(a, c)          3 tokens only: middle token was a middle name
//	(b, a)          swapped, handles "Last First" entry
//	(c, a)          3 tokens only: swapped with middle name dropped
//
// Returns nil when fewer than two tokens survive normalization.
func NameCandidates(displayName string) []entity.NameCandidate {
	parts := normalizeNameParts(displayName)
	if len(parts) < 2 {
		return nil
	}

	pairs := []entity.NameCandidate{{FirstName: parts[0], LastName: parts[1]}}
	if len(parts) == 3 {
		pairs = append(pairs, entity.NameCandidate{FirstName: parts[0], LastName: parts[2]})
	}
	pairs = append(pairs, entity.NameCandidate{FirstName: parts[1], LastName: parts[0]})
	if len(parts) == 3 {
		pairs = append(pairs, entity.NameCandidate{FirstName: parts[2], LastName: parts[0]})
	}

	seen := make(map[string]bool, len(pairs))
	candidates := make([]entity.NameCandidate, 0, len(pairs))
	for _, p := range pairs {
		key := strings.ToLower(p.FirstName) + "|" + strings.ToLower(p.LastName)
		if seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, p)
	}

	return candidates
}

func normalizeNameParts(name string) []string {
	return strings.Fields(strings.TrimSpace(name))
}
