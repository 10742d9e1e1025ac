package usecase

// DomainError is an expected business outcome (ambiguous lead, unknown
// product, no matching student). These are frequent and never treated as
// system failures.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is an infrastructure failure (CRM unreachable, store
// unavailable).
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// Dead-letter reasons. The set is closed: the review tooling groups by these
// strings.
const (
	ReasonNoProducts            = "no products in lead"
	ReasonMultipleProducts      = "multiple products in lead"
	ReasonUnknownProduct        = "unknown product"
	ReasonInsufficientNameParts = "insufficient name parts"
	ReasonStudentNotFound       = "student not found"
	ReasonProcessingError       = "processing error"
)
