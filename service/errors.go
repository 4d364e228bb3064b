package service

import "errors"

// DomainError carries a machine-readable code plus the client-facing
// message. Handlers map codes to HTTP status.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

const (
	CodeNotFound            = "NOT_FOUND"
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodeDuplicateActiveLoan = "DUPLICATE_ACTIVE_LOAN"
	CodeValidation          = "VALIDATION_FAILED"
	CodeUniqueConstraint    = "UNIQUE_CONSTRAINT"
)

func NewNotFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func NewOutOfStock(msg string) error {
	return &DomainError{Code: CodeOutOfStock, Message: msg}
}

func NewDuplicateActiveLoan(msg string) error {
	return &DomainError{Code: CodeDuplicateActiveLoan, Message: msg}
}

func NewValidation(msg string) error {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func NewUniqueConstraint(msg string) error {
	return &DomainError{Code: CodeUniqueConstraint, Message: msg}
}

// ErrCode extracts the domain code from err, or "" for unexpected errors.
func ErrCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	return ErrCode(err) == code
}
