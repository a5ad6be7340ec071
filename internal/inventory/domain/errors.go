package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindDomainRule
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindDomainRule:
		return "domain_rule"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the tagged failure returned by every inventory operation.
// Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewConflictError(name string) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("Item '%s' already exists.", name), Err: ErrItemExists}
}

func NewNotFoundError(name string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("Item '%s' not found.", name), Err: ErrItemNotFound}
}

func NewOutOfStockError(name string) *Error {
	return &Error{Kind: KindDomainRule, Message: fmt.Sprintf("Item '%s' is out of stock.", name)}
}

func NewStorageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf("Database error: %v", err), Err: err}
}

// AsError returns err as a tagged error, treating anything unclassified as
// a storage failure. nil stays nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewStorageError(err)
}

// KindOf classifies err; unclassified errors are storage failures.
func KindOf(err error) Kind {
	if e := AsError(err); e != nil {
		return e.Kind
	}
	return 0
}
