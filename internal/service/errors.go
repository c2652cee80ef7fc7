package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("no authenticated session")
	ErrForbidden       = errors.New("forbidden: insufficient permissions")

	// ErrEmailReserved rejects self-service use of an address on the admin
	// allow-list. Those accounts are provisioned by an operator.
	ErrEmailReserved = errors.New("email is reserved")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// StoreError wraps a failure reported by the backing store. Op names the
// operation that failed, for logs.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err as a StoreError unless it is one of the sentinels that
// callers are expected to branch on.
func storeErr(op string, err error, passthrough ...error) error {
	if err == nil {
		return nil
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
