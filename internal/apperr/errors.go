// Package apperr holds the service-wide error taxonomy. Handlers map
// these onto HTTP status codes; nothing below this package knows about
// transports.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InvalidInput is a validation failure with a caller-facing message.
type InvalidInput struct {
	Reason string
}

func (e *InvalidInput) Error() string { return e.Reason }

func Invalid(reason string) error { return &InvalidInput{Reason: reason} }

func IsInvalid(err error) bool {
	var ie *InvalidInput
	return errors.As(err, &ie)
}

// Upstream marks a collaborator failure (object storage, store, broker).
type Upstream struct {
	Op  string
	Err error
}

func (e *Upstream) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *Upstream) Unwrap() error { return e.Err }

// Side is the outcome of one half of a two-sided update.
type Side struct {
	Name    string
	Applied bool
	Err     error
}

// PartialError reports a two-sided relationship update where one side
// was applied and the other failed. Callers get enough information to
// compensate or retry instead of silently seeing an inconsistent pair.
type PartialError struct {
	Op    string
	Sides []Side
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Sides))
	for _, s := range e.Sides {
		switch {
		case s.Err != nil:
			parts = append(parts, fmt.Sprintf("%s failed: %v", s.Name, s.Err))
		case s.Applied:
			parts = append(parts, s.Name+" applied")
		default:
			parts = append(parts, s.Name+" unchanged")
		}
	}
	return fmt.Sprintf("%s partially applied: %s", e.Op, strings.Join(parts, "; "))
}

// Applied lists the side names whose mutation went through.
func (e *PartialError) Applied() []string {
	var out []string
	for _, s := range e.Sides {
		if s.Applied {
			out = append(out, s.Name)
		}
	}
	return out
}

// Failed lists the side names whose mutation errored.
func (e *PartialError) Failed() []string {
	var out []string
	for _, s := range e.Sides {
		if s.Err != nil {
			out = append(out, s.Name)
		}
	}
	return out
}
