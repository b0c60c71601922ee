package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/legogate/internal/course"
)

var (
	ErrMalformedIdentifier   = errors.New("malformed identifier")
	ErrMalformedLegoOrdering = errors.New("malformed lego ordering")
)

// MalformedIdentifierError names a seed or LEGO ID that cannot be placed in the canonical order.
type MalformedIdentifierError struct {
	ID     string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedIdentifier, e.ID, e.Reason)
}

func (e *MalformedIdentifierError) Is(target error) bool {
	return target == ErrMalformedIdentifier
}

// MalformedLegoOrderingError names a seed whose LEGO ordinals do not run 1..n.
type MalformedLegoOrderingError struct {
	SeedID   course.SeedID
	Ordinals []int
}

func (e *MalformedLegoOrderingError) Error() string {
	ordinals := make([]string, len(e.Ordinals))
	for i, ordinal := range e.Ordinals {
		ordinals[i] = fmt.Sprintf("%02d", ordinal)
	}
	return fmt.Sprintf("%s in seed %s: ordinals [%s] must start at 01 and be contiguous",
		ErrMalformedLegoOrdering, e.SeedID, strings.Join(ordinals, " "))
}

func (e *MalformedLegoOrderingError) Is(target error) bool {
	return target == ErrMalformedLegoOrdering
}

// BuildError collects every structural error found in one pass.
type BuildError struct {
	Errors []error
}

func (e *BuildError) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d structural error(s): %s", len(e.Errors), strings.Join(messages, "; "))
}

func (e *BuildError) Unwrap() []error {
	return e.Errors
}

// Fatal reports whether any error prevents a canonical order from being established.
func (e *BuildError) Fatal() bool {
	return errors.Is(e, ErrMalformedIdentifier)
}
