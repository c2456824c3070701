package docstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/docstore/document"
	"github.com/hupe1980/docstore/internal/binindex"
	"github.com/hupe1980/docstore/internal/store"
	"github.com/hupe1980/docstore/query"
)

var (
	// ErrNotFound is returned when an update or remove targets a document that
	// is no longer present.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation is returned when an insert or update would
	// duplicate a value in a unique index.
	ErrConstraintViolation = errors.New("unique constraint violation")

	// ErrIndexCorruption is reported by VerifyIndexes when an index violates
	// its ordering invariant.
	ErrIndexCorruption = errors.New("index corruption")

	// ErrMalformedInput is returned for values that are not document shaped.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownIndex is returned when an operation names an undeclared index.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrInvalidConfig is returned when a collection configuration fails
	// validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// NotFoundError identifies the document an operation could not find.
type NotFoundError struct {
	ID    document.ID
	cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %d: not found", e.ID)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.cause }

// ConstraintError identifies the unique index and value that caused a
// rejected mutation.
type ConstraintError struct {
	Field string
	Value document.Value
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("unique constraint violation: duplicate value %s for %q", e.Value.Key(), e.Field)
}

// Is reports ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

// IndexCorruptionError lists the indices that failed verification.
type IndexCorruptionError struct {
	Fields []string
}

func (e *IndexCorruptionError) Error() string {
	return fmt.Sprintf("index corruption: %s", strings.Join(e.Fields, ", "))
}

// Is reports ErrIndexCorruption.
func (e *IndexCorruptionError) Is(target error) bool { return target == ErrIndexCorruption }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, binindex.ErrCorrupt) {
		return fmt.Errorf("%w: %w", ErrIndexCorruption, err)
	}
	if errors.Is(err, document.ErrMalformed) || errors.Is(err, query.ErrInvalidFilter) {
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	return err
}
