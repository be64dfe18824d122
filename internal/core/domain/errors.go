package domain

import (
	"errors"
	"fmt"
)

var (
	// Per-file failures: never abort sibling files in the same batch.
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failed")

	// Provider failures: abort the current batch item only.
	ErrEmbedding   = errors.New("embedding failed")
	ErrVectorIndex = errors.New("vector index failure")

	// Per-slot failure during structured form extraction.
	ErrSchemaParse = errors.New("schema parse failure")

	// Scope is a request precondition: an invalid category rejects the
	// whole request, not a single item.
	ErrScopeConfiguration = errors.New("invalid scope configuration")
	ErrCategoryLimit      = errors.New("category document limit reached")

	ErrDocumentNotFound = errors.New("document not found")
	ErrSessionNotFound  = errors.New("session not found")

	// Transient infrastructure failure; callers may retry the operation.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// SchemaParseError reports a structured-extraction response that did not
// match the expected shape. Raw carries the provider response verbatim for
// diagnostics; it is never substituted with a default.
type SchemaParseError struct {
	Slot string
	Raw  string
	Err  error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("slot %s: %v: raw response %q", e.Slot, e.Err, truncate(e.Raw, 512))
}

func (e *SchemaParseError) Unwrap() error { return ErrSchemaParse }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
