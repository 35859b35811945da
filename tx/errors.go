package tx

import (
	"errors"
	"fmt"
)

// Code categorizes chunk validation failures.
type Code string

const (
	// CodeInvalidNamespace: the namespace name is empty, dotted, or uses
	// a reserved $-prefix.
	CodeInvalidNamespace Code = "InvalidNamespace"

	// CodeInvalidEntity: the entity reference is malformed (nil UUID or
	// empty lookup field).
	CodeInvalidEntity Code = "InvalidEntity"

	// CodeNoOps: the chunk carries no operations.
	CodeNoOps Code = "NoOps"

	// CodeOpAfterDelete: an operation follows a delete in the same chunk.
	CodeOpAfterDelete Code = "OpAfterDelete"

	// CodeEmptyAttrs: an update or merge carries no attributes.
	CodeEmptyAttrs Code = "EmptyAttrs"

	// CodeReservedAttr: an attribute name starts with $.
	CodeReservedAttr Code = "ReservedAttr"

	// CodeInvalidLink: a link or unlink has an empty label or no targets.
	CodeInvalidLink Code = "InvalidLink"

	// CodeInvalidValue: an attribute or lookup value could not be
	// converted to a document value.
	CodeInvalidValue Code = "InvalidValue"
)

// ChunkError describes the first violation found in a chunk. Validation
// is fail-fast, matching the query validator's error policy.
type ChunkError struct {
	Code      Code
	Namespace string
	Message   string
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (namespace %s)", e.Code, e.Message, e.Namespace)
}

// AsChunkError unwraps err to a *ChunkError if one is in its chain.
func AsChunkError(err error) (*ChunkError, bool) {
	var ce *ChunkError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCode reports whether err is (or wraps) a ChunkError with the given
// code.
func IsCode(err error, code Code) bool {
	ce, ok := AsChunkError(err)
	return ok && ce.Code == code
}

func chunkErr(code Code, namespace, format string, args ...any) *ChunkError {
	return &ChunkError{
		Code:      code,
		Namespace: namespace,
		Message:   fmt.Sprintf(format, args...),
	}
}
