package query

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes shape violations. Every QueryError carries
// exactly one kind; callers branch on kinds rather than message text.
type ErrorKind string

const (
	// KindQueryMustBeObject: the document root is neither a mapping nor
	// null.
	KindQueryMustBeObject ErrorKind = "QueryMustBeObject"

	// KindInvalidNamespaceName: a namespace or association key is empty,
	// contains a dot, or uses a $-prefix that is not a reserved system
	// namespace.
	KindInvalidNamespaceName ErrorKind = "InvalidNamespaceName"

	// KindArrayWhereObjectExpected: a namespace or association position
	// received a list instead of a mapping.
	KindArrayWhereObjectExpected ErrorKind = "ArrayWhereObjectExpected"

	// KindNamespaceClauseMustBeObject: a namespace or association
	// position received a primitive.
	KindNamespaceClauseMustBeObject ErrorKind = "NamespaceClauseMustBeObject"

	// KindOptionsMustBeObject: the "$" key's value is not a mapping.
	KindOptionsMustBeObject ErrorKind = "OptionsMustBeObject"

	// KindUnknownOption: the options block contains a key outside the
	// recognized set.
	KindUnknownOption ErrorKind = "UnknownOption"

	// KindInvalidOptionValue: a recognized option key carries a value of
	// the wrong shape (a string limit, a dotted order direction, ...).
	KindInvalidOptionValue ErrorKind = "InvalidOptionValue"

	// KindPaginationOnNestedNamespace: limit/offset/first/after/last/
	// before used below the top level.
	KindPaginationOnNestedNamespace ErrorKind = "PaginationOnNestedNamespace"

	// KindConflictingPaginationStyle: offset-style and cursor-style
	// pagination mixed at one level.
	KindConflictingPaginationStyle ErrorKind = "ConflictingPaginationStyle"

	// KindOrderFieldMustBeDirect: an order key contains a dotted
	// association path.
	KindOrderFieldMustBeDirect ErrorKind = "OrderFieldMustBeDirect"

	// KindDuplicateFieldSelection: a repeated entry in fields.
	KindDuplicateFieldSelection ErrorKind = "DuplicateFieldSelection"

	// KindWhereMustBeObject: a where clause (or an and/or list element)
	// is not a mapping.
	KindWhereMustBeObject ErrorKind = "WhereMustBeObject"

	// KindLogicalOperatorExpectsArray: an and/or value is not a list.
	KindLogicalOperatorExpectsArray ErrorKind = "LogicalOperatorExpectsArray"

	// KindInvalidConditionKey: a where key is empty, has empty dotted
	// segments, or is $-prefixed without being an operator position.
	KindInvalidConditionKey ErrorKind = "InvalidConditionKey"

	// KindInvalidOperatorObject: an operator mapping has zero or multiple
	// recognized keys, an unrecognized key, or a malformed operand.
	KindInvalidOperatorObject ErrorKind = "InvalidOperatorObject"

	// KindUnsupportedLiteralValue: a condition value is a list where a
	// scalar or operator object was required.
	KindUnsupportedLiteralValue ErrorKind = "UnsupportedLiteralValue"
)

// QueryError describes the first shape violation found in a document.
// Validation is fail-fast: one error, never a partial result beside it.
//
// Path locates the offending node as dot-joined keys from the root, with
// numeric segments for list elements ("todos.$.where.and.0.priority").
// An empty Path means the document root itself.
type QueryError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
}

// AsQueryError unwraps err to a *QueryError if one is in its chain.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// IsKind reports whether err is (or wraps) a QueryError of the given
// kind.
func IsKind(err error, kind ErrorKind) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == kind
}

// errAt builds a QueryError at a path.
func errAt(kind ErrorKind, path, format string, args ...any) *QueryError {
	return &QueryError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
