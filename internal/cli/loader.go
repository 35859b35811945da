package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/facet/query"
)

// LoadError represents an error that occurred while loading a query
// document, before validation proper.
type LoadError struct {
	Code    string
	Path    string // file path
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeBadExt      = "E002" // Unsupported file extension
	ErrCodeNotFound    = "E003" // File not found
	ErrCodeReadFailed  = "E004" // File read error
	ErrCodeParseFailed = "E005" // JSON/YAML parse error
	ErrCodeCUEBuild    = "E006" // CUE compile error
	ErrCodeCUEValue    = "E007" // CUE value not concrete

	// Validation failures carry E1xx codes derived from the QueryError
	// kind; see MapKindToErrorCode.
	ErrCodeValidation = "E100"
)

// LoadDocument reads and parses a query document. The format follows
// the file extension: .json, .yaml/.yml, or .cue.
func LoadDocument(path string) (query.Value, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".cue":
	default:
		return nil, &LoadError{Code: ErrCodeBadExt, Path: path,
			Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml, or .cue)", ext)}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: err.Error()}
	}

	switch ext {
	case ".json":
		v, err := query.ParseJSON(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		return v, nil
	case ".yaml", ".yml":
		v, err := query.ParseYAML(data)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		return v, nil
	default: // ".cue"
		return loadCUE(path, data)
	}
}

// loadCUE compiles a standalone CUE file and converts its top-level
// value to a document tree, preserving field order.
func loadCUE(path string, data []byte) (query.Value, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeCUEBuild, Path: path, Message: err.Error()}
	}
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeCUEValue, Path: path, Message: err.Error()}
	}

	v, err := cueToValue(val)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCUEValue, Path: path, Message: err.Error()}
	}
	return v, nil
}

// cueToValue converts a concrete CUE value to a document tree. Struct
// fields keep their source order.
func cueToValue(val cue.Value) (query.Value, error) {
	switch val.Kind() {
	case cue.NullKind:
		return query.Null{}, nil
	case cue.BoolKind:
		b, err := val.Bool()
		if err != nil {
			return nil, err
		}
		return query.Bool(b), nil
	case cue.IntKind:
		i, err := val.Int64()
		if err != nil {
			return nil, err
		}
		return query.NumberFromInt(i), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return query.NumberFromFloat(f)
	case cue.StringKind:
		s, err := val.String()
		if err != nil {
			return nil, err
		}
		return query.String(s), nil
	case cue.ListKind:
		iter, err := val.List()
		if err != nil {
			return nil, err
		}
		arr := query.Array{}
		for iter.Next() {
			elem, err := cueToValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := val.Fields()
		if err != nil {
			return nil, err
		}
		obj := query.NewObject()
		for iter.Next() {
			field, err := cueToValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj.Set(iter.Label(), field)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported CUE value kind %v", val.Kind())
	}
}

// MapKindToErrorCode maps a QueryError kind to a stable E1xx code for
// CLI output.
func MapKindToErrorCode(kind query.ErrorKind) string {
	switch kind {
	case query.KindQueryMustBeObject:
		return "E101"
	case query.KindInvalidNamespaceName:
		return "E102"
	case query.KindArrayWhereObjectExpected:
		return "E103"
	case query.KindNamespaceClauseMustBeObject:
		return "E104"
	case query.KindOptionsMustBeObject:
		return "E105"
	case query.KindUnknownOption:
		return "E106"
	case query.KindInvalidOptionValue:
		return "E107"
	case query.KindPaginationOnNestedNamespace:
		return "E108"
	case query.KindConflictingPaginationStyle:
		return "E109"
	case query.KindOrderFieldMustBeDirect:
		return "E110"
	case query.KindDuplicateFieldSelection:
		return "E111"
	case query.KindWhereMustBeObject:
		return "E112"
	case query.KindLogicalOperatorExpectsArray:
		return "E113"
	case query.KindInvalidConditionKey:
		return "E114"
	case query.KindInvalidOperatorObject:
		return "E115"
	case query.KindUnsupportedLiteralValue:
		return "E116"
	default:
		return ErrCodeValidation
	}
}
