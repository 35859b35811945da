package query

import "fmt"

// optionsKey is the reserved key holding a clause's options block.
const optionsKey = "$"

// Result is the outcome of a successful validation: either a normalized
// query or the Deferred marker.
//
// Deferred means the caller passed no document at all (nil, or a JSON
// null). It signals "do not run this query yet", typically because the inputs
// it depends on have not loaded. Deferred is a first-class success; it
// must never be reported or logged as a failure.
type Result struct {
	Deferred bool
	Query    *Query
}

// Validate checks a raw document against the query grammar and returns
// its normalized form.
//
// The walk is depth-first in key order and fails fast: the returned
// error is always a *QueryError locating the first violation, and no
// partial Query accompanies it.
//
// Validate is a pure function: no I/O, no mutation of v, no state
// between calls.
func Validate(v Value) (Result, error) {
	switch v.(type) {
	case nil, Null:
		return Result{Deferred: true}, nil
	}
	root, ok := v.(*Object)
	if !ok {
		return Result{}, errAt(KindQueryMustBeObject, "",
			"query must be a mapping of namespaces, got %s", typeName(v))
	}
	q := &Query{Namespaces: make([]Namespace, 0, root.Len())}
	for _, f := range root.Fields() {
		if msg := checkNamespaceName(f.Key, true); msg != "" {
			return Result{}, errAt(KindInvalidNamespaceName, f.Key, "%s", msg)
		}
		clause, err := validateClause(f.Val, f.Key, 0)
		if err != nil {
			return Result{}, err
		}
		q.Namespaces = append(q.Namespaces, Namespace{Name: f.Key, Clause: clause})
	}
	return Result{Query: q}, nil
}

// ValidateJSON parses a JSON document and validates it. A bare null
// document yields the Deferred result.
func ValidateJSON(data []byte) (Result, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return Result{}, fmt.Errorf("parse query document: %w", err)
	}
	return Validate(v)
}

// validateClause handles one namespace or association position. depth 0
// is a top-level namespace; anything deeper is an association clause.
func validateClause(v Value, path string, depth int) (Clause, error) {
	switch node := v.(type) {
	case Array:
		return Clause{}, errAt(KindArrayWhereObjectExpected, path,
			"expected a namespace clause mapping, got a list")
	case *Object:
		var clause Clause
		for _, f := range node.Fields() {
			if f.Key == optionsKey {
				opts, err := validateOptions(f.Val, childPath(path, optionsKey), depth)
				if err != nil {
					return Clause{}, err
				}
				clause.Options = opts
				continue
			}
			if msg := checkNamespaceName(f.Key, false); msg != "" {
				return Clause{}, errAt(KindInvalidNamespaceName, childPath(path, f.Key), "%s", msg)
			}
			child, err := validateClause(f.Val, childPath(path, f.Key), depth+1)
			if err != nil {
				return Clause{}, err
			}
			clause.Children = append(clause.Children, Namespace{Name: f.Key, Clause: child})
		}
		return clause, nil
	default:
		return Clause{}, errAt(KindNamespaceClauseMustBeObject, path,
			"expected a namespace clause mapping, got %s", typeName(v))
	}
}

// validateOptions handles a "$" options block. Explicit null values
// read as not-set so that re-validating EncodeJSON output (which writes
// null markers for absent options) round-trips.
func validateOptions(v Value, path string, depth int) (Options, error) {
	obj, ok := v.(*Object)
	if !ok {
		return Options{}, errAt(KindOptionsMustBeObject, path,
			"expected an options mapping, got %s", typeName(v))
	}
	var opts Options
	var offsetKey, cursorKey string // first key seen from each pagination family
	for _, f := range obj.Fields() {
		kp := childPath(path, f.Key)
		if _, isNull := f.Val.(Null); isNull {
			continue
		}
		switch f.Key {
		case "where":
			w, err := validateWhere(f.Val, kp)
			if err != nil {
				return Options{}, err
			}
			opts.Where = w
		case "order":
			ord, err := validateOrder(f.Val, kp)
			if err != nil {
				return Options{}, err
			}
			opts.Order = ord
		case "fields":
			fl, err := validateFields(f.Val, kp)
			if err != nil {
				return Options{}, err
			}
			opts.Fields = fl
		case "limit", "offset", "first", "after", "last", "before":
			if depth != 0 {
				return Options{}, errAt(KindPaginationOnNestedNamespace, kp,
					"pagination key %q is only allowed on top-level namespaces", f.Key)
			}
			cursor := f.Key != "limit" && f.Key != "offset"
			if cursor && offsetKey != "" {
				return Options{}, errAt(KindConflictingPaginationStyle, kp,
					"cursor pagination (%q) cannot be combined with %q", f.Key, offsetKey)
			}
			if !cursor && cursorKey != "" {
				return Options{}, errAt(KindConflictingPaginationStyle, kp,
					"%q cannot be combined with cursor pagination (%q)", f.Key, cursorKey)
			}
			if cursor {
				if cursorKey == "" {
					cursorKey = f.Key
				}
			} else if offsetKey == "" {
				offsetKey = f.Key
			}
			if err := setPagination(&opts, f.Key, f.Val, kp); err != nil {
				return Options{}, err
			}
		default:
			return Options{}, errAt(KindUnknownOption, kp, "unknown option %q", f.Key)
		}
	}
	return opts, nil
}

// setPagination validates and stores one pagination option.
func setPagination(opts *Options, key string, v Value, path string) error {
	switch key {
	case "after", "before":
		s, ok := v.(String)
		if !ok {
			return errAt(KindInvalidOptionValue, path,
				"%s must be a cursor string, got %s", key, typeName(v))
		}
		cur := OptString{Set: true, Value: string(s)}
		if key == "after" {
			opts.After = cur
		} else {
			opts.Before = cur
		}
		return nil
	default: // limit, offset, first, last
		count, err := validateCount(key, v, path)
		if err != nil {
			return err
		}
		switch key {
		case "limit":
			opts.Limit = count
		case "offset":
			opts.Offset = count
		case "first":
			opts.First = count
		case "last":
			opts.Last = count
		}
		return nil
	}
}

// validateCount requires a non-negative integer lexeme.
func validateCount(key string, v Value, path string) (OptInt, error) {
	num, ok := v.(Number)
	if !ok {
		return OptInt{}, errAt(KindInvalidOptionValue, path,
			"%s must be a non-negative integer, got %s", key, typeName(v))
	}
	n, ok := num.Int64()
	if !ok || n < 0 {
		return OptInt{}, errAt(KindInvalidOptionValue, path,
			"%s must be a non-negative integer, got %s", key, string(num))
	}
	return OptInt{Set: true, Value: n}, nil
}

// validateOrder handles the order block: direct field names mapped to
// exactly "asc" or "desc".
func validateOrder(v Value, path string) (*Order, error) {
	obj, ok := v.(*Object)
	if !ok {
		return nil, errAt(KindInvalidOptionValue, path,
			"order must be a mapping of fields to directions, got %s", typeName(v))
	}
	ord := &Order{Terms: make([]OrderTerm, 0, obj.Len())}
	for _, f := range obj.Fields() {
		kp := childPath(path, f.Key)
		if f.Key == "" {
			return nil, errAt(KindInvalidOptionValue, kp, "order key must be a field name")
		}
		if containsDot(f.Key) {
			return nil, errAt(KindOrderFieldMustBeDirect, kp,
				"order keys must be direct field names, not association paths")
		}
		dir, ok := f.Val.(String)
		if !ok || (dir != "asc" && dir != "desc") {
			return nil, errAt(KindInvalidOptionValue, kp,
				`order direction must be "asc" or "desc"`)
		}
		ord.Terms = append(ord.Terms, OrderTerm{Field: f.Key, Dir: Direction(dir)})
	}
	return ord, nil
}

// validateFields handles the fields list: unique field name strings.
// "id" is appended when missing, since the service returns it on every
// row regardless of selection.
func validateFields(v Value, path string) (*Fields, error) {
	arr, ok := v.(Array)
	if !ok {
		return nil, errAt(KindInvalidOptionValue, path,
			"fields must be a list of field names, got %s", typeName(v))
	}
	names := make([]string, 0, len(arr)+1)
	seen := make(map[string]bool, len(arr))
	for i, elem := range arr {
		s, ok := elem.(String)
		if !ok {
			return nil, errAt(KindInvalidOptionValue, indexPath(path, i),
				"fields entries must be strings, got %s", typeName(elem))
		}
		name := string(s)
		if name == "" {
			return nil, errAt(KindInvalidOptionValue, indexPath(path, i),
				"field name must not be empty")
		}
		if seen[name] {
			return nil, errAt(KindDuplicateFieldSelection, indexPath(path, i),
				"field %q selected more than once", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	if !seen["id"] {
		names = append(names, "id")
	}
	return &Fields{Names: names}, nil
}

// validateWhere handles a where clause or an and/or list element.
func validateWhere(v Value, path string) (*Where, error) {
	obj, ok := v.(*Object)
	if !ok {
		return nil, errAt(KindWhereMustBeObject, path,
			"expected a where mapping, got %s", typeName(v))
	}
	w := &Where{Conds: make([]Cond, 0, obj.Len())}
	for _, f := range obj.Fields() {
		kp := childPath(path, f.Key)
		switch f.Key {
		case "and", "or":
			arr, ok := f.Val.(Array)
			if !ok {
				return nil, errAt(KindLogicalOperatorExpectsArray, kp,
					"%q takes a list of where fragments, got %s", f.Key, typeName(f.Val))
			}
			items := make([]Where, 0, len(arr))
			for i, elem := range arr {
				sub, err := validateWhere(elem, indexPath(kp, i))
				if err != nil {
					return nil, err
				}
				items = append(items, *sub)
			}
			op := LogicalAnd
			if f.Key == "or" {
				op = LogicalOr
			}
			w.Conds = append(w.Conds, GroupCond{Op: op, Items: items})
		default:
			if msg := checkConditionKey(f.Key); msg != "" {
				return nil, errAt(KindInvalidConditionKey, kp, "%s", msg)
			}
			pred, err := validateConditionValue(f.Val, kp)
			if err != nil {
				return nil, err
			}
			w.Conds = append(w.Conds, FieldCond{Field: f.Key, Pred: pred})
		}
	}
	return w, nil
}

// validateConditionValue normalizes a condition value: mappings are
// operator objects, scalars are equality, lists are rejected.
func validateConditionValue(v Value, path string) (Predicate, error) {
	switch val := v.(type) {
	case *Object:
		return validateOperator(val, path)
	case Array:
		return nil, errAt(KindUnsupportedLiteralValue, path,
			"list literals are not valid conditions; use the $in operator")
	default:
		s, ok := v.(Scalar)
		if !ok {
			return nil, errAt(KindUnsupportedLiteralValue, path,
				"unsupported literal %s", typeName(val))
		}
		return Eq{Value: s}, nil
	}
}

// validateOperator handles an operator object: exactly one recognized
// $-key with a well-typed operand.
func validateOperator(obj *Object, path string) (Predicate, error) {
	for _, k := range obj.Keys() {
		if !recognizedOperator(k) {
			return nil, errAt(KindInvalidOperatorObject, childPath(path, k),
				"unrecognized operator %q", k)
		}
	}
	if obj.Len() != 1 {
		return nil, errAt(KindInvalidOperatorObject, path,
			"operator object must contain exactly one operator, got %d", obj.Len())
	}
	f := obj.Fields()[0]
	kp := childPath(path, f.Key)
	switch f.Key {
	case "$eq":
		s, err := operandScalar(f.Key, f.Val, kp, true)
		if err != nil {
			return nil, err
		}
		return Eq{Value: s}, nil
	case "$gt", "$lt", "$gte", "$lte":
		s, err := operandScalar(f.Key, f.Val, kp, false)
		if err != nil {
			return nil, err
		}
		switch f.Key {
		case "$gt":
			return Gt{Value: s}, nil
		case "$lt":
			return Lt{Value: s}, nil
		case "$gte":
			return Gte{Value: s}, nil
		default:
			return Lte{Value: s}, nil
		}
	case "$in":
		arr, ok := f.Val.(Array)
		if !ok {
			return nil, errAt(KindInvalidOperatorObject, kp,
				"$in takes a list of scalars, got %s", typeName(f.Val))
		}
		values := make([]Scalar, 0, len(arr))
		for i, elem := range arr {
			s, ok := elem.(Scalar)
			if !ok {
				return nil, errAt(KindInvalidOperatorObject, indexPath(kp, i),
					"$in operands must be scalars, got %s", typeName(elem))
			}
			values = append(values, s)
		}
		return In{Values: values}, nil
	case "$not":
		s, err := operandScalar(f.Key, f.Val, kp, true)
		if err != nil {
			return nil, err
		}
		return NotEq{Value: s}, nil
	case "$isNull":
		b, ok := f.Val.(Bool)
		if !ok {
			return nil, errAt(KindInvalidOperatorObject, kp,
				"$isNull takes a boolean, got %s", typeName(f.Val))
		}
		return IsNull{Value: bool(b)}, nil
	case "$like", "$ilike":
		s, ok := f.Val.(String)
		if !ok {
			return nil, errAt(KindInvalidOperatorObject, kp,
				"%s takes a pattern string, got %s", f.Key, typeName(f.Val))
		}
		if f.Key == "$like" {
			return Like{Pattern: string(s)}, nil
		}
		return ILike{Pattern: string(s)}, nil
	default:
		// recognizedOperator and this switch list the same keys.
		return nil, errAt(KindInvalidOperatorObject, kp, "unrecognized operator %q", f.Key)
	}
}

// operandScalar requires a scalar operand, optionally allowing null.
func operandScalar(op string, v Value, path string, allowNull bool) (Scalar, error) {
	s, ok := v.(Scalar)
	if !ok {
		return nil, errAt(KindInvalidOperatorObject, path,
			"%s takes a scalar value, got %s", op, typeName(v))
	}
	if _, isNull := s.(Null); isNull && !allowNull {
		return nil, errAt(KindInvalidOperatorObject, path,
			"%s takes a non-null scalar", op)
	}
	return s, nil
}

// recognizedOperator reports whether key names a condition operator.
func recognizedOperator(key string) bool {
	switch key {
	case "$eq", "$gt", "$lt", "$gte", "$lte", "$in", "$not", "$isNull", "$like", "$ilike":
		return true
	default:
		return false
	}
}

// typeName describes a Value for error messages.
func typeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return "a boolean"
	case Number:
		return "a number"
	case String:
		return "a string"
	case Array:
		return "a list"
	case *Object:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}
