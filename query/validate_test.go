package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) Value {
	t.Helper()
	v, err := ParseJSON([]byte(doc))
	require.NoError(t, err)
	return v
}

func mustValidate(t *testing.T, doc string) *Query {
	t.Helper()
	res, err := Validate(mustParse(t, doc))
	require.NoError(t, err)
	require.False(t, res.Deferred)
	require.NotNil(t, res.Query)
	return res.Query
}

func TestValidate_NilIsDeferred(t *testing.T) {
	res, err := Validate(nil)
	require.NoError(t, err)
	assert.True(t, res.Deferred)
	assert.Nil(t, res.Query)
}

func TestValidate_NullDocumentIsDeferred(t *testing.T) {
	res, err := ValidateJSON([]byte("null"))
	require.NoError(t, err)
	assert.True(t, res.Deferred)
	assert.Nil(t, res.Query)
}

func TestValidate_EmptyQuery(t *testing.T) {
	q := mustValidate(t, `{}`)
	assert.Empty(t, q.Namespaces)
}

func TestValidate_BareLiteralNormalizesToEq(t *testing.T) {
	q := mustValidate(t, `{"goals": {"$": {"where": {"id": "goal-1"}}}}`)

	require.Len(t, q.Namespaces, 1)
	assert.Equal(t, "goals", q.Namespaces[0].Name)

	where := q.Namespaces[0].Clause.Options.Where
	require.NotNil(t, where)
	want := []Cond{FieldCond{Field: "id", Pred: Eq{Value: String("goal-1")}}}
	if diff := cmp.Diff(want, where.Conds); diff != "" {
		t.Errorf("conditions mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_NamespaceOrderPreserved(t *testing.T) {
	q := mustValidate(t, `{"zebras": {}, "apples": {}, "middles": {}}`)

	names := make([]string, len(q.Namespaces))
	for i, ns := range q.Namespaces {
		names[i] = ns.Name
	}
	assert.Equal(t, []string{"zebras", "apples", "middles"}, names)
}

func TestValidate_NestedAssociations(t *testing.T) {
	q := mustValidate(t, `{"goals": {"todos": {"owner": {}}}}`)

	require.Len(t, q.Namespaces, 1)
	goals := q.Namespaces[0].Clause
	require.Len(t, goals.Children, 1)
	assert.Equal(t, "todos", goals.Children[0].Name)
	require.Len(t, goals.Children[0].Clause.Children, 1)
	assert.Equal(t, "owner", goals.Children[0].Clause.Children[0].Name)
}

func TestValidate_InOperandOrderPreserved(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"where": {"priority": {"$in": ["high", "critical", "low"]}}}}}`)

	where := q.Namespaces[0].Clause.Options.Where
	require.NotNil(t, where)
	require.Len(t, where.Conds, 1)
	in, ok := where.Conds[0].(FieldCond).Pred.(In)
	require.True(t, ok, "expected In predicate, got %T", where.Conds[0].(FieldCond).Pred)
	assert.Equal(t, []Scalar{String("high"), String("critical"), String("low")}, in.Values)
}

func TestValidate_AllOperators(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"where": {
		"a": {"$gt": 1},
		"b": {"$lt": 2},
		"c": {"$gte": 3},
		"d": {"$lte": 4},
		"e": {"$not": "x"},
		"f": {"$isNull": true},
		"g": {"$like": "%Launch%"},
		"h": {"$ilike": "%launch%"},
		"i": {"$eq": null}
	}}}}`)

	where := q.Namespaces[0].Clause.Options.Where
	require.NotNil(t, where)
	want := []Cond{
		FieldCond{Field: "a", Pred: Gt{Value: Number("1")}},
		FieldCond{Field: "b", Pred: Lt{Value: Number("2")}},
		FieldCond{Field: "c", Pred: Gte{Value: Number("3")}},
		FieldCond{Field: "d", Pred: Lte{Value: Number("4")}},
		FieldCond{Field: "e", Pred: NotEq{Value: String("x")}},
		FieldCond{Field: "f", Pred: IsNull{Value: true}},
		FieldCond{Field: "g", Pred: Like{Pattern: "%Launch%"}},
		FieldCond{Field: "h", Pred: ILike{Pattern: "%launch%"}},
		FieldCond{Field: "i", Pred: Eq{Value: Null{}}},
	}
	if diff := cmp.Diff(want, where.Conds); diff != "" {
		t.Errorf("conditions mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_LogicalGroups(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"where": {
		"or": [{"priority": "high"}, {"and": [{"done": false}, {"estimate": {"$lte": 2}}]}]
	}}}}`)

	where := q.Namespaces[0].Clause.Options.Where
	require.NotNil(t, where)
	require.Len(t, where.Conds, 1)
	or, ok := where.Conds[0].(GroupCond)
	require.True(t, ok)
	assert.Equal(t, LogicalOr, or.Op)
	require.Len(t, or.Items, 2)

	inner, ok := or.Items[1].Conds[0].(GroupCond)
	require.True(t, ok)
	assert.Equal(t, LogicalAnd, inner.Op)
	assert.Len(t, inner.Items, 2)
}

func TestValidate_DottedAssociationPath(t *testing.T) {
	q := mustValidate(t, `{"goals": {"$": {"where": {"todos.owner.handle": "ada"}}}}`)

	where := q.Namespaces[0].Clause.Options.Where
	require.NotNil(t, where)
	fc := where.Conds[0].(FieldCond)
	assert.Equal(t, "todos.owner.handle", fc.Field)
}

func TestValidate_FieldsAppendsID(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"fields": ["title", "done"]}}}`)

	fields := q.Namespaces[0].Clause.Options.Fields
	require.NotNil(t, fields)
	assert.Equal(t, []string{"title", "done", "id"}, fields.Names)
}

func TestValidate_FieldsKeepsExplicitID(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"fields": ["id", "title"]}}}`)

	fields := q.Namespaces[0].Clause.Options.Fields
	require.NotNil(t, fields)
	assert.Equal(t, []string{"id", "title"}, fields.Names)
}

func TestValidate_CursorFamilyMayCoexist(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"first": 25, "after": "cur-1"}}}`)

	opts := q.Namespaces[0].Clause.Options
	assert.Equal(t, OptInt{Set: true, Value: 25}, opts.First)
	assert.Equal(t, OptString{Set: true, Value: "cur-1"}, opts.After)
}

func TestValidate_ReservedSystemNamespace(t *testing.T) {
	q := mustValidate(t, `{"$users": {"$": {"where": {"email": "ada@example.com"}}}}`)
	assert.Equal(t, "$users", q.Namespaces[0].Name)
}

func TestValidate_ExplicitNullOptionReadsAsNotSet(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"where": null, "limit": null}}}`)

	opts := q.Namespaces[0].Clause.Options
	assert.Nil(t, opts.Where)
	assert.False(t, opts.Limit.Set)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKind ErrorKind
		wantPath string
	}{
		{
			name:     "root is a list",
			doc:      `[]`,
			wantKind: KindQueryMustBeObject,
			wantPath: "",
		},
		{
			name:     "root is a scalar",
			doc:      `"goals"`,
			wantKind: KindQueryMustBeObject,
			wantPath: "",
		},
		{
			name:     "array in namespace position",
			doc:      `{"goals": []}`,
			wantKind: KindArrayWhereObjectExpected,
			wantPath: "goals",
		},
		{
			name:     "array in association position",
			doc:      `{"goals": {"todos": []}}`,
			wantKind: KindArrayWhereObjectExpected,
			wantPath: "goals.todos",
		},
		{
			name:     "primitive namespace clause",
			doc:      `{"goals": true}`,
			wantKind: KindNamespaceClauseMustBeObject,
			wantPath: "goals",
		},
		{
			name:     "empty namespace name",
			doc:      `{"": {}}`,
			wantKind: KindInvalidNamespaceName,
			wantPath: "",
		},
		{
			name:     "unknown system namespace",
			doc:      `{"$secrets": {}}`,
			wantKind: KindInvalidNamespaceName,
			wantPath: "$secrets",
		},
		{
			name:     "system namespace below top level",
			doc:      `{"goals": {"$users": {}}}`,
			wantKind: KindInvalidNamespaceName,
			wantPath: "goals.$users",
		},
		{
			name:     "options block is a list",
			doc:      `{"goals": {"$": []}}`,
			wantKind: KindOptionsMustBeObject,
			wantPath: "goals.$",
		},
		{
			name:     "unknown option",
			doc:      `{"goals": {"$": {"werhe": {}}}}`,
			wantKind: KindUnknownOption,
			wantPath: "goals.$.werhe",
		},
		{
			name:     "where is a list",
			doc:      `{"goals": {"$": {"where": []}}}`,
			wantKind: KindWhereMustBeObject,
			wantPath: "goals.$.where",
		},
		{
			name:     "or takes a list",
			doc:      `{"todos": {"$": {"where": {"or": {"priority": "high"}}}}}`,
			wantKind: KindLogicalOperatorExpectsArray,
			wantPath: "todos.$.where.or",
		},
		{
			name:     "and takes a list",
			doc:      `{"todos": {"$": {"where": {"and": {"priority": "high"}}}}}`,
			wantKind: KindLogicalOperatorExpectsArray,
			wantPath: "todos.$.where.and",
		},
		{
			name:     "or element must be a mapping",
			doc:      `{"todos": {"$": {"where": {"or": [{"done": true}, 5]}}}}`,
			wantKind: KindWhereMustBeObject,
			wantPath: "todos.$.where.or.1",
		},
		{
			name:     "pagination on nested namespace",
			doc:      `{"goals": {"todos": {"$": {"limit": 5}}}}`,
			wantKind: KindPaginationOnNestedNamespace,
			wantPath: "goals.todos.$.limit",
		},
		{
			name:     "cursor pagination on nested namespace",
			doc:      `{"goals": {"todos": {"$": {"first": 5}}}}`,
			wantKind: KindPaginationOnNestedNamespace,
			wantPath: "goals.todos.$.first",
		},
		{
			name:     "limit mixed with cursor family",
			doc:      `{"todos": {"$": {"limit": 5, "after": "cur"}}}`,
			wantKind: KindConflictingPaginationStyle,
			wantPath: "todos.$.after",
		},
		{
			name:     "cursor mixed with offset family",
			doc:      `{"todos": {"$": {"first": 5, "offset": 10}}}`,
			wantKind: KindConflictingPaginationStyle,
			wantPath: "todos.$.offset",
		},
		{
			name:     "negative limit",
			doc:      `{"todos": {"$": {"limit": -1}}}`,
			wantKind: KindInvalidOptionValue,
			wantPath: "todos.$.limit",
		},
		{
			name:     "fractional limit",
			doc:      `{"todos": {"$": {"limit": 2.5}}}`,
			wantKind: KindInvalidOptionValue,
			wantPath: "todos.$.limit",
		},
		{
			name:     "cursor must be a string",
			doc:      `{"todos": {"$": {"after": 42}}}`,
			wantKind: KindInvalidOptionValue,
			wantPath: "todos.$.after",
		},
		{
			name:     "order with dotted key",
			doc:      `{"todos": {"$": {"order": {"todos.title": "asc"}}}}`,
			wantKind: KindOrderFieldMustBeDirect,
			wantPath: "todos.$.order.todos.title",
		},
		{
			name:     "order with bad direction",
			doc:      `{"todos": {"$": {"order": {"title": "up"}}}}`,
			wantKind: KindInvalidOptionValue,
			wantPath: "todos.$.order.title",
		},
		{
			name:     "duplicate field selection",
			doc:      `{"todos": {"$": {"fields": ["title", "done", "title"]}}}`,
			wantKind: KindDuplicateFieldSelection,
			wantPath: "todos.$.fields.2",
		},
		{
			name:     "operator object with unknown key",
			doc:      `{"todos": {"$": {"where": {"priority": {"$between": [1, 2]}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.priority.$between",
		},
		{
			name:     "operator object with two operators",
			doc:      `{"todos": {"$": {"where": {"estimate": {"$gt": 1, "$lt": 5}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.estimate",
		},
		{
			name:     "empty operator object",
			doc:      `{"todos": {"$": {"where": {"estimate": {}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.estimate",
		},
		{
			name:     "in takes a list",
			doc:      `{"todos": {"$": {"where": {"priority": {"$in": "high"}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.priority.$in",
		},
		{
			name:     "in operands must be scalars",
			doc:      `{"todos": {"$": {"where": {"priority": {"$in": ["high", ["low"]]}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.priority.$in.1",
		},
		{
			name:     "isNull takes a boolean",
			doc:      `{"todos": {"$": {"where": {"done": {"$isNull": "yes"}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.done.$isNull",
		},
		{
			name:     "like takes a string",
			doc:      `{"todos": {"$": {"where": {"title": {"$like": 7}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.title.$like",
		},
		{
			name:     "gt rejects null operand",
			doc:      `{"todos": {"$": {"where": {"estimate": {"$gt": null}}}}}`,
			wantKind: KindInvalidOperatorObject,
			wantPath: "todos.$.where.estimate.$gt",
		},
		{
			name:     "list literal condition",
			doc:      `{"todos": {"$": {"where": {"priority": ["high", "low"]}}}}`,
			wantKind: KindUnsupportedLiteralValue,
			wantPath: "todos.$.where.priority",
		},
		{
			name:     "operator in key position",
			doc:      `{"todos": {"$": {"where": {"$gt": 5}}}}`,
			wantKind: KindInvalidConditionKey,
			wantPath: "todos.$.where.$gt",
		},
		{
			name:     "dotted path with empty segment",
			doc:      `{"todos": {"$": {"where": {"owner..handle": "ada"}}}}`,
			wantKind: KindInvalidConditionKey,
			wantPath: "todos.$.where.owner..handle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(mustParse(t, tt.doc))
			require.Error(t, err)
			assert.False(t, res.Deferred)
			assert.Nil(t, res.Query, "no partial result beside an error")

			qe, ok := AsQueryError(err)
			require.True(t, ok, "expected *QueryError, got %T: %v", err, err)
			assert.Equal(t, tt.wantKind, qe.Kind)
			assert.Equal(t, tt.wantPath, qe.Path)
			assert.NotEmpty(t, qe.Message)
		})
	}
}

func TestValidate_FailsFastOnFirstViolation(t *testing.T) {
	// Both namespaces are broken; key order decides which error we see.
	_, err := Validate(mustParse(t, `{"alpha": [], "beta": 7}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindArrayWhereObjectExpected))

	qe, _ := AsQueryError(err)
	assert.Equal(t, "alpha", qe.Path)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	raw := mustParse(t, `{"todos": {"$": {"fields": ["title"], "where": {"done": false}}}}`)
	before, err := MarshalOrdered(raw)
	require.NoError(t, err)

	_, err = Validate(raw)
	require.NoError(t, err)

	after, err := MarshalOrdered(raw)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}
