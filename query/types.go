package query

// Query is the normalized form of a validated document.
//
// Namespaces keep the document's top-level key order. Order is
// irrelevant to what the service returns, but preserving it makes
// EncodeJSON deterministic for a given input, which golden tests rely
// on.
type Query struct {
	Namespaces []Namespace
}

// Namespace pairs a namespace (or association) name with its clause.
type Namespace struct {
	Name   string
	Clause Clause
}

// Clause is one level of the query tree: the options block that applied
// at this level plus child clauses keyed by association name.
//
// Options is always materialized; a clause with no "$" key in the raw
// document carries an Options whose members are all in their not-set
// state. Children keep raw key order.
type Clause struct {
	Options  Options
	Children []Namespace
}

// Options is the normalized "$" block. Absent members are explicit:
// pointer members are nil when not set, and counts/cursors use OptInt
// and OptString markers instead of magic zero values. EncodeJSON writes
// every member, emitting null for the not-set ones.
type Options struct {
	Where  *Where
	Order  *Order
	Fields *Fields
	Limit  OptInt
	Offset OptInt
	First  OptInt
	After  OptString
	Last   OptInt
	Before OptString
}

// OptInt is an explicitly optional non-negative count.
type OptInt struct {
	Set   bool
	Value int64
}

// OptString is an explicitly optional string (an opaque cursor).
type OptString struct {
	Set   bool
	Value string
}

// Order is a normalized order block: field/direction pairs in raw key
// order. An empty Terms slice is a present-but-empty order block, which
// is distinct from Options.Order == nil (not set).
type Order struct {
	Terms []OrderTerm
}

// OrderTerm orders one direct field.
type OrderTerm struct {
	Field string
	Dir   Direction
}

// Direction is one of exactly two literal tags.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Fields is a normalized field selection. Names keeps list order from
// the raw document; normalization appends "id" when it was not listed,
// since the service always returns it.
type Fields struct {
	Names []string
}

// Where is a normalized where clause: conditions in raw key order,
// combined with implicit AND.
type Where struct {
	Conds []Cond
}

// Cond is a sealed interface over the two condition forms.
//
// Condition types:
//   - FieldCond: a field or dotted association path with a predicate
//   - GroupCond: an explicit and/or list of where fragments
//
// The marker method seals the interface to this package so consumers
// can type-switch exhaustively.
type Cond interface {
	cond() // Marker method - seals interface to this package
}

// FieldCond constrains one field (or dotted association path) with a
// predicate. Field keeps the raw key verbatim, dots included.
type FieldCond struct {
	Field string
	Pred  Predicate
}

func (FieldCond) cond() {}

// LogicalOp tags a GroupCond.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
)

// GroupCond is an and/or group. Each item is a whole where fragment; an
// empty Items list is vacuously true for and, vacuously false for or;
// both are owned by the service and preserved as written here.
type GroupCond struct {
	Op    LogicalOp
	Items []Where
}

func (GroupCond) cond() {}

// Predicate is a sealed interface over the operator forms a condition
// value normalizes to.
//
// Predicate types:
//   - Eq: equality (bare literals normalize to this canonical form)
//   - Gt, Lt, Gte, Lte: ordered comparisons
//   - In: membership in a list, operand order preserved
//   - NotEq: the $not operator; the service additionally matches rows
//     where the field is null or absent, a service-side contract this
//     package records but does not evaluate
//   - IsNull: presence/absence test
//   - Like, ILike: pattern match, case-sensitive and -insensitive
type Predicate interface {
	predicate() // Marker method - seals interface to this package
}

// Eq matches field == value.
type Eq struct {
	Value Scalar
}

func (Eq) predicate() {}

// Gt matches field > value.
type Gt struct {
	Value Scalar
}

func (Gt) predicate() {}

// Lt matches field < value.
type Lt struct {
	Value Scalar
}

func (Lt) predicate() {}

// Gte matches field >= value.
type Gte struct {
	Value Scalar
}

func (Gte) predicate() {}

// Lte matches field <= value.
type Lte struct {
	Value Scalar
}

func (Lte) predicate() {}

// In matches fields whose value equals any listed operand.
type In struct {
	Values []Scalar
}

func (In) predicate() {}

// NotEq matches field != value, plus null/absent fields on the service
// side.
type NotEq struct {
	Value Scalar
}

func (NotEq) predicate() {}

// IsNull matches absence (true) or presence (false) of a value.
type IsNull struct {
	Value bool
}

func (IsNull) predicate() {}

// Like matches a case-sensitive pattern ("%" wildcards).
type Like struct {
	Pattern string
}

func (Like) predicate() {}

// ILike matches a case-insensitive pattern.
type ILike struct {
	Pattern string
}

func (ILike) predicate() {}
