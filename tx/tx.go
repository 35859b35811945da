// Package tx builds and validates transaction chunks, the write-side
// companion to the query package. A chunk targets one entity in one
// namespace and carries an ordered list of operations (update, merge,
// link, unlink, delete). Chunks are validated client-side for shape
// only; attribute semantics, deep-merge behavior, and link resolution
// belong to the service.
package tx

import (
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/facet/query"
)

// EntityRef identifies the entity a chunk or link target addresses:
// either a UUID or a lookup by unique attribute value.
type EntityRef interface {
	entityRef()
}

// IDRef addresses an entity by UUID.
type IDRef struct {
	ID uuid.UUID
}

func (IDRef) entityRef() {}

// LookupRef addresses an entity by a unique attribute value. The
// service resolves (or creates) the entity; this package only checks
// the reference's shape.
type LookupRef struct {
	Field string
	Value query.Value
}

func (LookupRef) entityRef() {}

// Op is a sealed interface over chunk operations.
type Op interface {
	op()
}

// UpdateOp sets attribute values, replacing existing ones.
type UpdateOp struct {
	Attrs *query.Object
}

func (UpdateOp) op() {}

// MergeOp deep-merges attribute values into existing ones. Merge
// semantics are owned by the service; the chunk just carries the tree.
type MergeOp struct {
	Attrs *query.Object
}

func (MergeOp) op() {}

// LinkOp attaches entities under an association label.
type LinkOp struct {
	Label   string
	Targets []EntityRef
}

func (LinkOp) op() {}

// UnlinkOp detaches entities from an association label.
type UnlinkOp struct {
	Label   string
	Targets []EntityRef
}

func (UnlinkOp) op() {}

// DeleteOp removes the entity. Nothing may follow it in a chunk.
type DeleteOp struct{}

func (DeleteOp) op() {}

// Builder scopes chunk construction to a namespace.
type Builder struct {
	namespace string
}

// Namespace starts a chunk builder for one namespace.
func Namespace(name string) Builder {
	return Builder{namespace: name}
}

// Entity targets an entity by UUID.
func (b Builder) Entity(id uuid.UUID) *Chunk {
	return &Chunk{Namespace: b.namespace, Entity: IDRef{ID: id}}
}

// Lookup targets an entity by a unique attribute value.
func (b Builder) Lookup(field string, value any) *Chunk {
	c := &Chunk{Namespace: b.namespace}
	v, err := query.FromGo(value)
	if err != nil {
		c.err = chunkErr(CodeInvalidValue, b.namespace, "lookup value for %q: %v", field, err)
		return c
	}
	c.Entity = LookupRef{Field: field, Value: v}
	return c
}

// Chunk is one entity's worth of a transaction: a namespace, an entity
// reference, and ordered operations. Build fluently, then call Validate
// or EncodeSteps.
type Chunk struct {
	Namespace string
	Entity    EntityRef
	Ops       []Op

	// err holds the first builder-time conversion failure; Validate
	// surfaces it so fluent chains never need intermediate checks.
	err *ChunkError
}

// Update appends an update operation.
func (c *Chunk) Update(attrs map[string]any) *Chunk {
	obj, ok := c.convertAttrs("update", attrs)
	if !ok {
		return c
	}
	c.Ops = append(c.Ops, UpdateOp{Attrs: obj})
	return c
}

// Merge appends a merge operation.
func (c *Chunk) Merge(attrs map[string]any) *Chunk {
	obj, ok := c.convertAttrs("merge", attrs)
	if !ok {
		return c
	}
	c.Ops = append(c.Ops, MergeOp{Attrs: obj})
	return c
}

// Link appends a link operation attaching ids under label.
func (c *Chunk) Link(label string, ids ...uuid.UUID) *Chunk {
	c.Ops = append(c.Ops, LinkOp{Label: label, Targets: idRefs(ids)})
	return c
}

// LinkLookup appends a link operation with a lookup target.
func (c *Chunk) LinkLookup(label, field string, value any) *Chunk {
	v, err := query.FromGo(value)
	if err != nil {
		c.fail(chunkErr(CodeInvalidValue, c.Namespace, "link lookup value for %q: %v", field, err))
		return c
	}
	c.Ops = append(c.Ops, LinkOp{Label: label, Targets: []EntityRef{LookupRef{Field: field, Value: v}}})
	return c
}

// Unlink appends an unlink operation detaching ids from label.
func (c *Chunk) Unlink(label string, ids ...uuid.UUID) *Chunk {
	c.Ops = append(c.Ops, UnlinkOp{Label: label, Targets: idRefs(ids)})
	return c
}

// Delete appends a delete operation. It must be the chunk's last op.
func (c *Chunk) Delete() *Chunk {
	c.Ops = append(c.Ops, DeleteOp{})
	return c
}

// Validate checks the chunk's shape. Fail-fast: the first violation is
// returned as a *ChunkError and nothing else is inspected.
func (c *Chunk) Validate() error {
	if c.err != nil {
		return c.err
	}
	if msg := checkNamespace(c.Namespace); msg != "" {
		return chunkErr(CodeInvalidNamespace, c.Namespace, "%s", msg)
	}
	if err := checkEntity(c.Namespace, c.Entity); err != nil {
		return err
	}
	if len(c.Ops) == 0 {
		return chunkErr(CodeNoOps, c.Namespace, "chunk must carry at least one operation")
	}
	for i, op := range c.Ops {
		if _, deleted := c.Ops[i].(DeleteOp); deleted && i != len(c.Ops)-1 {
			return chunkErr(CodeOpAfterDelete, c.Namespace, "operation %d follows a delete", i+1)
		}
		if err := checkOp(c.Namespace, op); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chunk) convertAttrs(opName string, attrs map[string]any) (*query.Object, bool) {
	v, err := query.FromGo(attrs)
	if err != nil {
		c.fail(chunkErr(CodeInvalidValue, c.Namespace, "%s attrs: %v", opName, err))
		return nil, false
	}
	obj, ok := v.(*query.Object)
	if !ok {
		c.fail(chunkErr(CodeInvalidValue, c.Namespace, "%s attrs must be a mapping", opName))
		return nil, false
	}
	return obj, true
}

// fail records the first builder error; later ones are dropped.
func (c *Chunk) fail(err *ChunkError) {
	if c.err == nil {
		c.err = err
	}
}

func idRefs(ids []uuid.UUID) []EntityRef {
	refs := make([]EntityRef, len(ids))
	for i, id := range ids {
		refs[i] = IDRef{ID: id}
	}
	return refs
}

func checkNamespace(name string) string {
	switch {
	case name == "":
		return "namespace name must not be empty"
	case strings.Contains(name, "."):
		return "namespace name must not contain dots"
	case strings.HasPrefix(name, "$"):
		return "names starting with $ are reserved for system namespaces"
	default:
		return ""
	}
}

func checkEntity(namespace string, ref EntityRef) error {
	switch r := ref.(type) {
	case IDRef:
		if r.ID == uuid.Nil {
			return chunkErr(CodeInvalidEntity, namespace, "entity id must not be the nil UUID")
		}
	case LookupRef:
		if r.Field == "" {
			return chunkErr(CodeInvalidEntity, namespace, "lookup field must not be empty")
		}
	case nil:
		return chunkErr(CodeInvalidEntity, namespace, "chunk has no entity reference")
	}
	return nil
}

func checkOp(namespace string, op Op) error {
	switch o := op.(type) {
	case UpdateOp:
		return checkAttrs(namespace, "update", o.Attrs)
	case MergeOp:
		return checkAttrs(namespace, "merge", o.Attrs)
	case LinkOp:
		return checkLink(namespace, "link", o.Label, o.Targets)
	case UnlinkOp:
		return checkLink(namespace, "unlink", o.Label, o.Targets)
	case DeleteOp:
		return nil
	}
	return nil
}

func checkAttrs(namespace, opName string, attrs *query.Object) error {
	if attrs == nil || attrs.Len() == 0 {
		return chunkErr(CodeEmptyAttrs, namespace, "%s requires at least one attribute", opName)
	}
	for _, key := range attrs.Keys() {
		if strings.HasPrefix(key, "$") {
			return chunkErr(CodeReservedAttr, namespace, "attribute %q: names starting with $ are reserved", key)
		}
	}
	return nil
}

func checkLink(namespace, opName, label string, targets []EntityRef) error {
	if label == "" {
		return chunkErr(CodeInvalidLink, namespace, "%s label must not be empty", opName)
	}
	if len(targets) == 0 {
		return chunkErr(CodeInvalidLink, namespace, "%s %q requires at least one target", opName, label)
	}
	for _, target := range targets {
		if err := checkEntity(namespace, target); err != nil {
			return err
		}
	}
	return nil
}
