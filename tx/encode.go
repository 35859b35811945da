package tx

import (
	"fmt"

	"github.com/roach88/facet/query"
)

// DomainTx is the domain separation prefix for transaction hashes.
const DomainTx = "facet/tx/v1"

// EncodeSteps lowers a chunk to the service wire form: a list of step
// lists, one per operation, in op order.
//
//	["update", "todos", "<id>", {"title": "ship it"}]
//	["link", "todos", "<id>", {"owner": ["<id>"]}]
//	["delete", "todos", ["lookup", "slug", "launch"]]
//
// The chunk is validated first; an invalid chunk encodes to nothing.
func EncodeSteps(c *Chunk) (query.Array, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	entity := encodeEntity(c.Entity)
	steps := make(query.Array, 0, len(c.Ops))
	for _, op := range c.Ops {
		switch o := op.(type) {
		case UpdateOp:
			steps = append(steps, query.Array{query.String("update"), query.String(c.Namespace), entity, o.Attrs})
		case MergeOp:
			steps = append(steps, query.Array{query.String("merge"), query.String(c.Namespace), entity, o.Attrs})
		case LinkOp:
			steps = append(steps, query.Array{query.String("link"), query.String(c.Namespace), entity, encodeTargets(o.Label, o.Targets)})
		case UnlinkOp:
			steps = append(steps, query.Array{query.String("unlink"), query.String(c.Namespace), entity, encodeTargets(o.Label, o.Targets)})
		case DeleteOp:
			steps = append(steps, query.Array{query.String("delete"), query.String(c.Namespace), entity})
		}
	}
	return steps, nil
}

// EncodeJSON renders the wire form as single-line JSON in op order.
func EncodeJSON(c *Chunk) ([]byte, error) {
	steps, err := EncodeSteps(c)
	if err != nil {
		return nil, err
	}
	return query.MarshalOrdered(steps)
}

// Hash computes the content address of a chunk's wire form, using the
// same canonical serialization as query hashing under a tx domain.
func Hash(c *Chunk) (string, error) {
	steps, err := EncodeSteps(c)
	if err != nil {
		return "", err
	}
	canonical, err := query.MarshalCanonical(steps)
	if err != nil {
		return "", fmt.Errorf("hash chunk: %w", err)
	}
	return query.HashDomain(DomainTx, canonical), nil
}

func encodeEntity(ref EntityRef) query.Value {
	switch r := ref.(type) {
	case IDRef:
		return query.String(r.ID.String())
	case LookupRef:
		return query.Array{query.String("lookup"), query.String(r.Field), r.Value}
	default:
		return query.Null{}
	}
}

// encodeTargets writes a link/unlink operand: {label: [target, ...]}.
func encodeTargets(label string, targets []EntityRef) query.Value {
	list := make(query.Array, len(targets))
	for i, target := range targets {
		list[i] = encodeEntity(target)
	}
	return query.NewObject(query.F(label, list))
}
