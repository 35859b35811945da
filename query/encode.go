package query

// EncodeJSON renders a normalized query as single-line JSON with every
// option materialized: options a clause never set are written as
// explicit nulls rather than omitted keys. Key order follows the
// document the query was validated from, so the output is deterministic
// and is what golden files record.
//
// The output is itself a valid query document. Validate reads explicit
// nulls as not-set, so validate → EncodeJSON → validate round-trips to
// the same normalized query and the same bytes.
func EncodeJSON(q *Query) ([]byte, error) {
	return MarshalOrdered(encodeQuery(q))
}

// encodeQuery lowers a normalized query back to a Value tree.
func encodeQuery(q *Query) Value {
	root := NewObject()
	for _, ns := range q.Namespaces {
		root.Set(ns.Name, encodeClause(ns.Clause))
	}
	return root
}

func encodeClause(c Clause) Value {
	node := NewObject(F(optionsKey, encodeOptions(c.Options)))
	for _, child := range c.Children {
		node.Set(child.Name, encodeClause(child.Clause))
	}
	return node
}

// encodeOptions writes the full options block. The fixed key order here
// defines the normalized serialization; it is not alphabetical, it
// groups where/order/fields before the pagination members.
func encodeOptions(o Options) Value {
	return NewObject(
		F("where", encodeWhere(o.Where)),
		F("order", encodeOrder(o.Order)),
		F("fields", encodeFields(o.Fields)),
		F("limit", encodeOptInt(o.Limit)),
		F("offset", encodeOptInt(o.Offset)),
		F("first", encodeOptInt(o.First)),
		F("after", encodeOptString(o.After)),
		F("last", encodeOptInt(o.Last)),
		F("before", encodeOptString(o.Before)),
	)
}

func encodeOptInt(v OptInt) Value {
	if !v.Set {
		return Null{}
	}
	return NumberFromInt(v.Value)
}

func encodeOptString(v OptString) Value {
	if !v.Set {
		return Null{}
	}
	return String(v.Value)
}

func encodeOrder(o *Order) Value {
	if o == nil {
		return Null{}
	}
	obj := NewObject()
	for _, term := range o.Terms {
		obj.Set(term.Field, String(term.Dir))
	}
	return obj
}

func encodeFields(f *Fields) Value {
	if f == nil {
		return Null{}
	}
	arr := make(Array, len(f.Names))
	for i, name := range f.Names {
		arr[i] = String(name)
	}
	return arr
}

func encodeWhere(w *Where) Value {
	if w == nil {
		return Null{}
	}
	obj := NewObject()
	for _, cond := range w.Conds {
		switch c := cond.(type) {
		case FieldCond:
			obj.Set(c.Field, encodePredicate(c.Pred))
		case GroupCond:
			items := make(Array, len(c.Items))
			for i := range c.Items {
				items[i] = encodeWhere(&c.Items[i])
			}
			obj.Set(string(c.Op), items)
		}
	}
	return obj
}

// encodePredicate writes the canonical operator object. Bare literals
// validated as equality come back as {"$eq": v}.
func encodePredicate(p Predicate) Value {
	switch pred := p.(type) {
	case Eq:
		return NewObject(F("$eq", pred.Value))
	case Gt:
		return NewObject(F("$gt", pred.Value))
	case Lt:
		return NewObject(F("$lt", pred.Value))
	case Gte:
		return NewObject(F("$gte", pred.Value))
	case Lte:
		return NewObject(F("$lte", pred.Value))
	case In:
		arr := make(Array, len(pred.Values))
		for i, v := range pred.Values {
			arr[i] = v
		}
		return NewObject(F("$in", arr))
	case NotEq:
		return NewObject(F("$not", pred.Value))
	case IsNull:
		return NewObject(F("$isNull", Bool(pred.Value)))
	case Like:
		return NewObject(F("$like", String(pred.Pattern)))
	case ILike:
		return NewObject(F("$ilike", String(pred.Pattern)))
	default:
		// Predicate is sealed; this branch is unreachable.
		return Null{}
	}
}
