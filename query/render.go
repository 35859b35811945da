package query

import (
	"fmt"
	"strings"
)

// Render produces a compact human-readable description of a normalized
// query, one namespace per block with nested associations indented.
// It is display text for `facet explain`, error output, and logs,
// never something to parse back.
func Render(q *Query) string {
	var b strings.Builder
	for _, ns := range q.Namespaces {
		renderClause(&b, ns, 0)
	}
	return b.String()
}

func renderClause(b *strings.Builder, ns Namespace, indent int) {
	pad := strings.Repeat("  ", indent)
	b.WriteString(pad)
	b.WriteString(ns.Name)
	b.WriteByte('\n')

	opts := ns.Clause.Options
	if opts.Where != nil {
		fmt.Fprintf(b, "%s  where: %s\n", pad, RenderWhere(opts.Where))
	}
	if opts.Order != nil {
		terms := make([]string, len(opts.Order.Terms))
		for i, t := range opts.Order.Terms {
			terms[i] = t.Field + " " + string(t.Dir)
		}
		fmt.Fprintf(b, "%s  order: %s\n", pad, strings.Join(terms, ", "))
	}
	if opts.Fields != nil {
		fmt.Fprintf(b, "%s  fields: %s\n", pad, strings.Join(opts.Fields.Names, ", "))
	}
	for _, p := range []struct {
		name string
		v    OptInt
	}{
		{"limit", opts.Limit},
		{"offset", opts.Offset},
		{"first", opts.First},
		{"last", opts.Last},
	} {
		if p.v.Set {
			fmt.Fprintf(b, "%s  %s: %d\n", pad, p.name, p.v.Value)
		}
	}
	for _, p := range []struct {
		name string
		v    OptString
	}{
		{"after", opts.After},
		{"before", opts.Before},
	} {
		if p.v.Set {
			fmt.Fprintf(b, "%s  %s: %s\n", pad, p.name, quoteString(p.v.Value))
		}
	}

	for _, child := range ns.Clause.Children {
		renderClause(b, child, indent+1)
	}
}

// RenderWhere renders a where clause as an infix expression:
//
//	priority in ('high', 'critical') and owner.name = 'ada'
//
// Conditions at one level join with "and"; explicit groups are
// parenthesized.
func RenderWhere(w *Where) string {
	parts := make([]string, 0, len(w.Conds))
	for _, cond := range w.Conds {
		parts = append(parts, renderCond(cond))
	}
	return strings.Join(parts, " and ")
}

func renderCond(c Cond) string {
	switch cond := c.(type) {
	case FieldCond:
		return renderPredicate(cond.Field, cond.Pred)
	case GroupCond:
		items := make([]string, len(cond.Items))
		for i := range cond.Items {
			item := RenderWhere(&cond.Items[i])
			if len(cond.Items[i].Conds) > 1 {
				item = "(" + item + ")"
			}
			items[i] = item
		}
		return "(" + strings.Join(items, " "+string(cond.Op)+" ") + ")"
	default:
		return "?"
	}
}

func renderPredicate(field string, p Predicate) string {
	switch pred := p.(type) {
	case Eq:
		return fmt.Sprintf("%s = %s", field, renderScalar(pred.Value))
	case Gt:
		return fmt.Sprintf("%s > %s", field, renderScalar(pred.Value))
	case Lt:
		return fmt.Sprintf("%s < %s", field, renderScalar(pred.Value))
	case Gte:
		return fmt.Sprintf("%s >= %s", field, renderScalar(pred.Value))
	case Lte:
		return fmt.Sprintf("%s <= %s", field, renderScalar(pred.Value))
	case In:
		items := make([]string, len(pred.Values))
		for i, v := range pred.Values {
			items[i] = renderScalar(v)
		}
		return fmt.Sprintf("%s in (%s)", field, strings.Join(items, ", "))
	case NotEq:
		return fmt.Sprintf("%s != %s", field, renderScalar(pred.Value))
	case IsNull:
		if pred.Value {
			return field + " is null"
		}
		return field + " is not null"
	case Like:
		return fmt.Sprintf("%s like %s", field, quoteString(pred.Pattern))
	case ILike:
		return fmt.Sprintf("%s ilike %s", field, quoteString(pred.Pattern))
	default:
		return field + " ?"
	}
}

func renderScalar(s Scalar) string {
	switch v := s.(type) {
	case Null:
		return "null"
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Number:
		return string(v)
	case String:
		return quoteString(string(v))
	default:
		return "?"
	}
}

// quoteString single-quotes a string, doubling embedded quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
