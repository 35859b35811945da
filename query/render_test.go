package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWhere_Predicates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "equality",
			doc:  `{"todos": {"$": {"where": {"id": "todo-1"}}}}`,
			want: "id = 'todo-1'",
		},
		{
			name: "implicit and",
			doc:  `{"todos": {"$": {"where": {"done": false, "estimate": {"$lte": 3}}}}}`,
			want: "done = false and estimate <= 3",
		},
		{
			name: "in list",
			doc:  `{"todos": {"$": {"where": {"priority": {"$in": ["high", "critical"]}}}}}`,
			want: "priority in ('high', 'critical')",
		},
		{
			name: "or group",
			doc:  `{"todos": {"$": {"where": {"or": [{"done": true}, {"archived": {"$isNull": false}}]}}}}`,
			want: "(done = true or archived is not null)",
		},
		{
			name: "not equal",
			doc:  `{"todos": {"$": {"where": {"priority": {"$not": "low"}}}}}`,
			want: "priority != 'low'",
		},
		{
			name: "patterns",
			doc:  `{"todos": {"$": {"where": {"title": {"$like": "%Plan%"}, "slug": {"$ilike": "%plan%"}}}}}`,
			want: "title like '%Plan%' and slug ilike '%plan%'",
		},
		{
			name: "dotted path",
			doc:  `{"todos": {"$": {"where": {"owner.handle": "ada"}}}}`,
			want: "owner.handle = 'ada'",
		},
		{
			name: "quote escaping",
			doc:  `{"todos": {"$": {"where": {"title": "it's fine"}}}}`,
			want: "title = 'it''s fine'",
		},
		{
			name: "null equality",
			doc:  `{"todos": {"$": {"where": {"note": null}}}}`,
			want: "note = null",
		},
		{
			name: "nested groups parenthesized",
			doc:  `{"todos": {"$": {"where": {"or": [{"a": 1, "b": 2}, {"c": 3}]}}}}`,
			want: "((a = 1 and b = 2) or c = 3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustValidate(t, tt.doc)
			where := q.Namespaces[0].Clause.Options.Where
			require.NotNil(t, where)
			assert.Equal(t, tt.want, RenderWhere(where))
		})
	}
}

func TestRender_FullQuery(t *testing.T) {
	q := mustValidate(t, `{"goals": {"$": {"where": {"owner.handle": "ada"}, "order": {"title": "asc"}, "limit": 5}, "todos": {"$": {"fields": ["title"]}}}}`)

	want := "goals\n" +
		"  where: owner.handle = 'ada'\n" +
		"  order: title asc\n" +
		"  limit: 5\n" +
		"  todos\n" +
		"    fields: title, id\n"
	assert.Equal(t, want, Render(q))
}

func TestRender_CursorOptions(t *testing.T) {
	q := mustValidate(t, `{"todos": {"$": {"first": 25, "after": "cur-1"}}}`)

	want := "todos\n" +
		"  first: 25\n" +
		"  after: 'cur-1'\n"
	assert.Equal(t, want, Render(q))
}
