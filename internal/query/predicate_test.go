package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		spec     SearchSpec
		relation bool
		fragment string
		bind     any
	}{
		{
			name:     "default operator is equality",
			spec:     SearchSpec{By: "id", Value: "abc"},
			fragment: `"expense"."id" = :id`,
			bind:     "abc",
		},
		{
			name:     "like is case-insensitive substring",
			spec:     SearchSpec{By: "name", Value: "Some Name", Operator: OpLike},
			fragment: `LOWER("expense"."name") LIKE :name`,
			bind:     "%some name%",
		},
		{
			name:     "comparison passes value through",
			spec:     SearchSpec{By: "year", Value: 2024, Operator: OpGte},
			fragment: `"expense"."year" >= :year`,
			bind:     2024,
		},
		{
			name:     "relation column is used as given",
			spec:     SearchSpec{By: "bill.name", Value: "card", Operator: OpEq},
			relation: true,
			fragment: `"bill"."name" = :bill.name`,
			bind:     "card",
		},
		{
			name:     "in wraps placeholder",
			spec:     SearchSpec{By: "status", Value: []string{"a", "b"}, Operator: OpIn},
			fragment: `"expense"."status" IN (:status)`,
			bind:     []string{"a", "b"},
		},
		{
			name:     "not in wraps placeholder",
			spec:     SearchSpec{By: "status", Value: []string{"a"}, Operator: OpNotIn},
			fragment: `"expense"."status" NOT IN (:status)`,
			bind:     []string{"a"},
		},
		{
			name:     "empty in matches nothing",
			spec:     SearchSpec{By: "status", Value: []string{}, Operator: OpIn},
			fragment: `1=0`,
			bind:     []string{},
		},
		{
			name:     "empty not in matches everything",
			spec:     SearchSpec{By: "status", Value: []any(nil), Operator: OpNotIn},
			fragment: `1=1`,
			bind:     []any(nil),
		},
		{
			name:     "is null has no placeholder",
			spec:     SearchSpec{By: "deleted_at", Value: nil, Operator: OpIsNull},
			fragment: `"expense"."deleted_at" IS NULL`,
			bind:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compile("expense", tt.spec, tt.relation)
			assert.Equal(t, tt.fragment, p.Fragment)
			assert.Len(t, p.Binds, 1)
			assert.Equal(t, tt.bind, p.Binds[tt.spec.By])
		})
	}
}

func TestCompile_IsDeterministic(t *testing.T) {
	f := FilterSpec{Column: "status", Value: "active", Operator: OpEq}

	first := CompileFilter("bill", f)
	second := CompileFilter("bill", f)

	assert.Equal(t, first, second)
	assert.Equal(t, `"bill"."status" = :status`, first.Fragment)
	assert.Equal(t, map[string]any{"status": "active"}, first.Binds)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"name"`, QuoteIdent("name"))
	assert.Equal(t, `"na""me"`, QuoteIdent(`na"me`))
	assert.Equal(t, `""`, QuoteIdent(""))
}

func TestOpValid(t *testing.T) {
	for _, op := range []Op{OpEq, OpGt, OpLt, OpGte, OpLte, OpLike, OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpAnd, OpOr, OpNot} {
		assert.True(t, op.Valid(), op.String())
	}
	assert.False(t, Op("ILIKE").Valid())
	assert.False(t, Op("").Valid())
}
