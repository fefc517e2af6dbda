package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifyFilters_NilParametersIsIdentity(t *testing.T) {
	base := []FilterSpec{
		{Column: "status", Value: "active", Operator: OpEq},
		{Column: "status", Value: "active", Operator: OpEq},
		{Column: "year", Value: 2024, Operator: OpGte},
	}

	got := UnifyFilters(base, nil)

	assert.Equal(t, base, got)
	assert.Len(t, got, 3, "duplicates are kept when no parameters are supplied")
}

func TestUnifyFilters_EmptyParametersDeduplicatesBase(t *testing.T) {
	base := []FilterSpec{
		{Column: "status", Value: "active", Operator: OpEq},
		{Column: "status", Value: "active", Operator: OpEq},
		{Column: "year", Value: 2024, Operator: OpGte},
	}

	got := UnifyFilters(base, &Parameters{})

	assert.Equal(t, []FilterSpec{
		{Column: "status", Value: "active", Operator: OpEq},
		{Column: "year", Value: 2024, Operator: OpGte},
	}, got)
}

func TestUnifyFilters_ParameterFiltersComeFirst(t *testing.T) {
	base := []FilterSpec{
		{Column: "bill.name", Value: "card", Operator: OpLike, IsRelationColumn: true},
		{Column: "status", Value: "paid", Operator: OpEq},
	}
	params := &Parameters{Role: "ADMIN", Name: "Rent", Status: "Paid", Year: 2024, Asc: "name", Page: 2}

	got := UnifyFilters(base, params)

	assert.Equal(t, []FilterSpec{
		{Column: "role", Value: "admin", Operator: OpEq},
		{Column: "name", Value: "rent", Operator: OpLike},
		{Column: "status", Value: "paid", Operator: OpEq},
		{Column: "year", Value: 2024, Operator: OpEq},
		{Column: "bill.name", Value: "card", Operator: OpLike, IsRelationColumn: true},
	}, got)
}

func TestUnifyFilters_IgnoresBlankValues(t *testing.T) {
	got := UnifyFilters(nil, &Parameters{Role: "  ", Name: ""})
	assert.Empty(t, got)
}

func TestParameters_Paginated(t *testing.T) {
	var nilParams *Parameters
	assert.False(t, nilParams.Paginated())
	assert.False(t, (&Parameters{Name: "x"}).Paginated())
	assert.True(t, (&Parameters{Page: 1}).Paginated())
	assert.True(t, (&Parameters{Limit: 5}).Paginated())
}
