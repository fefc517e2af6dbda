package storage

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownColumn is returned when a caller orders by a column the table
// does not have.
var ErrUnknownColumn = errors.New("unknown column")

// Relation is a belongs-to link from one table to another through a
// NOT NULL foreign key column on the owning side.
type Relation struct {
	Target     string // alias of the related table
	ForeignKey string // column on the owning table
}

// Table describes how an entity alias maps onto the database.
type Table struct {
	Alias      string
	Name       string
	Columns    []string
	SoftDelete bool
	Relations  map[string]Relation
}

func (t Table) HasColumn(col string) bool {
	return slices.Contains(t.Columns, col)
}

// Registry resolves entity aliases to tables.
type Registry struct {
	tables map[string]Table
}

func NewRegistry(tables ...Table) *Registry {
	r := &Registry{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		r.tables[t.Alias] = t
	}
	return r
}

func (r *Registry) Table(alias string) (Table, error) {
	t, ok := r.tables[alias]
	if !ok {
		return Table{}, fmt.Errorf("unknown entity %q", alias)
	}
	return t, nil
}

var timestampColumns = []string{"created_at", "updated_at", "deleted_at"}

func columns(cols ...string) []string {
	return append(cols, timestampColumns...)
}

// DefaultRegistry describes the schema created by the embedded migrations.
// Months are linked to either an expense or an income, so they have no
// belongs-to relation.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Table{
			Alias:      "user",
			Name:       "users",
			Columns:    columns("id", "name", "email", "role", "status"),
			SoftDelete: true,
		},
		Table{
			Alias:      "bill",
			Name:       "bills",
			Columns:    columns("id", "name", "year", "status", "user_id"),
			SoftDelete: true,
			Relations: map[string]Relation{
				"user": {Target: "user", ForeignKey: "user_id"},
			},
		},
		Table{
			Alias:      "expense",
			Name:       "expenses",
			Columns:    columns("id", "name", "year", "type", "status", "description", "total", "paid", "bill_id"),
			SoftDelete: true,
			Relations: map[string]Relation{
				"bill": {Target: "bill", ForeignKey: "bill_id"},
			},
		},
		Table{
			Alias:      "income",
			Name:       "incomes",
			Columns:    columns("id", "name", "year", "source", "status", "total", "user_id"),
			SoftDelete: true,
			Relations: map[string]Relation{
				"user": {Target: "user", ForeignKey: "user_id"},
			},
		},
		Table{
			Alias:      "month",
			Name:       "months",
			Columns:    columns("id", "order", "code", "label", "year", "value", "paid", "due_date", "expense_id", "income_id"),
			SoftDelete: true,
		},
		Table{
			Alias:      "pokemon",
			Name:       "pokemon",
			Columns:    columns("id", "name", "order", "status", "types", "sprite", "height", "weight"),
			SoftDelete: true,
		},
	)
}
