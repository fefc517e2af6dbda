package query

// Op is a comparison operator understood by the predicate compiler.
type Op string

const (
	OpEq        Op = "="
	OpGt        Op = ">"
	OpLt        Op = "<"
	OpGte       Op = ">="
	OpLte       Op = "<="
	OpLike      Op = "LIKE"
	OpIn        Op = "IN"
	OpNotIn     Op = "NOT IN"
	OpIsNull    Op = "IS NULL"
	OpIsNotNull Op = "IS NOT NULL"
	OpAnd       Op = "AND"
	OpOr        Op = "OR"
	OpNot       Op = "NOT"
)

// Valid reports whether op is one of the declared operators.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpLike, OpIn, OpNotIn,
		OpIsNull, OpIsNotNull, OpAnd, OpOr, OpNot:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (op Op) String() string {
	return string(op)
}

// orDefault returns OpEq for the zero operator.
func (op Op) orDefault() Op {
	if op == "" {
		return OpEq
	}
	return op
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)
