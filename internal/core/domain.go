package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
)

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const (
	ExpenseFixed    ExpenseType = "fixed"
	ExpenseVariable ExpenseType = "variable"
	ExpenseCard     ExpenseType = "card"
)

type (
	Status      string
	Role        string
	ExpenseType string

	// Timestamps are shared by every stored entity. A non-nil DeletedAt marks
	// the row as soft deleted.
	Timestamps struct {
		CreatedAt time.Time  `db:"created_at" json:"created_at"`
		UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
		DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	}

	User struct {
		ID     string `db:"id" json:"id"`
		Name   string `db:"name" json:"name"`
		Email  string `db:"email" json:"email"`
		Role   Role   `db:"role" json:"role"`
		Status Status `db:"status" json:"status"`
		Timestamps
	}

	Bill struct {
		ID     string `db:"id" json:"id"`
		Name   string `db:"name" json:"name"`
		Year   int    `db:"year" json:"year"`
		Status Status `db:"status" json:"status"`
		UserID string `db:"user_id" json:"user_id"`
		User   *User  `db:"user" json:"user,omitempty"`
		Timestamps
	}

	Expense struct {
		ID          string      `db:"id" json:"id"`
		Name        string      `db:"name" json:"name"`
		Year        int         `db:"year" json:"year"`
		Type        ExpenseType `db:"type" json:"type"`
		Status      Status      `db:"status" json:"status"`
		Description string      `db:"description" json:"description"`
		Total       Money       `db:"total" json:"total"`
		Paid        bool        `db:"paid" json:"paid"`
		BillID      string      `db:"bill_id" json:"bill_id"`
		Bill        *Bill       `db:"bill" json:"bill,omitempty"`
		Timestamps
	}

	Income struct {
		ID     string `db:"id" json:"id"`
		Name   string `db:"name" json:"name"`
		Year   int    `db:"year" json:"year"`
		Source string `db:"source" json:"source"`
		Status Status `db:"status" json:"status"`
		Total  Money  `db:"total" json:"total"`
		UserID string `db:"user_id" json:"user_id"`
		User   *User  `db:"user" json:"user,omitempty"`
		Timestamps
	}

	// Month is one monthly instalment of an expense or one monthly entry of an
	// income. Exactly one of ExpenseID and IncomeID is set.
	Month struct {
		ID        string     `db:"id" json:"id"`
		Order     int        `db:"order" json:"order"`
		Code      string     `db:"code" json:"code"`
		Label     string     `db:"label" json:"label"`
		Year      int        `db:"year" json:"year"`
		Value     Money      `db:"value" json:"value"`
		Paid      bool       `db:"paid" json:"paid"`
		DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
		ExpenseID *string    `db:"expense_id" json:"expense_id,omitempty"`
		IncomeID  *string    `db:"income_id" json:"income_id,omitempty"`
		Timestamps
	}

	Pokemon struct {
		ID     string     `db:"id" json:"id"`
		Name   string     `db:"name" json:"name"`
		Order  int        `db:"order" json:"order"`
		Status Status     `db:"status" json:"status"`
		Types  StringList `db:"types" json:"types"`
		Sprite string     `db:"sprite" json:"sprite"`
		Height int        `db:"height" json:"height"`
		Weight int        `db:"weight" json:"weight"`
		Timestamps
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidType      = errors.New("invalid expense type")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrMissingOwner     = errors.New("missing owner")
	ErrAmbiguousOwner   = errors.New("month belongs to both an expense and an income")
	ErrNameTooLong      = errors.New("name too long (max 200 characters)")
	ErrDescriptionLimit = errors.New("description too long (max 500 characters)")
)

// ValidationError wraps any of the errors above with the entity it refers to.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Entity + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(entity string, err error) error {
	return &ValidationError{Entity: entity, Err: err}
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseFixed, ExpenseVariable, ExpenseCard:
		return true
	}
	return false
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func validYear(year int) error {
	if year < 1900 || year > 2999 {
		return ErrInvalidYear
	}
	return nil
}

func (u User) Validate() error {
	if err := validName(u.Name); err != nil {
		return invalid("user", err)
	}
	if at := strings.Index(u.Email, "@"); at < 1 || at == len(u.Email)-1 {
		return invalid("user", ErrInvalidEmail)
	}
	if !u.Role.Valid() {
		return invalid("user", ErrInvalidRole)
	}
	if !u.Status.Valid() {
		return invalid("user", ErrInvalidStatus)
	}
	return nil
}

func (b Bill) Validate() error {
	if err := validName(b.Name); err != nil {
		return invalid("bill", err)
	}
	if err := validYear(b.Year); err != nil {
		return invalid("bill", err)
	}
	if !b.Status.Valid() {
		return invalid("bill", ErrInvalidStatus)
	}
	if strings.TrimSpace(b.UserID) == "" {
		return invalid("bill", ErrMissingOwner)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validName(e.Name); err != nil {
		return invalid("expense", err)
	}
	if err := validYear(e.Year); err != nil {
		return invalid("expense", err)
	}
	if !e.Type.Valid() {
		return invalid("expense", ErrInvalidType)
	}
	if !e.Status.Valid() {
		return invalid("expense", ErrInvalidStatus)
	}
	if len(e.Description) > 500 {
		return invalid("expense", ErrDescriptionLimit)
	}
	if err := e.Total.Validate(); err != nil {
		return invalid("expense", err)
	}
	if strings.TrimSpace(e.BillID) == "" {
		return invalid("expense", ErrMissingOwner)
	}
	return nil
}

func (i Income) Validate() error {
	if err := validName(i.Name); err != nil {
		return invalid("income", err)
	}
	if err := validYear(i.Year); err != nil {
		return invalid("income", err)
	}
	if !i.Status.Valid() {
		return invalid("income", ErrInvalidStatus)
	}
	if err := i.Total.Validate(); err != nil {
		return invalid("income", err)
	}
	if strings.TrimSpace(i.UserID) == "" {
		return invalid("income", ErrMissingOwner)
	}
	return nil
}

func (m Month) Validate() error {
	if _, ok := MonthByOrder(m.Order); !ok {
		return invalid("month", ErrInvalidOrder)
	}
	if err := validYear(m.Year); err != nil {
		return invalid("month", err)
	}
	if m.Value.Cents < 0 {
		return invalid("month", ErrInvalidAmount)
	}
	switch {
	case m.ExpenseID == nil && m.IncomeID == nil:
		return invalid("month", ErrMissingOwner)
	case m.ExpenseID != nil && m.IncomeID != nil:
		return invalid("month", ErrAmbiguousOwner)
	}
	return nil
}

func (p Pokemon) Validate() error {
	if err := validName(p.Name); err != nil {
		return invalid("pokemon", err)
	}
	if p.Order <= 0 {
		return invalid("pokemon", ErrInvalidOrder)
	}
	return nil
}
