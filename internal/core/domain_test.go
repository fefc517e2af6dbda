package core

import (
	"errors"
	"strings"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestUserValidate(t *testing.T) {
	good := User{Name: "Ada", Email: "ada@example.com", Role: RoleAdmin, Status: StatusActive}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*User)
		want error
	}{
		{"empty name", func(u *User) { u.Name = " " }, ErrEmptyName},
		{"bad email", func(u *User) { u.Email = "ada" }, ErrInvalidEmail},
		{"trailing at", func(u *User) { u.Email = "ada@" }, ErrInvalidEmail},
		{"bad role", func(u *User) { u.Role = "root" }, ErrInvalidRole},
		{"bad status", func(u *User) { u.Status = "gone" }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		u := good
		tc.mut(&u)
		err := u.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Entity != "user" {
			t.Fatalf("%s: expected a user validation error, got %v", tc.name, err)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Name:   "Rent",
		Year:   2025,
		Type:   ExpenseFixed,
		Status: StatusPending,
		Total:  Cents(120000),
		BillID: "b1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*Expense){
		func(e *Expense) { e.Name = "" },
		func(e *Expense) { e.Name = strings.Repeat("x", 201) },
		func(e *Expense) { e.Year = 12 },
		func(e *Expense) { e.Type = "other" },
		func(e *Expense) { e.Status = "" },
		func(e *Expense) { e.Description = strings.Repeat("x", 501) },
		func(e *Expense) { e.Total = Cents(0) },
		func(e *Expense) { e.BillID = "" },
	}
	for i, mut := range bads {
		e := good
		mut(&e)
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthValidate(t *testing.T) {
	cases := []struct {
		m    Month
		want error
	}{
		{Month{Order: 1, Year: 2025, ExpenseID: ptr("e1")}, nil},
		{Month{Order: 12, Year: 2025, IncomeID: ptr("i1")}, nil},
		{Month{Order: 13, Year: 2025, ExpenseID: ptr("e1")}, ErrInvalidOrder},
		{Month{Order: 1, Year: 2025}, ErrMissingOwner},
		{Month{Order: 1, Year: 2025, ExpenseID: ptr("e1"), IncomeID: ptr("i1")}, ErrAmbiguousOwner},
		{Month{Order: 1, Year: 2025, ExpenseID: ptr("e1"), Value: Cents(-1)}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		err := tc.m.Validate()
		if tc.want == nil && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestMonthLookup(t *testing.T) {
	m, ok := MonthByOrder(3)
	if !ok || m.Code != "mar" || m.Label != "March" {
		t.Fatalf("unexpected month %+v", m)
	}
	if _, ok := MonthByOrder(0); ok {
		t.Fatalf("expected order 0 to be rejected")
	}
	m, ok = MonthByCode(" DEC ")
	if !ok || m.Order != 12 {
		t.Fatalf("unexpected month %+v", m)
	}
	if _, ok := MonthByCode("xyz"); ok {
		t.Fatalf("expected unknown code to be rejected")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList{"electric", "fairy"}.Value()
	if err != nil {
		t.Fatal(err)
	}
	var got StringList
	if err := got.Scan(v); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "electric" || got[1] != "fairy" {
		t.Fatalf("unexpected list %v", got)
	}
	if err := got.Scan(nil); err != nil || len(got) != 0 {
		t.Fatalf("expected empty list from NULL, got %v (err=%v)", got, err)
	}
}
