package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is also the routing key of the event.
type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent announces a change to an expense. It carries enough to log
// the change; consumers load the full expense from the database by ID.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ExpenseID string    `json:"expense_id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Total     int64     `json:"total_cents"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(t EventType, expenseID, name string, year int, totalCents int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      t,
		ExpenseID: expenseID,
		Name:      name,
		Year:      year,
		Total:     totalCents,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event and checks its type and id.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case ExpenseCreated, ExpenseDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.ExpenseID == "" {
		return nil, fmt.Errorf("event %s without expense id", ev.Type)
	}
	return &ev, nil
}
