package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseCreatedMessage announces a freshly stored expense. It carries only
// identifiers; the worker fetches whatever else it needs from the database.
type ExpenseCreatedMessage struct {
	ExpenseID      string    `json:"expense_id"`
	ParticipantIDs []string  `json:"participant_ids"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewExpenseCreatedMessage(expenseID string, participantIDs []string) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ExpenseID:      expenseID,
		ParticipantIDs: participantIDs,
		Timestamp:      time.Now(),
	}
}

func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
