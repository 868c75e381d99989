package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second}, // shift overflow must still cap
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "connection refused",
			err:      errors.New("connection refused"),
			expected: true,
		},
		{
			name:     "closed connection",
			err:      errors.New("connection closed"),
			expected: true,
		},
		{
			name:     "EOF",
			err:      errors.New("unexpected EOF"),
			expected: true,
		},
		{
			name:     "broken pipe",
			err:      errors.New("broken pipe"),
			expected: true,
		},
		{
			name:     "closed network connection",
			err:      errors.New("use of closed network connection"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      errors.New("some other error"),
			expected: false,
		},
		{
			name:     "validation error",
			err:      errors.New("invalid input"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestNewExpenseCreatedMessage(t *testing.T) {
	msg := NewExpenseCreatedMessage("exp-1", []string{"u1", "u2"})

	if msg.ExpenseID != "exp-1" {
		t.Errorf("ExpenseID = %v, want exp-1", msg.ExpenseID)
	}
	if len(msg.ParticipantIDs) != 2 {
		t.Errorf("ParticipantIDs = %v, want 2 entries", msg.ParticipantIDs)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseCreatedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ExpenseCreatedMessage{
		ExpenseID:      "exp-42",
		ParticipantIDs: []string{"u1", "u2", "u3"},
		Timestamp:      timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseCreatedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExpenseCreatedMessageFromJSON() error = %v", err)
	}

	if parsed.ExpenseID != msg.ExpenseID {
		t.Errorf("Parsed ExpenseID = %v, want %v", parsed.ExpenseID, msg.ExpenseID)
	}
	if len(parsed.ParticipantIDs) != len(msg.ParticipantIDs) {
		t.Errorf("Parsed ParticipantIDs = %v, want %v", parsed.ParticipantIDs, msg.ParticipantIDs)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestExpenseCreatedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"expense_id": 42}`)

	_, err := ExpenseCreatedMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("ExpenseCreatedMessageFromJSON() should fail with invalid JSON")
	}
}
