package amqp

import (
	"encoding/json"
	"time"
)

// Mutation outcomes carried by MutationEvent.State.
const (
	StateCommitted  = "committed"
	StateRolledBack = "rolled_back"
)

// MutationEvent reports the outcome of one optimistic add or edit.
type MutationEvent struct {
	Operation     string    `json:"operation"`
	State         string    `json:"state"`
	TransactionID string    `json:"transaction_id"`
	TempID        string    `json:"temp_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	Category      string    `json:"category,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewMutationEvent stamps the event with the current time.
func NewMutationEvent(operation, state, transactionID string) *MutationEvent {
	return &MutationEvent{
		Operation:     operation,
		State:         state,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var msg MutationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
