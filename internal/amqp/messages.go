package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// LedgerEventMessage announces a mutation applied to the ledger. It
// carries positions and sizes only; consumers re-read the store for data.
type LedgerEventMessage struct {
	ID         uuid.UUID `json:"id"`
	Operation  string    `json:"operation"`
	Collection string    `json:"collection"`
	Index      int       `json:"index"`
	Size       int       `json:"size"`
	Persisted  bool      `json:"persisted"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a message for ev with a fresh ID.
func NewLedgerEventMessage(ev core.ChangeEvent) *LedgerEventMessage {
	return &LedgerEventMessage{
		ID:         uuid.New(),
		Operation:  string(ev.Operation),
		Collection: string(ev.Collection),
		Index:      ev.Index,
		Size:       ev.Size,
		Persisted:  ev.Persisted,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Event converts the message back to a change event.
func (m *LedgerEventMessage) Event() core.ChangeEvent {
	return core.ChangeEvent{
		Operation:  core.Operation(m.Operation),
		Collection: core.Collection(m.Collection),
		Index:      m.Index,
		Size:       m.Size,
		Persisted:  m.Persisted,
	}
}
