package amqp

import (
	"encoding/json"
	"time"

	"pennywise/internal/events"
	"pennywise/internal/models"
)

// ChangeMessage is the wire form of a ledger change. It only names the
// record; consumers read the current state from the ledger API.
type ChangeMessage struct {
	Seq       uint            `json:"seq"`
	Table     string          `json:"table"`
	Op        models.ChangeOp `json:"op"`
	RecordID  uint            `json:"record_id"`
	At        time.Time       `json:"at"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeMessage wraps a broker change for publishing.
func NewChangeMessage(c events.Change) *ChangeMessage {
	return &ChangeMessage{
		Seq:       c.Seq,
		Table:     c.Table,
		Op:        c.Op,
		RecordID:  c.RecordID,
		At:        c.At,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
