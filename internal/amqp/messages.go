package amqp

import (
	"encoding/json"
	"time"
)

// Report kinds a request can ask for.
const (
	ReportKindMonthly     = "monthly"
	ReportKindProvisional = "provisional"
)

// ReportRequestMessage asks the report worker to render a treasury
// report. The message carries only the kind and cutoff date; the worker
// reads the ledger itself.
type ReportRequestMessage struct {
	Kind        string    `json:"kind"`
	AsOf        string    `json:"asOf,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewReportRequestMessage creates a request for the given report kind.
func NewReportRequestMessage(kind, asOf string) *ReportRequestMessage {
	return &ReportRequestMessage{
		Kind:        kind,
		AsOf:        asOf,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON creates a message from JSON bytes
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
