package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	producerName = "tableorder"
	envelopeV1   = 1
	schemaPrefix = "tableorder.notice."
)

// Envelope is the wire shape published to the broker.
type Envelope struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       Notice    `json:"payload"`
}

func newEnvelope(n Notice, correlationID string) Envelope {
	key := n.OrderID
	if key == "" {
		key = n.TableNumber
	}
	if key == "" {
		key = string(n.Kind)
	}
	return Envelope{
		EventName:     string(n.Kind),
		EventVersion:  envelopeV1,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producerName,
		PartitionKey:  key,
		OccurredAt:    n.At,
		Schema:        fmt.Sprintf("%s%s.v%d", schemaPrefix, n.Kind, envelopeV1),
		Payload:       n,
	}
}

// Validate checks the envelope identity fields a consumer relies on.
func (e Envelope) Validate() error {
	if e.EventName == "" {
		return fmt.Errorf("missing eventName")
	}
	if e.EventVersion != envelopeV1 {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if _, err := uuid.Parse(e.EventID); err != nil {
		return fmt.Errorf("invalid eventId: %w", err)
	}
	return nil
}

func routingKey(k Kind) string {
	return string(k) + ".v1"
}
