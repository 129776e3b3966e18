package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"identrust/internal/platform/kafka/producer"
	"identrust/internal/platform/privacy"
)

// Producer is the subset of the Kafka producer used for forwarding.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaForwarder publishes audit events as JSON records keyed by entity id.
// Owners are masked before leaving the process.
type KafkaForwarder struct {
	producer Producer
	topic    string
	actions  []Action
}

// NewKafkaForwarder forwards the given actions to topic, or every action
// when none are listed.
func NewKafkaForwarder(p Producer, topic string, actions ...Action) *KafkaForwarder {
	return &KafkaForwarder{producer: p, topic: topic, actions: actions}
}

func (f *KafkaForwarder) Forward(ctx context.Context, event Event) error {
	if len(f.actions) > 0 && !slices.Contains(f.actions, event.Action) {
		return nil
	}

	event.Owner = privacy.MaskEmail(event.Owner)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	headers := map[string]string{"action": string(event.Action)}
	if event.RequestID != "" {
		headers["request_id"] = event.RequestID
	}
	return f.producer.Produce(ctx, &producer.Message{
		Topic:   f.topic,
		Key:     []byte(event.EntityID),
		Value:   value,
		Headers: headers,
	})
}
