// Package events publishes order lifecycle events to Kafka. Publishing is
// fire-and-forget: a dead broker is logged and never blocks or fails the
// order path.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

const topic = "order-events"

const (
	TypeOrderCreated       = "order.created"
	TypeOrderPaid          = "order.paid"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the published payload.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Producer struct {
	producer sarama.SyncProducer
}

// NewProducer connects to the broker. Callers treat a nil *Producer as
// "events disabled"; Publish on nil is a no-op.
func NewProducer(broker string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		return nil, err
	}

	log.Println("[EVENTS] kafka producer connected to", broker)
	return &Producer{producer: producer}, nil
}

func (p *Producer) Publish(event OrderEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] marshal failed: %v", err)
		return
	}

	// The broker round-trip happens off the caller's goroutine: handlers
	// publish while answering a request, and the gateway's webhook in
	// particular must ack without waiting on Kafka.
	go func() {
		_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(event.Reference),
			Value: sarama.ByteEncoder(data),
		})
		if err != nil {
			log.Printf("[EVENTS] publish %s for %s failed: %v", event.Type, event.Reference, err)
		}
	}()
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
