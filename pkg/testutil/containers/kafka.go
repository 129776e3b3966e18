//go:build integration

package containers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaContainer is a Redpanda broker speaking the Kafka protocol. Topics
// are created on first produce.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   string
}

var (
	kafkaMu     sync.Mutex
	sharedKafka *KafkaContainer
)

// Kafka returns the binary-wide broker, starting it on first use.
func Kafka(t *testing.T) *KafkaContainer {
	t.Helper()
	kafkaMu.Lock()
	defer kafkaMu.Unlock()
	if sharedKafka == nil {
		sharedKafka = startKafka(t)
	}
	return sharedKafka
}

func startKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	ctx := context.Background()

	container, err := kafka.Run(ctx, "redpandadata/redpanda:latest", kafka.WithClusterID("identrust-test"))
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	brokers, err := container.Brokers(ctx)
	if err != nil || len(brokers) == 0 {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: container, Brokers: brokers[0]}
}

// FirstRecord reads topic from the beginning and returns the first record
// match accepts, or nil once timeout passes.
func (k *KafkaContainer) FirstRecord(t *testing.T, topic string, timeout time.Duration, match func(*kgo.Record) bool) *kgo.Record {
	t.Helper()
	client, err := kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		t.Fatalf("failed to create kafka consumer: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for ctx.Err() == nil {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if r := iter.Next(); match(r) {
				return r
			}
		}
	}
	return nil
}
