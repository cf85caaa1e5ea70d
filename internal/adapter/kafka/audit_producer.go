package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
)

// AuditProducer ships access events to a Kafka topic. Sync sends: Record
// returns once the broker acked, so the keyserver's best-effort emit sees
// real delivery failures.
type AuditProducer struct {
	p     sarama.SyncProducer
	topic string
}

func NewAuditProducer(brokers []string, topic string) (*AuditProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true // required by SyncProducer
	cfg.Producer.Timeout = 5 * time.Second
	cfg.Net.DialTimeout = 5 * time.Second

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &AuditProducer{p: p, topic: topic}, nil
}

func (a *AuditProducer) Record(_ context.Context, ev audit.AccessEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal access event: %w", err)
	}

	// keyed by service so one service's events stay ordered per partition
	_, _, err = a.p.SendMessage(&sarama.ProducerMessage{
		Topic: a.topic,
		Key:   sarama.StringEncoder(ev.Service),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("send access event: %w", err)
	}
	return nil
}

func (a *AuditProducer) Close() error { return a.p.Close() }

var _ audit.Sink = (*AuditProducer)(nil)
