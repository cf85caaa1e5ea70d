package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
)

const (
	AuditExchange   = "keys.audit"
	AuditRoutingKey = "keys.access"
	AuditQueue      = "keys.audit.q"
)

// DeclareAuditTopology sets up the exchange, the archive queue, and the
// binding. Both the publisher and the keyaudit worker call it, so either
// side can come up first.
func DeclareAuditTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		AuditExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		AuditQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(
		q.Name,
		AuditRoutingKey,
		AuditExchange,
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}

// AuditPublisher ships access events to the keys.audit exchange. It is an
// audit.Sink: a publish failure is reported to the caller but the lookup it
// shadows already completed.
type AuditPublisher struct {
	ch *amqp.Channel
}

// NewAuditPublisher declares the topology and enables publisher confirms.
func NewAuditPublisher(ch *amqp.Channel) (*AuditPublisher, error) {
	if err := DeclareAuditTopology(ch); err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &AuditPublisher{ch: ch}, nil
}

func (p *AuditPublisher) Record(ctx context.Context, ev audit.AccessEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal access event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		MessageId:    ev.ID,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		AuditExchange,
		AuditRoutingKey,
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish access event: %w", err)
	}

	return nil
}

var _ audit.Sink = (*AuditPublisher)(nil)
