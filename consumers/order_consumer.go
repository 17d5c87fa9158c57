package consumers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"cafe-backend/config"
	"cafe-backend/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderConsumer drives kitchen-side handling of order events published by
// the HTTP handlers.
type OrderConsumer struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewOrderConsumer(db *sql.DB, logger *slog.Logger) *OrderConsumer {
	return &OrderConsumer{db: db, logger: logger}
}

// Start registers consumers for the order queue and the dead-letter queue.
func (oc *OrderConsumer) Start(ch *amqp.Channel, cfg *config.Config) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"cafe-backend", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			oc.processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"cafe-backend-dlq",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		oc.logger.Error("failed to register dead-letter consumer", "error", err)
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			oc.processDeadLetterMessage(msg)
		}
	}()

	return nil
}

func (oc *OrderConsumer) processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			oc.logger.Error("recovered from panic in message processing", "panic", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		oc.logger.Error("invalid event payload", "error", err)
		_ = msg.Nack(false, false) // to the dead-letter queue
		return
	}

	switch event.Type {
	case "created":
		oc.handleOrderCreated(event)
	case "status_updated":
		oc.handleStatusUpdated(event)
	case "prep_check":
		oc.handlePrepCheck(event)
	default:
		oc.logger.Warn("unknown event type", "type", event.Type, "order_no", event.OrderNo)
	}

	_ = msg.Ack(false)
}

func (oc *OrderConsumer) processDeadLetterMessage(msg amqp.Delivery) {
	oc.logger.Warn("dead letter received", "body", string(msg.Body))
	_ = msg.Ack(false)
}

func (oc *OrderConsumer) handleOrderCreated(event models.OrderEvent) {
	oc.logger.Info("kitchen ticket",
		"order_no", event.OrderNo,
		"total", event.Total,
		"placed_at", event.Occurred,
	)
}

func (oc *OrderConsumer) handleStatusUpdated(event models.OrderEvent) {
	var status string
	err := oc.db.QueryRow("SELECT status FROM orders WHERE id = ?", event.OrderNo).Scan(&status)
	if err != nil {
		oc.logger.Error("failed to read order status", "error", err, "order_no", event.OrderNo)
		return
	}

	oc.logger.Info("order status changed", "order_no", event.OrderNo, "status", status)
}

// handlePrepCheck fires after the prep window: an order still Pending by
// then has not been picked up by the kitchen and gets flagged.
func (oc *OrderConsumer) handlePrepCheck(event models.OrderEvent) {
	var status string
	err := oc.db.QueryRow("SELECT status FROM orders WHERE id = ?", event.OrderNo).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		oc.logger.Error("failed to read order status", "error", err, "order_no", event.OrderNo)
		return
	}

	if status == models.StatusPending {
		oc.logger.Warn("order still pending after prep window", "order_no", event.OrderNo)
	}
}
