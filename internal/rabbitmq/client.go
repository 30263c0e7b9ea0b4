package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/config"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Идемпотентно: очередь создаётся, только если её нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	logger.Info("queue declared", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
			return err
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return nil
}

// PublishArtworkEvent реализует ports.ArtworkEventPublisher.
func (c *Client) PublishArtworkEvent(ctx context.Context, event payloads.ArtworkEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	c.logger.Debug("event published", "queue", c.queue.Name, "type", event.Type, "artwork_id", event.ArtworkID)
	return nil
}

// ErrDeliveriesClosed — брокер закрыл канал доставки (разрыв соединения, удаление очереди).
var ErrDeliveriesClosed = errors.New("rabbitmq: канал доставки закрыт")

// StartConsumingArtworkEvents реализует ports.ArtworkEventConsumer.
// Ошибка обработчика возвращает сообщение в очередь, битое сообщение отбрасывается.
func (c *Client) StartConsumingArtworkEvents(ctx context.Context, handler func(context.Context, payloads.ArtworkEvent) error) (<-chan error, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	done := make(chan error, 1)
	go consume(ctx, c.logger, msgs, handler, done)
	return done, nil
}

// consume читает доставки до отмены ctx или закрытия msgs и закрывает done.
func consume(ctx context.Context, logger *slog.Logger, msgs <-chan amqp.Delivery, handler func(context.Context, payloads.ArtworkEvent) error, done chan<- error) {
	defer close(done)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Error("RabbitMQ delivery channel closed, stopping consumer")
				done <- ErrDeliveriesClosed
				return
			}
			handleDelivery(ctx, logger, msg.Body, &msg, handler)
		case <-ctx.Done():
			logger.Info("context cancelled, stopping RabbitMQ consumer")
			return
		}
	}
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler func(context.Context, payloads.ArtworkEvent) error) {
	var event payloads.ArtworkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Error("error unmarshalling message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.Error("error processing message", "error", err, "type", event.Type, "artwork_id", event.ArtworkID)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("error ACKing message", "error", err)
	}
}
