package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// confirmTimeout максимальное время ожидания подтверждения от брокера
const confirmTimeout = 10 * time.Second

// PublishOptions параметры публикации одного сообщения
type PublishOptions struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Headers    amqp091.Table
}

// PublishOption функция для настройки параметров публикации
type PublishOption func(*PublishOptions)

// WithExchange переопределяет exchange из конфигурации
func WithExchange(exchange string) PublishOption {
	return func(opts *PublishOptions) {
		opts.Exchange = exchange
	}
}

// WithRoutingKey переопределяет routing key из конфигурации
func WithRoutingKey(routingKey string) PublishOption {
	return func(opts *PublishOptions) {
		opts.RoutingKey = routingKey
	}
}

// WithMandatory требует маршрутизации сообщения хотя бы в одну очередь
func WithMandatory(mandatory bool) PublishOption {
	return func(opts *PublishOptions) {
		opts.Mandatory = mandatory
	}
}

// WithHeaders добавляет заголовки к сообщению
func WithHeaders(headers amqp091.Table) PublishOption {
	return func(opts *PublishOptions) {
		opts.Headers = headers
	}
}

// Producer публикует события жизненного цикла пользователей в RabbitMQ.
// Каждое сообщение отправляется в confirm mode: Publish возвращается
// только после ack брокера, чтобы событие не потерялось молча.
type Producer struct {
	conn   *Connection
	config *Config
}

// NewProducer создает нового продюсера
func NewProducer(conn *Connection, config *Config) *Producer {
	return &Producer{conn: conn, config: config}
}

// Publish отправляет сообщение и ожидает подтверждения брокера
func (p *Producer) Publish(ctx context.Context, body []byte, options ...PublishOption) error {
	opts := &PublishOptions{
		Exchange:   p.config.Exchange,
		RoutingKey: p.config.RoutingKey,
	}
	for _, option := range options {
		option(opts)
	}

	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel is not initialized")
	}

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp091.Confirmation, 1))

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      opts.Headers,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		opts.Exchange,
		opts.RoutingKey,
		opts.Mandatory,
		false,
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	// Ожидаем подтверждение
	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message %s rejected by broker", msg.MessageId)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for confirmation: %w", ctx.Err())
	case <-time.After(confirmTimeout):
		return fmt.Errorf("timeout waiting for broker confirmation")
	}
}

// PublishWithRetry повторяет публикацию при сбоях с фиксированным интервалом
func (p *Producer) PublishWithRetry(ctx context.Context, body []byte, maxRetries int, retryInterval time.Duration, options ...PublishOption) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if lastErr = p.Publish(ctx, body, options...); lastErr == nil {
			return nil
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(retryInterval):
			}
		}
	}

	return fmt.Errorf("failed to publish message after %d retries: %w", maxRetries, lastErr)
}
