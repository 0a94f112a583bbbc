package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AuthUserService/internal/domain"
	"AuthUserService/pkg/logger"
	"AuthUserService/pkg/rabbitmq"
)

// Routing keys для событий пользователей
const (
	UserRegisteredKey = "user.registered"
	UserDeletedKey    = "user.deleted"
)

// UserEvent сообщение о событии жизненного цикла пользователя.
// Публикуется в RabbitMQ для подписчиков (уведомления, аудит).
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int       `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Producer интерфейс публикации событий пользователей
type Producer interface {
	UserRegistered(ctx context.Context, user *domain.User) error
	UserDeleted(ctx context.Context, user *domain.User) error
}

// RabbitProducer реализация Producer поверх RabbitMQ
type RabbitProducer struct {
	producer *rabbitmq.Producer
	logger   logger.Logger
}

// NewRabbitProducer создает нового продюсера событий пользователей
func NewRabbitProducer(producer *rabbitmq.Producer, logger logger.Logger) *RabbitProducer {
	return &RabbitProducer{producer: producer, logger: logger}
}

// UserRegistered публикует событие о регистрации нового пользователя
func (p *RabbitProducer) UserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, UserRegisteredKey, user)
}

// UserDeleted публикует событие об удалении пользователя
func (p *RabbitProducer) UserDeleted(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, UserDeletedKey, user)
}

func (p *RabbitProducer) publish(ctx context.Context, key string, user *domain.User) error {
	event := UserEvent{
		Type:       key,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", key, err)
	}

	if err := p.producer.Publish(ctx, body, rabbitmq.WithRoutingKey(key)); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", key, err)
	}

	p.logger.Debug("published user event",
		logger.String("type", key),
		logger.Int("user_id", user.ID),
	)

	return nil
}

// NopProducer заглушка для окружений без брокера (тесты, локальный запуск)
type NopProducer struct{}

// UserRegistered ничего не делает
func (NopProducer) UserRegistered(_ context.Context, _ *domain.User) error { return nil }

// UserDeleted ничего не делает
func (NopProducer) UserDeleted(_ context.Context, _ *domain.User) error { return nil }
