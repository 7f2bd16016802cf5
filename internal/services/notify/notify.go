// Package services публикует задачи на отправку писем в RabbitMQ.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/audio-library/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Notifier публикует models.EmailTask в exchange notifications.
type Notifier struct {
	ch  rabbitmq.Publisher
	log *slog.Logger
}

// New создает Notifier поверх канала RabbitMQ.
func New(ch rabbitmq.Publisher, log *slog.Logger) *Notifier {
	return &Notifier{
		ch:  ch,
		log: log,
	}
}

// Send публикует задачу. Ответ на HTTP-запрос отправку письма не ждёт.
func (n *Notifier) Send(ctx context.Context, task models.EmailTask) error {
	const op = "notify.Send"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rabbitmq.PublishMessage(n.ch, rabbitmq.Exchange, rabbitmq.EmailRoutingKey, task); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.log.Debug("email task published", slog.String("kind", task.Kind))
	return nil
}
