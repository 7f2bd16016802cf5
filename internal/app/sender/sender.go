// Package sender собирает приложение, которое отправляет письма из очереди RabbitMQ.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/audio-library/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	policy        rabbitmq.RetryPolicy
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailQueues(cfg.TaskRetryDelay))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(transport, cfg.Site.Name, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		policy: rabbitmq.RetryPolicy{
			MaxRetries:      cfg.TaskRetries,
			RetryRoutingKey: rabbitmq.EmailRetryRouting,
		},
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	wait, err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailQueue, a.policy, a.senderService.Handle, a.logger)
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		return err
	}
	a.logger.Info("sender started", slog.String("queue", rabbitmq.EmailQueue))

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")
	wait()

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
