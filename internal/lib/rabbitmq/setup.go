package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Имена обменника, очередей и ключей маршрутизации почтовых задач.
const (
	Exchange            = "notifications"
	EmailQueue          = "notifications.email"
	EmailRoutingKey     = "email"
	EmailRetryQueue     = "notifications.email.retry"
	EmailRetryRouting   = "email.retry"
	RetryCountHeader    = "x-retry-count"
	prefetchCount       = 10
	exchangeKindDefault = "direct"
)

// QueueConfig описывает очередь и её привязку к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
	Args       amqp.Table
}

// EmailQueues возвращает основную очередь писем и очередь задержки.
// Сообщения из очереди задержки по истечении retryDelay возвращаются
// в обменник с ключом основной очереди.
func EmailQueues(retryDelay time.Duration) []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
		{
			QueueName:  EmailRetryQueue,
			RoutingKey: EmailRetryRouting,
			Args: amqp.Table{
				"x-message-ttl":             retryDelay.Milliseconds(),
				"x-dead-letter-exchange":    Exchange,
				"x-dead-letter-routing-key": EmailRoutingKey,
			},
		},
	}
}

// SetupChannel открывает канал, объявляет обменник и очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		exchangeKindDefault,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			q.Args,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
