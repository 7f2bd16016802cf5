package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
)

// Channel подмножество методов *amqp.Channel, нужное потребителю.
type Channel interface {
	Publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// RetryPolicy задаёт повторы обработки упавших сообщений.
// Сообщение публикуется в RetryRoutingKey с увеличенным заголовком
// x-retry-count, пока счётчик меньше MaxRetries.
type RetryPolicy struct {
	MaxRetries      int
	RetryRoutingKey string
}

// ConsumerMessage запускает обработку сообщений очереди в фоне и возвращает
// функцию ожидания завершения обработчиков. Сообщение подтверждается всегда:
// при ошибке оно либо уходит в очередь задержки, либо отбрасывается с записью в лог.
func ConsumerMessage(
	ctx context.Context,
	ch Channel,
	queueName string,
	policy RetryPolicy,
	handler func([]byte) error,
	log *slog.Logger,
) (func(), error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	var wg sync.WaitGroup
	sem := make(chan struct{}, prefetchCount)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer func() {
						<-sem
						wg.Done()
					}()
					process(ch, d, policy, handler, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()

	wait := func() {
		<-done
		wg.Wait()
	}
	return wait, nil
}

func process(ch Publisher, d amqp.Delivery, policy RetryPolicy, handler func([]byte) error, log *slog.Logger) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	attempt := RetryCount(d.Headers)
	if attempt < policy.MaxRetries {
		headers := amqp.Table{RetryCountHeader: int32(attempt + 1)}
		if pubErr := publish(ch, Exchange, policy.RetryRoutingKey, d.Body, headers); pubErr != nil {
			log.Error("failed to schedule retry, requeue message", sl.Err(pubErr))
			if nackErr := d.Nack(false, true); nackErr != nil {
				log.Error("failed to nack message", sl.Err(nackErr))
			}
			return
		}
		log.Warn("message handling failed, retry scheduled",
			sl.Err(err), slog.Int("attempt", attempt+1), slog.Int("max_retries", policy.MaxRetries))
	} else {
		log.Error("message handling failed permanently", sl.Err(err), slog.Int("attempts", attempt+1))
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}

// RetryCount читает счётчик повторов из заголовков сообщения.
func RetryCount(headers amqp.Table) int {
	switch v := headers[RetryCountHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	default:
		return 0
	}
}
