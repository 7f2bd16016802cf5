// Package services отправляет письма из очереди notifications.email через SMTP.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/smtp"
	"github.com/magabrotheeeer/audio-library/internal/metrics"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

type SenderService struct {
	transport smtp.TransportInterface
	fromName  string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, fromName string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		fromName:  fromName,
		log:       log,
	}
}

// Handle обрабатывает тело сообщения из очереди. Ошибка приводит к повтору доставки.
func (s *SenderService) Handle(body []byte) error {
	const op = "sender.Handle"
	var task models.EmailTask
	if err := json.Unmarshal(body, &task); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if task.To == "" {
		return fmt.Errorf("%s: empty recipient for %q email", op, task.Kind)
	}

	subject, text, err := render(task)
	if err != nil {
		metrics.Emails.WithLabelValues(task.Kind, metrics.ResultFailed).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.sendEmail([]string{task.To}, subject, text); err != nil {
		metrics.Emails.WithLabelValues(task.Kind, metrics.ResultFailed).Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.Emails.WithLabelValues(task.Kind, metrics.ResultSent).Inc()
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	fromHeader := from
	if s.fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.fromName), from)
	}
	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
