// Package services еженедельная рассылка новостей подписанным пользователям.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// RecipientRepository выбирает получателей рассылки.
type RecipientRepository interface {
	ListNewsletterRecipients(ctx context.Context) ([]*models.User, error)
}

// Notifier публикует задачу на отправку письма.
type Notifier interface {
	Send(ctx context.Context, task models.EmailTask) error
}

// Slot фиксированное время рассылки внутри недели.
type Slot struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseSlot разбирает день недели ("thursday"), время ("14:20") и часовой пояс.
func ParseSlot(cfg config.Newsletter) (Slot, error) {
	const op = "scheduler.ParseSlot"

	weekday := -1
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(cfg.Weekday)) {
			weekday = int(d)
			break
		}
	}
	if weekday < 0 {
		return Slot{}, fmt.Errorf("%s: unknown weekday %q", op, cfg.Weekday)
	}

	at, err := time.Parse("15:04", strings.TrimSpace(cfg.At))
	if err != nil {
		return Slot{}, fmt.Errorf("%s: %w", op, err)
	}

	loc := time.UTC
	if cfg.Location != "" {
		loc, err = time.LoadLocation(cfg.Location)
		if err != nil {
			return Slot{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return Slot{Weekday: time.Weekday(weekday), Hour: at.Hour(), Minute: at.Minute(), Location: loc}, nil
}

// Next возвращает ближайшее время рассылки строго после after.
func (s Slot) Next(after time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, loc)
	next = next.AddDate(0, 0, (int(s.Weekday)-int(next.Weekday())+7)%7)
	if !next.After(local) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// SchedulerService раз в неделю в заданный слот ставит письмо рассылки
// каждому подписанному активному пользователю.
type SchedulerService struct {
	repo     RecipientRepository
	notifier Notifier
	slot     Slot
	siteName string
	now      func() time.Time
	log      *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo RecipientRepository, notifier Notifier, slot Slot, siteName string,
	log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		notifier: notifier,
		slot:     slot,
		siteName: siteName,
		now:      time.Now,
		log:      log,
	}
}

// SendNewsletter ждёт ближайший слот, отправляет рассылку и повторяет до отмены ctx.
// Перезапуск процесса не вызывает внеочередной рассылки.
func (s *SchedulerService) SendNewsletter(ctx context.Context) {
	for {
		now := s.now()
		next := s.slot.Next(now)
		s.log.Info("next newsletter broadcast scheduled", slog.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			s.runSendNewsletter(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// runSendNewsletter возвращает число опубликованных задач.
func (s *SchedulerService) runSendNewsletter(ctx context.Context) int {
	s.log.Info("starting newsletter broadcast")
	users, err := s.repo.ListNewsletterRecipients(ctx)
	if err != nil {
		s.log.Error("failed to find newsletter recipients", sl.Err(err))
		return 0
	}
	if len(users) == 0 {
		s.log.Info("no newsletter recipients found")
		return 0
	}
	s.log.Info("found newsletter recipients", "count", len(users))

	published := 0
	for _, user := range users {
		err = s.notifier.Send(ctx, models.EmailTask{
			Kind: models.EmailNewsletter,
			To:   user.Email,
			Context: map[string]string{
				"site_name":  s.siteName,
				"first_name": user.FirstName,
			},
		})
		if err != nil {
			s.log.Error("failed to publish newsletter task", sl.ID("user_id", user.ID), sl.Err(err))
			continue
		}
		published++
	}
	return published
}
