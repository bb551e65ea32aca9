package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pepab0t/labs/pkg/timefmt"
)

// lab sessions carry no stored duration; block out two hours in the feed
const calendarEventLength = 2 * time.Hour

// ────────────────────── UserCalendar ──────────────────────

// UserCalendar builds an iCalendar feed of the user's upcoming labs so
// students can subscribe from their calendar clients.
func (s *exportService) UserCalendar(ctx context.Context, userID string) (string, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	events, err := s.repo.Event.ListUpcomingForUser(ctx, userID, time.Now())
	if err != nil {
		s.logger.Error("list upcoming events failed", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for i := range events {
		event := &events[i]

		summary := "Laboratoř"
		if slot, err := s.repo.Slot.GetUserSlot(ctx, event.EventID, userID); err == nil && slot.Topic != nil {
			summary = slot.Topic.Title
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("load user slot failed", zap.String("event_id", event.EventID), zap.Error(err))
			return "", err
		}

		ve := cal.AddEvent(fmt.Sprintf("%s/%s", event.EventID, userID))
		ve.SetDtStampTime(time.Now())
		ve.SetStartAt(event.LabTime)
		ve.SetEndAt(event.LabTime.Add(calendarEventLength))
		ve.SetSummary(summary)
		ve.SetDescription(fmt.Sprintf(
			"uzávěr přihlášení: %s, uzávěr odhlášení: %s",
			timefmt.Display(event.CloseLogin),
			timefmt.Display(event.CloseLogout),
		))
	}

	return cal.Serialize(), nil
}
