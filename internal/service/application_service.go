package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
	pkgerrors "github.com/pepab0t/labs/pkg/errors"
)

// ── Application module errors ──

var (
	ErrLoginWindowClosed  = errors.New("time to apply has expired")
	ErrLogoutWindowClosed = errors.New("time to withdraw has expired")
	ErrEventFull          = errors.New("event is at capacity")
	ErrSlotNotFound       = errors.New("no slot exists for this event and topic")
	ErrSlotTaken          = errors.New("topic is already taken by another student")
	ErrAlreadyApplied     = errors.New("user already holds a topic in this event")
	ErrQuotaExceeded      = errors.New("user reached the maximum number of upcoming labs")
	ErrNoActiveSlot       = errors.New("user holds no topic in this event")
)

// ApplicationService drives the reservation ledger: claiming and releasing
// (event, topic) slots under the deadline, capacity and quota gates.
type ApplicationService interface {
	// Apply claims the open slot for (event, topic) on behalf of the user.
	// Gate order: login window, capacity, one slot per event, quota, then an
	// atomic claim of the slot itself. Changing topic within an event is not
	// supported; withdraw first, then apply again.
	Apply(ctx context.Context, userID, eventID, topicID string) (*dto.SlotResponse, error)
	// Withdraw releases the user's slot in the event while the logout window
	// is open.
	Withdraw(ctx context.Context, userID, eventID string) error
	// StaffRemove releases the user's slot regardless of any deadline.
	StaffRemove(ctx context.Context, eventID, userID string) error
	// CanApply reports whether the user is below the future-event quota.
	// Derived from the ledger on every call; there is no separate counter.
	CanApply(ctx context.Context, userID string) (bool, error)
}

type applicationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewApplicationService creates an ApplicationService instance.
func NewApplicationService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ApplicationService {
	return &applicationService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Apply ──────────────────────

// Apply runs inside a single transaction. The event row is locked with
// SELECT ... FOR UPDATE so concurrent applications for the same event
// serialize on the capacity and quota checks, and the claim itself is a
// conditional UPDATE ... WHERE applicant_id IS NULL, so two racers for the
// same topic cannot both win even without the event lock.
func (s *applicationService) Apply(ctx context.Context, userID, eventID, topicID string) (*dto.SlotResponse, error) {
	var slot *model.Slot

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		event, err := txRepo.Event.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		now := time.Now()
		if now.After(event.CloseLogin) {
			return ErrLoginWindowClosed
		}

		occupied, err := txRepo.Slot.CountOccupied(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count occupied slots: %w", err)
		}
		if int(occupied) >= event.Capacity {
			return ErrEventFull
		}

		if _, err := txRepo.Slot.GetUserSlot(ctx, eventID, userID); err == nil {
			return ErrAlreadyApplied
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load user slot: %w", err)
		}

		futureCount, err := txRepo.Slot.CountUserFutureEvents(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("count user future events: %w", err)
		}
		if int(futureCount) >= s.cfg.Labs.MaxUserApplies {
			return ErrQuotaExceeded
		}

		slot, err = txRepo.Slot.Claim(ctx, eventID, topicID, userID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return ErrSlotNotFound
			case errors.Is(err, pkgerrors.ErrSlotOccupied):
				return ErrSlotTaken
			}
			return fmt.Errorf("claim slot: %w", err)
		}
		return nil
	})
	if err != nil {
		if isApplicationError(err) {
			return nil, err
		}
		s.logger.Error("apply failed",
			zap.String("event_id", eventID),
			zap.String("topic_id", topicID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("slot claimed",
		zap.String("event_id", eventID),
		zap.String("topic_id", topicID),
		zap.String("user_id", userID),
	)
	return s.toSlotResponse(slot), nil
}

// ────────────────────── Withdraw ──────────────────────

func (s *applicationService) Withdraw(ctx context.Context, userID, eventID string) error {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	if time.Now().After(event.CloseLogout) {
		return ErrLogoutWindowClosed
	}

	if err := s.repo.Slot.Release(ctx, eventID, userID); err != nil {
		if errors.Is(err, pkgerrors.ErrNoActiveSlot) {
			return ErrNoActiveSlot
		}
		s.logger.Error("release slot failed", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	s.logger.Info("slot released",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
	)
	return nil
}

// ────────────────────── StaffRemove ──────────────────────

func (s *applicationService) StaffRemove(ctx context.Context, eventID, userID string) error {
	if _, err := s.repo.Event.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	if err := s.repo.Slot.Release(ctx, eventID, userID); err != nil {
		if errors.Is(err, pkgerrors.ErrNoActiveSlot) {
			return ErrNoActiveSlot
		}
		s.logger.Error("release slot failed", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	s.logger.Info("slot released by staff",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
	)
	return nil
}

// ────────────────────── CanApply ──────────────────────

func (s *applicationService) CanApply(ctx context.Context, userID string) (bool, error) {
	count, err := s.repo.Slot.CountUserFutureEvents(ctx, userID, time.Now())
	if err != nil {
		s.logger.Error("count user future events failed", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return int(count) < s.cfg.Labs.MaxUserApplies, nil
}

// ── internal helpers ──

// isApplicationError reports whether err is one of the expected gate failures
// (as opposed to a store failure worth logging).
func isApplicationError(err error) bool {
	for _, sentinel := range []error{
		ErrEventNotFound,
		ErrLoginWindowClosed,
		ErrEventFull,
		ErrAlreadyApplied,
		ErrQuotaExceeded,
		ErrSlotNotFound,
		ErrSlotTaken,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (s *applicationService) toSlotResponse(slot *model.Slot) *dto.SlotResponse {
	resp := &dto.SlotResponse{
		SlotID:  slot.SlotID,
		EventID: slot.EventID,
		TopicID: slot.TopicID,
	}
	if slot.Topic != nil {
		resp.TopicTitle = slot.Topic.Title
	}
	if slot.Applicant != nil {
		resp.Applicant = slot.Applicant.Email
	}
	return resp
}
