package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pepab0t/labs/internal/dto"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
	"github.com/pepab0t/labs/pkg/timefmt"
)

// ── Event module errors ──

var (
	ErrEventNotFound        = errors.New("event does not exist")
	ErrMissingDeadline      = errors.New("both deadline dates must be specified")
	ErrDeadlineAfterLabTime = errors.New("deadline cannot be after the lab time")
	ErrLabTimeInPast        = errors.New("lab time cannot be in the past")
	ErrCapacityOutOfRange   = errors.New("capacity must be between 1 and 1000")
)

// capacity bounds of a lab event
const (
	minEventCapacity = 1
	maxEventCapacity = 1000
)

// EventService is the lab event business interface.
//
// Capacity may exceed the number of bound topics; the entity deliberately
// does not enforce a relation between the two.
type EventService interface {
	// Create validates the temporal invariants and seeds one open slot per
	// topic in the same transaction as the event itself.
	Create(ctx context.Context, req *dto.CreateEventRequest, callerID string) (*dto.EventResponse, error)
	// Get returns the event summary as seen by the given viewer.
	Get(ctx context.Context, id, viewerID string) (*dto.EventResponse, error)
	// Delete removes the event and all of its slots.
	Delete(ctx context.Context, id string) error
	// FreeTopics returns the topics whose slot in this event is open.
	FreeTopics(ctx context.Context, eventID string) ([]dto.TopicResponse, error)
	ApplicantCount(ctx context.Context, eventID string) (int, error)
	IsFull(ctx context.Context, eventID string) (bool, error)
	// UpcomingForUser returns future events in which the user occupies a slot,
	// ordered by lab time ascending.
	UpcomingForUser(ctx context.Context, userID string) ([]dto.EventResponse, error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService creates an EventService instance.
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest, callerID string) (*dto.EventResponse, error) {
	if err := validateEventTimes(req.LabTime, req.CloseLogin, req.CloseLogout, time.Now()); err != nil {
		return nil, err
	}
	if req.Capacity < minEventCapacity || req.Capacity > maxEventCapacity {
		return nil, ErrCapacityOutOfRange
	}

	// all bound topics must exist before anything is written
	for _, topicID := range req.TopicIDs {
		if _, err := s.repo.Topic.GetByID(ctx, topicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTopicNotFound
			}
			s.logger.Error("load topic failed", zap.String("id", topicID), zap.Error(err))
			return nil, err
		}
	}

	event := &model.Event{
		LabTime:     req.LabTime,
		CloseLogin:  req.CloseLogin,
		CloseLogout: req.CloseLogout,
		Capacity:    req.Capacity,
		CreatedByID: &callerID,
	}

	// the event and its seeded slots appear together or not at all
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Event.Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		slots := make([]model.Slot, 0, len(req.TopicIDs))
		for _, topicID := range req.TopicIDs {
			slots = append(slots, model.Slot{
				EventID: event.EventID,
				TopicID: topicID,
			})
		}
		if err := txRepo.Slot.CreateBatch(ctx, slots); err != nil {
			return fmt.Errorf("seed event slots: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create event failed", zap.Error(err))
		return nil, err
	}

	return s.toEventResponse(ctx, event, callerID)
}

// ────────────────────── Get ──────────────────────

func (s *eventService) Get(ctx context.Context, id, viewerID string) (*dto.EventResponse, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toEventResponse(ctx, event, viewerID)
}

// ────────────────────── Delete ──────────────────────

func (s *eventService) Delete(ctx context.Context, id string) error {
	if _, err := s.getEvent(ctx, id); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Slot.DeleteByEvent(ctx, id); err != nil {
			return fmt.Errorf("delete event slots: %w", err)
		}
		if err := txRepo.Event.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("delete event failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── FreeTopics ──────────────────────

func (s *eventService) FreeTopics(ctx context.Context, eventID string) ([]dto.TopicResponse, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot.ListFreeByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("list free slots failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	topics := make([]dto.TopicResponse, 0, len(slots))
	for i := range slots {
		if slots[i].Topic == nil {
			continue
		}
		topics = append(topics, dto.TopicResponse{
			ID:    slots[i].Topic.TopicID,
			Title: slots[i].Topic.Title,
		})
	}
	return topics, nil
}

// ────────────────────── ApplicantCount / IsFull ──────────────────────

func (s *eventService) ApplicantCount(ctx context.Context, eventID string) (int, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return 0, err
	}
	count, err := s.repo.Slot.CountOccupied(ctx, eventID)
	if err != nil {
		s.logger.Error("count applicants failed", zap.String("event_id", eventID), zap.Error(err))
		return 0, err
	}
	return int(count), nil
}

func (s *eventService) IsFull(ctx context.Context, eventID string) (bool, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return false, err
	}
	count, err := s.repo.Slot.CountOccupied(ctx, eventID)
	if err != nil {
		return false, err
	}
	return int(count) >= event.Capacity, nil
}

// ────────────────────── UpcomingForUser ──────────────────────

func (s *eventService) UpcomingForUser(ctx context.Context, userID string) ([]dto.EventResponse, error) {
	events, err := s.repo.Event.ListUpcomingForUser(ctx, userID, time.Now())
	if err != nil {
		s.logger.Error("list upcoming events failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp, err := s.toEventResponse(ctx, &events[i], userID)
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// ── internal helpers ──

// validateEventTimes checks the temporal invariants shared by create and update.
func validateEventTimes(labTime, closeLogin, closeLogout, now time.Time) error {
	if labTime.Before(now) {
		return ErrLabTimeInPast
	}
	if closeLogin.IsZero() || closeLogout.IsZero() {
		return ErrMissingDeadline
	}
	if closeLogin.After(labTime) || closeLogout.After(labTime) {
		return ErrDeadlineAfterLabTime
	}
	return nil
}

func (s *eventService) getEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("load event failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return event, nil
}

func (s *eventService) toEventResponse(ctx context.Context, event *model.Event, viewerID string) (*dto.EventResponse, error) {
	slots, err := s.repo.Slot.ListByEvent(ctx, event.EventID)
	if err != nil {
		s.logger.Error("list event slots failed", zap.String("event_id", event.EventID), zap.Error(err))
		return nil, err
	}

	numUsers := 0
	applied := false
	for i := range slots {
		if !slots[i].Occupied() {
			continue
		}
		numUsers++
		if viewerID != "" && *slots[i].ApplicantID == viewerID {
			applied = true
		}
	}

	return &dto.EventResponse{
		ID:          event.EventID,
		LabTime:     timefmt.Display(event.LabTime),
		CloseLogin:  timefmt.Display(event.CloseLogin),
		CloseLogout: timefmt.Display(event.CloseLogout),
		Capacity:    event.Capacity,
		NumTopics:   len(slots),
		NumUsers:    numUsers,
		Applied:     applied,
		Full:        numUsers >= event.Capacity,
	}, nil
}
