package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pepab0t/labs/internal/model"
)

// EventRepository is the lab event data access interface.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// GetByIDForUpdate locks the event row with SELECT ... FOR UPDATE so that
	// concurrent apply calls serialize on it. Must run on a transaction
	// obtained through Repository.WithTx.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	// ListUpcomingForUser returns future events in which the user holds an
	// occupied slot, ordered by lab time ascending.
	ListUpcomingForUser(ctx context.Context, userID string, now time.Time) ([]model.Event, error)
	// ListClosedSince returns events whose logout window closed no later than
	// now and whose lab time is at or after the cutoff, lab time ascending.
	ListClosedSince(ctx context.Context, cutoff, now time.Time) ([]model.Event, error)
	// ListBetween returns events with lab time within [from, to], lab time ascending.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo creates an EventRepository instance.
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.Event{}).Error
}

func (r *eventRepo) ListUpcomingForUser(ctx context.Context, userID string, now time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN lab_slots ON lab_slots.event_id = lab_events.event_id").
		Where("lab_slots.applicant_id = ? AND lab_events.lab_time >= ?", userID, now).
		Order("lab_events.lab_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) ListClosedSince(ctx context.Context, cutoff, now time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("lab_time >= ? AND close_logout <= ?", cutoff, now).
		Order("lab_time ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("lab_time >= ? AND lab_time <= ?", from, to).
		Order("lab_time ASC").
		Find(&events).Error
	return events, err
}
