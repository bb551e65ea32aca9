package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pepab0t/labs/internal/model"
	pkgerrors "github.com/pepab0t/labs/pkg/errors"
)

// SlotRepository is the reservation ledger data access interface.
//
// Claim and Release are conditional updates checked through RowsAffected, so
// the Open -> Occupied transition stays atomic even under concurrent callers.
type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []model.Slot) error
	// ListByEvent returns all slots of an event with topic and applicant loaded.
	ListByEvent(ctx context.Context, eventID string) ([]model.Slot, error)
	// ListFreeByEvent returns the open slots of an event with topic loaded.
	ListFreeByEvent(ctx context.Context, eventID string) ([]model.Slot, error)
	CountOccupied(ctx context.Context, eventID string) (int64, error)
	// GetUserSlot returns the slot the user occupies in the event.
	GetUserSlot(ctx context.Context, eventID, userID string) (*model.Slot, error)
	// CountUserFutureEvents counts future events in which the user occupies a slot.
	CountUserFutureEvents(ctx context.Context, userID string, now time.Time) (int64, error)
	// Claim sets the applicant on an open slot. Returns gorm.ErrRecordNotFound
	// when the (event, topic) slot does not exist and pkgerrors.ErrSlotOccupied
	// when another applicant holds it.
	Claim(ctx context.Context, eventID, topicID, userID string) (*model.Slot, error)
	// Release clears the applicant of the user's slot in the event. Returns
	// pkgerrors.ErrNoActiveSlot when the user occupies none.
	Release(ctx context.Context, eventID, userID string) error
	DeleteByEvent(ctx context.Context, eventID string) error
	DeleteByTopic(ctx context.Context, topicID string) error
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo creates a SlotRepository instance.
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) CreateBatch(ctx context.Context, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *slotRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("Applicant").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ListFreeByEvent(ctx context.Context, eventID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("event_id = ? AND applicant_id IS NULL", eventID).
		Order("created_at ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) CountOccupied(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("event_id = ? AND applicant_id IS NOT NULL", eventID).
		Count(&count).Error
	return count, err
}

func (r *slotRepo) GetUserSlot(ctx context.Context, eventID, userID string) (*model.Slot, error) {
	var slot model.Slot
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("event_id = ? AND applicant_id = ?", eventID, userID).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) CountUserFutureEvents(ctx context.Context, userID string, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Joins("JOIN lab_events ON lab_events.event_id = lab_slots.event_id").
		Where("lab_slots.applicant_id = ? AND lab_events.lab_time >= ?", userID, now).
		Count(&count).Error
	return count, err
}

func (r *slotRepo) Claim(ctx context.Context, eventID, topicID, userID string) (*model.Slot, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("event_id = ? AND topic_id = ? AND applicant_id IS NULL", eventID, topicID).
		Update("applicant_id", userID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the slot does not exist or someone else holds it; look
		// again to tell the two apart.
		var slot model.Slot
		err := r.db.WithContext(ctx).
			Where("event_id = ? AND topic_id = ?", eventID, topicID).
			First(&slot).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, gorm.ErrRecordNotFound
			}
			return nil, err
		}
		return nil, pkgerrors.ErrSlotOccupied
	}

	var slot model.Slot
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("Applicant").
		Where("event_id = ? AND topic_id = ?", eventID, topicID).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) Release(ctx context.Context, eventID, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("event_id = ? AND applicant_id = ?", eventID, userID).
		Update("applicant_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoActiveSlot
	}
	return nil
}

func (r *slotRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&model.Slot{}).Error
}

func (r *slotRepo) DeleteByTopic(ctx context.Context, topicID string) error {
	return r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Delete(&model.Slot{}).Error
}
