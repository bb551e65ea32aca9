package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is one reservation unit for an (event, topic) pair — maps to lab_slots.
//
// A slot is Open while ApplicantID is NULL and Occupied once a student claims
// it. One slot row exists for every topic bound to an event, occupied or not.
// (event_id, topic_id) is unique; a partial unique index on
// (event_id, applicant_id) keeps a student on at most one slot per event.
type Slot struct {
	SlotID      string  `gorm:"type:uuid;primaryKey"                                json:"slot_id"`
	EventID     string  `gorm:"type:uuid;not null;uniqueIndex:uq_lab_slots_event_topic" json:"event_id"`
	TopicID     string  `gorm:"type:uuid;not null;uniqueIndex:uq_lab_slots_event_topic" json:"topic_id"`
	ApplicantID *string `gorm:"type:uuid;index"                                     json:"applicant_id,omitempty"`
	BaseModel

	Event     *Event `gorm:"foreignKey:EventID;references:EventID"     json:"event,omitempty"`
	Topic     *Topic `gorm:"foreignKey:TopicID;references:TopicID"     json:"topic,omitempty"`
	Applicant *User  `gorm:"foreignKey:ApplicantID;references:UserID"  json:"applicant,omitempty"`
}

// TableName sets the table name.
func (Slot) TableName() string { return "lab_slots" }

// BeforeCreate assigns the primary key.
func (s *Slot) BeforeCreate(_ *gorm.DB) error {
	if s.SlotID == "" {
		s.SlotID = uuid.NewString()
	}
	return nil
}

// Occupied reports whether an applicant holds the slot.
func (s *Slot) Occupied() bool { return s.ApplicantID != nil }
