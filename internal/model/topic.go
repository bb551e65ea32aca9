package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Topic is a lab subject a student can select within an event — maps to lab_topics.
type Topic struct {
	TopicID     string  `gorm:"type:uuid;primaryKey"   json:"topic_id"`
	Title       string  `gorm:"type:text;not null;uniqueIndex" json:"title"`
	CreatedByID *string `gorm:"type:uuid"              json:"created_by_id,omitempty"` // NULL after the creator is removed
	BaseModel

	CreatedBy *User `gorm:"foreignKey:CreatedByID;references:UserID" json:"created_by,omitempty"`
}

// TableName sets the table name.
func (Topic) TableName() string { return "lab_topics" }

// BeforeCreate assigns the primary key.
func (t *Topic) BeforeCreate(_ *gorm.DB) error {
	if t.TopicID == "" {
		t.TopicID = uuid.NewString()
	}
	return nil
}
