package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a scheduled lab session — maps to lab_events.
//
// CloseLogin and CloseLogout bound the windows during which students may
// apply for and withdraw from the event; both must not be after LabTime.
type Event struct {
	EventID     string    `gorm:"type:uuid;primaryKey" json:"event_id"`
	LabTime     time.Time `gorm:"not null;index"       json:"lab_time"`
	CloseLogin  time.Time `gorm:"not null"             json:"close_login"`
	CloseLogout time.Time `gorm:"not null"             json:"close_logout"`
	Capacity    int       `gorm:"not null"             json:"capacity"`
	CreatedByID *string   `gorm:"type:uuid"            json:"created_by_id,omitempty"`
	BaseModel

	CreatedBy *User  `gorm:"foreignKey:CreatedByID;references:UserID" json:"created_by,omitempty"`
	Slots     []Slot `gorm:"foreignKey:EventID;references:EventID"    json:"slots,omitempty"`
}

// TableName sets the table name.
func (Event) TableName() string { return "lab_events" }

// BeforeCreate assigns the primary key.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	return nil
}
