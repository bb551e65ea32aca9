package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a portal account — maps to users.
//
// Accounts start unapproved; staff either approves them or cancels them.
// Both transitions are terminal.
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey"       json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FullName     string `gorm:"type:varchar(100);not null" json:"full_name"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Approved     bool   `gorm:"not null;default:false"     json:"approved"`
	Cancelled    bool   `gorm:"not null;default:false"     json:"cancelled"`
	IsStaff      bool   `gorm:"not null;default:false"     json:"is_staff"`
	BaseModel
}

// TableName sets the table name.
func (User) TableName() string { return "users" }

// BeforeCreate assigns the primary key.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}
