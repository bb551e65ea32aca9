package dto

import "time"

// ── Event DTOs ──

// CreateEventRequest creates a lab event and seeds one open slot per topic.
type CreateEventRequest struct {
	LabTime     time.Time `json:"lab_time"     binding:"required"`
	CloseLogin  time.Time `json:"close_login"  binding:"required"`
	CloseLogout time.Time `json:"close_logout" binding:"required"`
	Capacity    int       `json:"capacity"     binding:"required,min=1,max=1000"`
	TopicIDs    []string  `json:"topic_ids"    binding:"required"`
}

// EventResponse is an event summary for a particular viewer.
type EventResponse struct {
	ID          string `json:"id"`
	LabTime     string `json:"lab_date"`     // display format
	CloseLogin  string `json:"close_login"`  // display format
	CloseLogout string `json:"close_logout"` // display format
	Capacity    int    `json:"capacity"`
	NumTopics   int    `json:"num_topics"`
	NumUsers    int    `json:"num_users"`
	Applied     bool   `json:"applied"` // viewer holds a slot in this event
	Full        bool   `json:"full"`
}
