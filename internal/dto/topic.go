package dto

// ── Topic DTOs ──

// CreateTopicRequest creates a new lab topic.
type CreateTopicRequest struct {
	Title string `json:"title" binding:"required"`
}

// RenameTopicRequest changes a topic title.
type RenameTopicRequest struct {
	Title string `json:"title" binding:"required"`
}

// TopicResponse is a topic crossing the boundary.
type TopicResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedBy string `json:"created_by,omitempty"` // creator email, empty when the creator was removed
}
