package dto

// ── Application (slot ledger) DTOs ──

// SlotResponse is a reservation crossing the boundary.
type SlotResponse struct {
	SlotID     string `json:"slot_id"`
	EventID    string `json:"event_id"`
	TopicID    string `json:"topic_id"`
	TopicTitle string `json:"topic_title,omitempty"`
	Applicant  string `json:"applicant,omitempty"` // applicant email, empty while the slot is open
}
