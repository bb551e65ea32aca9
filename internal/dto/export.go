package dto

// ── Export DTOs ──

// ExportFilter selects the time window of an attendance export.
type ExportFilter string

const (
	// ExportClosedRecently selects events whose logout window has closed and
	// whose lab time is no older than two days.
	ExportClosedRecently ExportFilter = "closed_recently"
	// ExportHistoryWindow selects events with a lab time within the last 30 weeks.
	ExportHistoryWindow ExportFilter = "history_window"
)

// ExportRecord is one flat attendance row. Applicant fields are empty strings
// while the slot is open.
type ExportRecord struct {
	LabTime     string `json:"lab_time"`     // official format
	CloseLogin  string `json:"close_login"`  // official format
	CloseLogout string `json:"close_logout"` // official format
	TopicTitle  string `json:"topic_title"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
}
