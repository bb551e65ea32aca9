package dto

// ── User DTOs ──

// RegisterUserRequest creates an unapproved portal account.
type RegisterUserRequest struct {
	Email    string `json:"email"     binding:"required,email"`
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Password string `json:"password"  binding:"required,min=4"`
}

// UserResponse is a portal account crossing the boundary.
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullname"`
	Approved   bool   `json:"approved"`
	Cancelled  bool   `json:"cancelled"`
	IsStaff    bool   `json:"is_staff"`
	DateJoined string `json:"date_joined"` // display format
}
