package events

import "time"

const (
	EventTypeUserSignedUp           = "user.signed_up"
	EventTypeApprovalApproved       = "approval.approved"
	EventTypeApprovalRejected       = "approval.rejected"
	EventTypePasswordResetRequested = "password_reset.requested"
)

type UserSignedUpEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func NewUserSignedUpEvent(userID int64, email, name, status string) *UserSignedUpEvent {
	return &UserSignedUpEvent{
		BaseEvent: newBase(EventTypeUserSignedUp),
		UserID:    userID,
		Email:     email,
		Name:      name,
		Status:    status,
	}
}

type ApprovalDecidedEvent struct {
	BaseEvent
	ApprovalID int64  `json:"approval_id"`
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ReviewerID int64  `json:"reviewer_id"`
}

func NewApprovalDecidedEvent(eventType string, approvalID, userID int64, email, name string, reviewerID int64) *ApprovalDecidedEvent {
	return &ApprovalDecidedEvent{
		BaseEvent:  newBase(eventType),
		ApprovalID: approvalID,
		UserID:     userID,
		Email:      email,
		Name:       name,
		ReviewerID: reviewerID,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPasswordResetRequestedEvent carries the token outside its JSON form so it never reaches event logs.
func NewPasswordResetRequestedEvent(userID int64, email, name, token string, expiresAt time.Time) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: newBase(EventTypePasswordResetRequested),
		UserID:    userID,
		Email:     email,
		Name:      name,
		Token:     token,
		ExpiresAt: expiresAt,
	}
}
