package approval

import "time"

type ApprovalRequest struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;uniqueIndex;not null"`
	Email       string     `gorm:"column:email;uniqueIndex;not null"`
	Status      string     `gorm:"column:status;not null;default:pending"`
	RequestedAt time.Time  `gorm:"column:requested_at;not null"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy  *int64     `gorm:"column:reviewed_by"`
	Notes       *string    `gorm:"column:notes"`
}

func (ApprovalRequest) TableName() string { return "approval_requests" }

// ApprovalWithUser is the admin listing row, joined with the requesting user's name.
type ApprovalWithUser struct {
	ApprovalRequest
	Username string `gorm:"column:username"`
}
