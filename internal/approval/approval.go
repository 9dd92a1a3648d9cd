package approval

import (
	"time"

	approvalDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/approval"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseDecision accepts only the statuses an administrator may set.
func ParseDecision(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// InitialStatus is approved for configured administrators and pending for everyone else.
func InitialStatus(isAdminEmail bool) Status {
	if isAdminEmail {
		return StatusApproved
	}
	return StatusPending
}

type Request struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Email       string     `json:"email"`
	Username    string     `json:"username,omitempty"`
	Status      Status     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *int64     `json:"reviewed_by,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (r *Request) CanBeReviewed() bool {
	return r.Status == StatusPending
}

func FromDataModel(r *approvalDatamodel.ApprovalRequest) *Request {
	return &Request{
		ID:          r.ID,
		UserID:      r.UserID,
		Email:       r.Email,
		Status:      Status(r.Status),
		RequestedAt: r.RequestedAt,
		ReviewedAt:  r.ReviewedAt,
		ReviewedBy:  r.ReviewedBy,
		Notes:       r.Notes,
	}
}

type StatusResponse struct {
	Status Status `json:"status"`
}

type ListResponse struct {
	Approvals []*Request `json:"approvals"`
}

type DecisionResponse struct {
	Success  bool     `json:"success"`
	Approval *Request `json:"approval"`
}
