package approval

import "github.com/frahmantamala/study-tracker/internal"

// DecisionDTO is the body of PATCH /admin/approvals.
type DecisionDTO struct {
	ID     int64   `json:"id"`
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (d DecisionDTO) Validate() (Status, error) {
	if d.ID <= 0 {
		return "", internal.ErrInvalidParameters
	}
	status, ok := ParseDecision(d.Status)
	if !ok {
		return "", internal.ErrInvalidParameters
	}
	return status, nil
}
