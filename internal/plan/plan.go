package plan

import (
	"fmt"
	"time"

	planDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/plan"
)

type Status string

const (
	StatusPlanned Status = "PLANNED"
	StatusDone    Status = "DONE"
	StatusSkipped Status = "SKIPPED"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	DefaultPlatform = "LeetCode"
	DateLayout      = "2006-01-02"
)

type Plan struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	ProblemTitle string     `json:"problem_title"`
	Topic        string     `json:"topic"`
	Platform     string     `json:"platform"`
	Difficulty   string     `json:"difficulty"`
	Status       Status     `json:"status"`
	PlannedDate  Date       `json:"planned_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Date is a calendar day stored as midnight UTC and serialised as YYYY-MM-DD.
type Date time.Time

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, err
	}
	return Date(t.UTC()), nil
}

// Calendar answers "what day is it" in the application's timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendar(timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

func (c *Calendar) Today() Date {
	return c.DayOffset(0)
}

func (c *Calendar) Tomorrow() Date {
	return c.DayOffset(1)
}

func (c *Calendar) DayOffset(days int) Date {
	local := c.now().In(c.loc)
	return Date(time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, time.UTC))
}

func ToDataModel(p *Plan) *planDatamodel.DailyPlan {
	return &planDatamodel.DailyPlan{
		ID:           p.ID,
		UserID:       p.UserID,
		ProblemTitle: p.ProblemTitle,
		Topic:        p.Topic,
		Platform:     p.Platform,
		Difficulty:   p.Difficulty,
		Status:       string(p.Status),
		PlannedDate:  p.PlannedDate.Time(),
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func FromDataModel(p *planDatamodel.DailyPlan) *Plan {
	planned := p.PlannedDate
	return &Plan{
		ID:           p.ID,
		UserID:       p.UserID,
		ProblemTitle: p.ProblemTitle,
		Topic:        p.Topic,
		Platform:     p.Platform,
		Difficulty:   p.Difficulty,
		Status:       Status(p.Status),
		PlannedDate:  Date(time.Date(planned.Year(), planned.Month(), planned.Day(), 0, 0, 0, 0, time.UTC)),
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}
