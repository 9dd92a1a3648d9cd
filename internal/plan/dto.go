package plan

import (
	"strings"

	errors "github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/core/common/validation"
)

type CreatePlanDTO struct {
	ProblemTitle string `json:"problem_title"`
	Topic        string `json:"topic"`
	Platform     string `json:"platform"`
	Difficulty   string `json:"difficulty"`
	PlannedDate  string `json:"planned_date,omitempty"`
}

func (d *CreatePlanDTO) Normalize() {
	d.ProblemTitle = strings.TrimSpace(d.ProblemTitle)
	d.Topic = strings.TrimSpace(d.Topic)
	d.Platform = strings.TrimSpace(d.Platform)
	d.Difficulty = strings.TrimSpace(d.Difficulty)
	d.PlannedDate = strings.TrimSpace(d.PlannedDate)
	if d.Platform == "" {
		d.Platform = DefaultPlatform
	}
}

func (d CreatePlanDTO) Validate() error {
	v := validation.NewValidator()

	v.Field("problem_title", d.ProblemTitle).Required().MaxLength(255)
	v.Field("topic", d.Topic).MaxLength(100)
	v.Field("platform", d.Platform).MaxLength(50)
	v.Field("difficulty", d.Difficulty).OneOf(DifficultyEasy, DifficultyMedium, DifficultyHard)
	v.Field("planned_date", d.PlannedDate).Custom(func(value interface{}) *errors.AppError {
		raw, _ := value.(string)
		if raw == "" {
			return nil
		}
		if _, err := ParseDate(raw); err != nil {
			return errors.NewValidationFieldError("planned_date", "planned_date must be in YYYY-MM-DD format", errors.ErrCodeInvalidPlan)
		}
		return nil
	})

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type DayResponse struct {
	Day        string  `json:"day"`
	Date       string  `json:"date"`
	RolledOver int64   `json:"rolled_over"`
	Plans      []*Plan `json:"plans"`
}

type CountsResponse struct {
	Today    int64 `json:"today"`
	Tomorrow int64 `json:"tomorrow"`
}

type HistoryResponse struct {
	Plans []*Plan `json:"plans"`
}
