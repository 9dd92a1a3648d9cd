package plan

import "time"

type DailyPlan struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;index"`
	ProblemTitle string     `gorm:"column:problem_title;not null"`
	Topic        string     `gorm:"column:topic"`
	Platform     string     `gorm:"column:platform"`
	Difficulty   string     `gorm:"column:difficulty"`
	Status       string     `gorm:"column:status;not null;default:PLANNED"`
	PlannedDate  time.Time  `gorm:"column:planned_date;type:date;not null;index"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (DailyPlan) TableName() string { return "daily_plans" }
