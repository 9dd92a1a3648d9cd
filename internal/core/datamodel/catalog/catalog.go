package catalog

import "time"

type Category struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"column:name;uniqueIndex;not null"`
	Icon         string `gorm:"column:icon"`
	Description  string `gorm:"column:description"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0"`
}

func (Category) TableName() string { return "dsa_categories" }

type Pattern struct {
	ID              int64  `gorm:"primaryKey"`
	CategoryID      int64  `gorm:"column:category_id;not null;uniqueIndex:idx_pattern_name"`
	Name            string `gorm:"column:name;not null;uniqueIndex:idx_pattern_name"`
	Description     string `gorm:"column:description"`
	DifficultyLevel string `gorm:"column:difficulty_level"`
	DisplayOrder    int    `gorm:"column:display_order;not null;default:0"`
}

func (Pattern) TableName() string { return "dsa_patterns" }

type Problem struct {
	ID           int64  `gorm:"primaryKey"`
	PatternID    int64  `gorm:"column:pattern_id;not null;uniqueIndex:idx_problem_title"`
	Title        string `gorm:"column:title;not null;uniqueIndex:idx_problem_title"`
	Difficulty   string `gorm:"column:difficulty;not null"`
	LeetcodeURL  string `gorm:"column:leetcode_url"`
	DisplayOrder int    `gorm:"column:display_order;not null;default:0"`
	IsPremium    bool   `gorm:"column:is_premium;not null;default:false"`
}

func (Problem) TableName() string { return "dsa_problems" }

type Progress struct {
	ID            int64      `gorm:"primaryKey"`
	UserID        int64      `gorm:"column:user_id;not null;uniqueIndex:idx_user_problem"`
	ProblemID     int64      `gorm:"column:problem_id;not null;uniqueIndex:idx_user_problem"`
	Status        string     `gorm:"column:status;not null"`
	FirstSolvedAt *time.Time `gorm:"column:first_solved_at"`
	LastSolvedAt  *time.Time `gorm:"column:last_solved_at"`
	RevisionCount int        `gorm:"column:revision_count;not null;default:0"`
}

func (Progress) TableName() string { return "user_problem_progress" }
