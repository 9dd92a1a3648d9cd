package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
)

const (
	ProgressSolved = "solved"

	leetCodeProblemURL = "https://leetcode.com/problems/%s/"
)

type Category struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Icon         string     `json:"icon,omitempty"`
	Description  string     `json:"description,omitempty"`
	DisplayOrder int        `json:"display_order"`
	Patterns     []*Pattern `json:"patterns"`
}

type Pattern struct {
	ID              int64      `json:"id"`
	CategoryID      int64      `json:"category_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	DifficultyLevel string     `json:"difficulty_level,omitempty"`
	DisplayOrder    int        `json:"display_order"`
	Problems        []*Problem `json:"problems"`
}

type Problem struct {
	ID           int64  `json:"id"`
	PatternID    int64  `json:"pattern_id"`
	Title        string `json:"title"`
	Difficulty   string `json:"difficulty"`
	LeetcodeURL  string `json:"leetcode_url"`
	DisplayOrder int    `json:"display_order"`
	IsPremium    bool   `json:"is_premium"`
}

type Progress struct {
	ProblemID     int64      `json:"problem_id"`
	Status        string     `json:"status"`
	FirstSolvedAt *time.Time `json:"first_solved_at,omitempty"`
	LastSolvedAt  *time.Time `json:"last_solved_at,omitempty"`
	RevisionCount int        `json:"revision_count"`
}

func (p *Progress) IsSolved() bool {
	return p != nil && p.Status == ProgressSolved
}

type CatalogResponse struct {
	Categories []*Category `json:"categories"`
}

type ProgressResponse struct {
	Progress []*Progress `json:"progress"`
}

type ToggleResponse struct {
	ProblemID int64     `json:"problem_id"`
	Solved    bool      `json:"solved"`
	Progress  *Progress `json:"progress,omitempty"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases the title, collapses every run of other characters into a dash and trims dashes.
func Slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func LeetCodeURL(title string) string {
	return fmt.Sprintf(leetCodeProblemURL, Slugify(title))
}

func progressFromDataModel(p *catalogDatamodel.Progress) *Progress {
	return &Progress{
		ProblemID:     p.ProblemID,
		Status:        p.Status,
		FirstSolvedAt: p.FirstSolvedAt,
		LastSolvedAt:  p.LastSolvedAt,
		RevisionCount: p.RevisionCount,
	}
}

func ProgressFromDataModel(rows []catalogDatamodel.Progress) []*Progress {
	out := make([]*Progress, 0, len(rows))
	for i := range rows {
		out = append(out, progressFromDataModel(&rows[i]))
	}
	return out
}

// BuildTree nests rows that are already sorted by display_order.
func BuildTree(categories []catalogDatamodel.Category, patterns []catalogDatamodel.Pattern, problems []catalogDatamodel.Problem) []*Category {
	byPattern := make(map[int64]*Pattern, len(patterns))
	byCategory := make(map[int64]*Category, len(categories))

	tree := make([]*Category, 0, len(categories))
	for _, c := range categories {
		cat := &Category{
			ID:           c.ID,
			Name:         c.Name,
			Icon:         c.Icon,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
			Patterns:     []*Pattern{},
		}
		byCategory[c.ID] = cat
		tree = append(tree, cat)
	}

	for _, p := range patterns {
		cat, ok := byCategory[p.CategoryID]
		if !ok {
			continue
		}
		pat := &Pattern{
			ID:              p.ID,
			CategoryID:      p.CategoryID,
			Name:            p.Name,
			Description:     p.Description,
			DifficultyLevel: p.DifficultyLevel,
			DisplayOrder:    p.DisplayOrder,
			Problems:        []*Problem{},
		}
		byPattern[p.ID] = pat
		cat.Patterns = append(cat.Patterns, pat)
	}

	for _, p := range problems {
		pat, ok := byPattern[p.PatternID]
		if !ok {
			continue
		}
		pat.Problems = append(pat.Problems, &Problem{
			ID:           p.ID,
			PatternID:    p.PatternID,
			Title:        p.Title,
			Difficulty:   p.Difficulty,
			LeetcodeURL:  p.LeetcodeURL,
			DisplayOrder: p.DisplayOrder,
			IsPremium:    p.IsPremium,
		})
	}

	return tree
}
