package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var defaultCatalog []byte

type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
}

type SeedCategory struct {
	Name        string        `yaml:"name"`
	Icon        string        `yaml:"icon"`
	Description string        `yaml:"description"`
	Patterns    []SeedPattern `yaml:"patterns"`
}

type SeedPattern struct {
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	DifficultyLevel string        `yaml:"difficulty_level"`
	Problems        []SeedProblem `yaml:"problems"`
}

type SeedProblem struct {
	Title      string `yaml:"title"`
	Difficulty string `yaml:"difficulty"`
	Premium    bool   `yaml:"premium"`
}

type SeedStats struct {
	Categories int
	Patterns   int
	Problems   int
}

func DefaultSeedFile() (*SeedFile, error) {
	return ParseSeedFile(defaultCatalog)
}

func ParseSeedFile(data []byte) (*SeedFile, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for _, c := range file.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("parse catalog: category without a name")
		}
		for _, p := range c.Patterns {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("parse catalog: pattern without a name in %q", c.Name)
			}
			for _, prob := range p.Problems {
				switch prob.Difficulty {
				case "Easy", "Medium", "Hard":
				default:
					return nil, fmt.Errorf("parse catalog: %q has difficulty %q", prob.Title, prob.Difficulty)
				}
			}
		}
	}

	return &file, nil
}

type SeedRepository interface {
	Clear(ctx context.Context) error
	UpsertCategory(ctx context.Context, c *catalogDatamodel.Category) error
	UpsertPattern(ctx context.Context, p *catalogDatamodel.Pattern) error
	UpsertProblem(ctx context.Context, p *catalogDatamodel.Problem) error
}

type Seeder struct {
	repo   SeedRepository
	logger *slog.Logger
}

func NewSeeder(repo SeedRepository, logger *slog.Logger) *Seeder {
	return &Seeder{repo: repo, logger: logger}
}

// Seed upserts the catalog; display order follows position in the file, starting at 1.
func (s *Seeder) Seed(ctx context.Context, file *SeedFile, clear bool) (*SeedStats, error) {
	if clear {
		s.logger.InfoContext(ctx, "clearing catalog")
		if err := s.repo.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear catalog: %w", err)
		}
	}

	stats := &SeedStats{}
	for ci, c := range file.Categories {
		category := &catalogDatamodel.Category{
			Name:         c.Name,
			Icon:         c.Icon,
			Description:  c.Description,
			DisplayOrder: ci + 1,
		}
		if err := s.repo.UpsertCategory(ctx, category); err != nil {
			return stats, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		stats.Categories++

		for pi, p := range c.Patterns {
			pattern := &catalogDatamodel.Pattern{
				CategoryID:      category.ID,
				Name:            p.Name,
				Description:     p.Description,
				DifficultyLevel: p.DifficultyLevel,
				DisplayOrder:    pi + 1,
			}
			if err := s.repo.UpsertPattern(ctx, pattern); err != nil {
				return stats, fmt.Errorf("seed pattern %q: %w", p.Name, err)
			}
			stats.Patterns++

			for qi, prob := range p.Problems {
				problem := &catalogDatamodel.Problem{
					PatternID:    pattern.ID,
					Title:        prob.Title,
					Difficulty:   prob.Difficulty,
					LeetcodeURL:  LeetCodeURL(prob.Title),
					DisplayOrder: qi + 1,
					IsPremium:    prob.Premium,
				}
				if err := s.repo.UpsertProblem(ctx, problem); err != nil {
					return stats, fmt.Errorf("seed problem %q: %w", prob.Title, err)
				}
				stats.Problems++
			}
		}
		s.logger.InfoContext(ctx, "seeded category", "category", c.Name, "patterns", len(c.Patterns))
	}

	return stats, nil
}
