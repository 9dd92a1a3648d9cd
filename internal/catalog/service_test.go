package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

type mockCatalog struct {
	categories    []catalogDatamodel.Category
	patterns      []catalogDatamodel.Pattern
	problems      []catalogDatamodel.Problem
	returnError   bool
	errorToReturn error
}

func (m *mockCatalog) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

func (m *mockCatalog) ListCategories(context.Context) ([]catalogDatamodel.Category, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.categories, nil
}

func (m *mockCatalog) ListPatterns(context.Context) ([]catalogDatamodel.Pattern, error) {
	return m.patterns, nil
}

func (m *mockCatalog) ListProblems(context.Context) ([]catalogDatamodel.Problem, error) {
	return m.problems, nil
}

func (m *mockCatalog) ProblemExists(_ context.Context, id int64) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	for _, p := range m.problems {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type progressKey struct{ user, problem int64 }

type mockProgress struct {
	rows    map[progressKey]*catalogDatamodel.Progress
	deleted int
}

func newMockProgress() *mockProgress {
	return &mockProgress{rows: map[progressKey]*catalogDatamodel.Progress{}}
}

func (m *mockProgress) ListProgress(_ context.Context, userID int64) ([]catalogDatamodel.Progress, error) {
	var out []catalogDatamodel.Progress
	for k, v := range m.rows {
		if k.user == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockProgress) GetProgress(_ context.Context, userID, problemID int64) (*catalogDatamodel.Progress, error) {
	row, ok := m.rows[progressKey{userID, problemID}]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *mockProgress) SaveProgress(_ context.Context, p *catalogDatamodel.Progress) error {
	cp := *p
	m.rows[progressKey{p.UserID, p.ProblemID}] = &cp
	return nil
}

func (m *mockProgress) DeleteProgress(_ context.Context, userID, problemID int64) error {
	delete(m.rows, progressKey{userID, problemID})
	m.deleted++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Slugify", func() {
	DescribeTable("should build LeetCode slugs",
		func(title, slug string) {
			Expect(Slugify(title)).To(Equal(slug))
		},
		Entry("plain", "Two Sum", "two-sum"),
		Entry("punctuation runs", "Two Sum II - Input Array Is Sorted", "two-sum-ii-input-array-is-sorted"),
		Entry("parentheses", "Implement Trie (Prefix Tree)", "implement-trie-prefix-tree"),
		Entry("leading digits", "3Sum", "3sum"),
		Entry("backtick", "All O`one Data Structure", "all-o-one-data-structure"),
	)

	It("should build a problem URL", func() {
		Expect(LeetCodeURL("LRU Cache")).To(Equal("https://leetcode.com/problems/lru-cache/"))
	})
})

var _ = Describe("Service", func() {
	var (
		cat      *mockCatalog
		progress *mockProgress
		service  *Service
		ctx      context.Context
		now      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
		cat = &mockCatalog{
			categories: []catalogDatamodel.Category{{ID: 1, Name: "Two Pointer Patterns", DisplayOrder: 1}, {ID: 2, Name: "Empty", DisplayOrder: 2}},
			patterns:   []catalogDatamodel.Pattern{{ID: 10, CategoryID: 1, Name: "Converging", DisplayOrder: 1}, {ID: 11, CategoryID: 99, Name: "Orphan"}},
			problems: []catalogDatamodel.Problem{
				{ID: 100, PatternID: 10, Title: "3Sum", Difficulty: "Medium", DisplayOrder: 1},
				{ID: 101, PatternID: 10, Title: "4Sum", Difficulty: "Medium", DisplayOrder: 2},
			},
		}
		progress = newMockProgress()
		service = NewService(cat, progress, discardLogger())
		service.now = func() time.Time { return now }
	})

	It("should nest the catalog and drop orphans", func() {
		resp, err := service.GetCatalog(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Categories).To(HaveLen(2))
		Expect(resp.Categories[0].Patterns).To(HaveLen(1))
		Expect(resp.Categories[0].Patterns[0].Problems).To(HaveLen(2))
		Expect(resp.Categories[0].Patterns[0].Problems[1].Title).To(Equal("4Sum"))
		Expect(resp.Categories[1].Patterns).NotTo(BeNil())
		Expect(resp.Categories[1].Patterns).To(BeEmpty())
	})

	It("should wrap catalog failures", func() {
		cat.setError(errors.New("db down"))

		_, err := service.GetCatalog(ctx)

		var appErr *internal.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
	})

	Describe("ToggleProgress", func() {
		It("should create a solved record on first toggle", func() {
			// When
			resp, err := service.ToggleProgress(ctx, 7, 100)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Solved).To(BeTrue())
			Expect(resp.Progress.RevisionCount).To(Equal(1))
			Expect(*resp.Progress.FirstSolvedAt).To(Equal(now))
			Expect(*resp.Progress.LastSolvedAt).To(Equal(now))
		})

		It("should delete a solved record on second toggle", func() {
			_, err := service.ToggleProgress(ctx, 7, 100)
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.ToggleProgress(ctx, 7, 100)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Solved).To(BeFalse())
			Expect(progress.rows).To(BeEmpty())
			Expect(progress.deleted).To(Equal(1))
		})

		It("should count a revision when re-solving an unsolved record", func() {
			// Given
			first := now.Add(-48 * time.Hour)
			progress.rows[progressKey{7, 100}] = &catalogDatamodel.Progress{
				ID: 5, UserID: 7, ProblemID: 100, Status: "attempted", FirstSolvedAt: &first, RevisionCount: 2,
			}

			// When
			resp, err := service.ToggleProgress(ctx, 7, 100)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Solved).To(BeTrue())
			Expect(resp.Progress.RevisionCount).To(Equal(3))
			Expect(*resp.Progress.FirstSolvedAt).To(Equal(first))
			Expect(*resp.Progress.LastSolvedAt).To(Equal(now))
		})

		It("should reject unknown problems", func() {
			_, err := service.ToggleProgress(ctx, 7, 999)

			Expect(err).To(MatchError(internal.ErrProblemNotFound))
			Expect(progress.rows).To(BeEmpty())
		})

		It("should keep progress per user", func() {
			_, err := service.ToggleProgress(ctx, 7, 100)
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.ListProgress(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine.Progress).To(HaveLen(1))

			theirs, err := service.ListProgress(ctx, 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(theirs.Progress).NotTo(BeNil())
			Expect(theirs.Progress).To(BeEmpty())
		})
	})
})

type memorySeedRepo struct {
	cleared    bool
	categories map[string]int64
	patterns   map[string]int64
	problems   []catalogDatamodel.Problem
	nextID     int64
}

func newMemorySeedRepo() *memorySeedRepo {
	return &memorySeedRepo{categories: map[string]int64{}, patterns: map[string]int64{}}
}

func (m *memorySeedRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memorySeedRepo) Clear(context.Context) error {
	m.cleared = true
	return nil
}

func (m *memorySeedRepo) UpsertCategory(_ context.Context, c *catalogDatamodel.Category) error {
	if _, ok := m.categories[c.Name]; !ok {
		m.categories[c.Name] = m.id()
	}
	c.ID = m.categories[c.Name]
	return nil
}

func (m *memorySeedRepo) UpsertPattern(_ context.Context, p *catalogDatamodel.Pattern) error {
	key := p.Name
	if _, ok := m.patterns[key]; !ok {
		m.patterns[key] = m.id()
	}
	p.ID = m.patterns[key]
	return nil
}

func (m *memorySeedRepo) UpsertProblem(_ context.Context, p *catalogDatamodel.Problem) error {
	p.ID = m.id()
	m.problems = append(m.problems, *p)
	return nil
}

var _ = Describe("Seeder", func() {
	It("should parse the embedded catalog", func() {
		file, err := DefaultSeedFile()

		Expect(err).NotTo(HaveOccurred())
		Expect(file.Categories).NotTo(BeEmpty())
		Expect(file.Categories[0].Name).To(Equal("Two Pointer Patterns"))
		Expect(file.Categories[0].Patterns[0].Problems).NotTo(BeEmpty())
	})

	It("should reject unknown difficulties", func() {
		_, err := ParseSeedFile([]byte(`
categories:
  - name: A
    patterns:
      - name: B
        problems:
          - {title: "Two Sum", difficulty: Trivial}
`))
		Expect(err).To(MatchError(ContainSubstring("Trivial")))
	})

	It("should upsert in file order with derived URLs", func() {
		// Given
		file, err := ParseSeedFile([]byte(`
categories:
  - name: Arrays
    icon: "🧮"
    patterns:
      - name: Two Pointers
        problems:
          - {title: "Two Sum", difficulty: Easy}
          - {title: "3Sum", difficulty: Medium, premium: true}
`))
		Expect(err).NotTo(HaveOccurred())
		repo := newMemorySeedRepo()

		// When
		stats, err := NewSeeder(repo, discardLogger()).Seed(context.Background(), file, true)

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.cleared).To(BeTrue())
		Expect(*stats).To(Equal(SeedStats{Categories: 1, Patterns: 1, Problems: 2}))
		Expect(repo.problems[0].LeetcodeURL).To(Equal("https://leetcode.com/problems/two-sum/"))
		Expect(repo.problems[0].DisplayOrder).To(Equal(1))
		Expect(repo.problems[1].DisplayOrder).To(Equal(2))
		Expect(repo.problems[1].IsPremium).To(BeTrue())
		Expect(repo.problems[0].PatternID).To(Equal(repo.patterns["Two Pointers"]))
	})
})

type stubService struct {
	lastUser    int64
	lastProblem int64
	err         error
}

func (s *stubService) GetCatalog(context.Context) (*CatalogResponse, error) {
	return &CatalogResponse{Categories: []*Category{}}, s.err
}

func (s *stubService) ListProgress(_ context.Context, userID int64) (*ProgressResponse, error) {
	s.lastUser = userID
	return &ProgressResponse{Progress: []*Progress{}}, s.err
}

func (s *stubService) ToggleProgress(_ context.Context, userID, problemID int64) (*ToggleResponse, error) {
	s.lastUser, s.lastProblem = userID, problemID
	if s.err != nil {
		return nil, s.err
	}
	return &ToggleResponse{ProblemID: problemID, Solved: true}, nil
}

var _ = Describe("Handler", func() {
	var (
		stub   *stubService
		router chi.Router
	)

	BeforeEach(func() {
		stub = &stubService{}
		h := NewHandler(stub)
		router = chi.NewRouter()
		router.Get("/catalog", h.GetCatalog)
		router.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(coreuser.WithUser(r.Context(), &coreuser.User{ID: 7})))
				})
			})
			r.Get("/catalog/progress", h.GetProgress)
			r.Post("/catalog/problems/{id}/progress", h.ToggleProgress)
		})
	})

	It("should serve the public catalog", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"categories":[]}`))
	})

	It("should toggle progress for the caller", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/problems/100/progress", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(stub.lastUser).To(Equal(int64(7)))
		Expect(stub.lastProblem).To(Equal(int64(100)))
	})

	It("should map unknown problems to 404", func() {
		stub.err = internal.ErrProblemNotFound

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/problems/5/progress", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a bad problem id", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/catalog/problems/x/progress", nil))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
