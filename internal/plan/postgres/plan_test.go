package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	planDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/plan"
	"github.com/frahmantamala/study-tracker/internal/plan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPlanRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PlanRepository Suite")
}

var _ = Describe("PlanRepository", func() {
	var (
		db   *gorm.DB
		repo *PlanRepository
		ctx  context.Context
	)

	date := func(s string) plan.Date {
		d, err := plan.ParseDate(s)
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&planDatamodel.DailyPlan{})).To(Succeed())

		repo = NewPlanRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	add := func(userID int64, title string, status plan.Status, d string) *plan.Plan {
		p := &plan.Plan{UserID: userID, ProblemTitle: title, Platform: plan.DefaultPlatform, Status: status, PlannedDate: date(d)}
		Expect(repo.Create(ctx, p)).To(Succeed())
		Expect(p.ID).NotTo(BeZero())
		return p
	}

	It("should list and count by day per user", func() {
		add(1, "Two Sum", plan.StatusPlanned, "2026-10-17")
		add(1, "3Sum", plan.StatusDone, "2026-10-17")
		add(1, "LRU Cache", plan.StatusPlanned, "2026-10-18")
		add(2, "Other", plan.StatusPlanned, "2026-10-17")

		plans, err := repo.ListByDate(ctx, 1, date("2026-10-17"))
		Expect(err).NotTo(HaveOccurred())
		Expect(plans).To(HaveLen(2))
		Expect(plans[0].PlannedDate.String()).To(Equal("2026-10-17"))

		count, err := repo.CountByDate(ctx, 1, date("2026-10-18"))
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})

	It("should roll only planned items from earlier days", func() {
		stale := add(1, "stale", plan.StatusPlanned, "2026-10-10")
		add(1, "done", plan.StatusDone, "2026-10-10")
		add(2, "someone else", plan.StatusPlanned, "2026-10-10")

		moved, err := repo.RolloverBefore(ctx, 1, date("2026-10-17"))
		Expect(err).NotTo(HaveOccurred())
		Expect(moved).To(Equal(int64(1)))

		today, err := repo.ListByDate(ctx, 1, date("2026-10-17"))
		Expect(err).NotTo(HaveOccurred())
		Expect(today).To(HaveLen(1))
		Expect(today[0].ID).To(Equal(stale.ID))
	})

	It("should update status only for the owner", func() {
		p := add(1, "Two Sum", plan.StatusPlanned, "2026-10-17")
		completed := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

		_, err := repo.UpdateStatus(ctx, p.ID, 2, plan.StatusDone, &completed, nil)
		Expect(err).To(MatchError(internal.ErrPlanNotFound))

		updated, err := repo.UpdateStatus(ctx, p.ID, 1, plan.StatusDone, &completed, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Status).To(Equal(plan.StatusDone))
		Expect(updated.CompletedAt).NotTo(BeNil())

		history, err := repo.ListCompleted(ctx, 1, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))
	})

	It("should move a skipped plan", func() {
		p := add(1, "Two Sum", plan.StatusPlanned, "2026-10-17")
		tomorrow := date("2026-10-18")

		updated, err := repo.UpdateStatus(ctx, p.ID, 1, plan.StatusSkipped, nil, &tomorrow)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.PlannedDate.String()).To(Equal("2026-10-18"))
	})
})
