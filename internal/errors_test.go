package internal

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewResetRateLimitError", func() {
	DescribeTable("names the window it was built with",
		func(window time.Duration, expected string) {
			err := NewResetRateLimitError(3, 3, window)

			Expect(err.Code).To(Equal(ErrCodeRateLimited))
			Expect(err.Message).To(Equal("Too many password reset requests. Please try again in " + expected + ". (3/3 used)"))
		},
		Entry("one day", 24*time.Hour, "24 hours"),
		Entry("one hour", time.Hour, "1 hour"),
		Entry("minutes", 30*time.Minute, "30 minutes"),
		Entry("mixed units", 90*time.Second, "90 seconds"),
		Entry("sub-second", 1500*time.Millisecond, "1.5s"),
	)
})
