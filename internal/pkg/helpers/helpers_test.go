package helpers_test

import (
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
)

var _ = Describe("Durations", func() {
	DescribeTable("ParseDurationStrict",
		func(in string, want time.Duration) {
			d, err := helpers.ParseDurationStrict(in)
			Expect(err).To(BeNil())
			Expect(d).To(Equal(want))
		},
		Entry("days", "7d", 7*24*time.Hour),
		Entry("minutes", "15m", 15*time.Minute),
		Entry("compound", "1h30m", 90*time.Minute),
	)

	Specify("bad input falls back to the default", func() {
		_, err := helpers.ParseDurationStrict("xd")
		Expect(err).NotTo(BeNil())
		Expect(helpers.ParseDuration("later", time.Minute)).To(Equal(time.Minute))
	})

	DescribeTable("HumanizeRemaining",
		func(d time.Duration, want string) {
			Expect(helpers.HumanizeRemaining(d)).To(Equal(want))
		},
		Entry("several days", 3*24*time.Hour+time.Hour, "3 days remaining"),
		Entry("one day", 30*time.Hour, "1 day remaining"),
		Entry("hours", 5*time.Hour+10*time.Minute, "5 hours remaining"),
		Entry("one hour", 90*time.Minute, "1 hour remaining"),
		Entry("past", -time.Minute, "Expired"),
	)
})

var _ = Describe("Pagination", func() {
	params := func(rawQuery string) (int, int) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items?"+rawQuery, nil)
		return helpers.ParsePaginationParams(c)
	}

	Specify("defaults", func() {
		page, limit := params("")
		Expect(page).To(Equal(1))
		Expect(limit).To(Equal(10))
	})

	Specify("invalid values fall back and large limits clamp", func() {
		page, limit := params("page=abc&limit=-4")
		Expect(page).To(Equal(1))
		Expect(limit).To(Equal(10))

		page, limit = params("page=3&limit=1000")
		Expect(page).To(Equal(3))
		Expect(limit).To(Equal(100))
	})

	Specify("NewPaginationInfo computes the page count", func() {
		info := helpers.NewPaginationInfo(25, 3, 10)
		Expect(info.TotalPages).To(Equal(3))
		Expect(info.Page).To(Equal(3))

		Expect(helpers.NewPaginationInfo(0, 1, 10).TotalPages).To(BeZero())
	})
})
