package middleware

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenBucket", func() {
	var (
		now     time.Time
		limiter *TokenBucket
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter = NewTokenBucket(5, 15*time.Minute)
		limiter.now = func() time.Time { return now }
	})

	Specify("allows a burst up to capacity then refuses", func() {
		for i := 0; i < 5; i++ {
			ok, _ := limiter.Allow("1.2.3.4")
			Expect(ok).To(BeTrue())
		}
		ok, retry := limiter.Allow("1.2.3.4")
		Expect(ok).To(BeFalse())
		Expect(retry).To(BeNumerically("~", 3*time.Minute, time.Second))
	})

	Specify("keys are independent", func() {
		for i := 0; i < 5; i++ {
			limiter.Allow("a")
		}
		ok, _ := limiter.Allow("b")
		Expect(ok).To(BeTrue())
	})

	Specify("tokens refill over the window", func() {
		for i := 0; i < 5; i++ {
			limiter.Allow("a")
		}
		now = now.Add(4 * time.Minute)
		ok, _ := limiter.Allow("a")
		Expect(ok).To(BeTrue())
		ok, _ = limiter.Allow("a")
		Expect(ok).To(BeFalse())
	})

	Specify("idle buckets are evicted", func() {
		limiter.Allow("a")
		now = now.Add(time.Hour)
		limiter.Allow("b")
		Expect(limiter.state).NotTo(HaveKey("a"))
	})

	Specify("the middleware answers 429 with Retry-After", func() {
		limiter = NewTokenBucket(1, time.Minute)
		router := gin.New()
		router.Use(limiter.GinMiddleware())
		router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
		Expect(first.Code).To(Equal(http.StatusOK))

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
		Expect(second.Code).To(Equal(http.StatusTooManyRequests))
		Expect(second.Header().Get("Retry-After")).NotTo(BeEmpty())
		Expect(second.Body.String()).To(ContainSubstring("RATE_001"))
	})
})
