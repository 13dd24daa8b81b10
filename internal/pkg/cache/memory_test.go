package cache_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
)

var _ = Describe("MemoryCache", func() {
	var (
		ctx context.Context
		c   *cache.MemoryCache
	)

	BeforeEach(func() {
		ctx = context.Background()
		c = cache.NewMemoryCache(0)
	})

	AfterEach(func() {
		Expect(c.Close()).To(Succeed())
	})

	Specify("stores and deletes values", func() {
		Expect(c.Set(ctx, "a", "1", 0)).To(Succeed())
		Expect(c.Set(ctx, "b", "2", time.Minute)).To(Succeed())

		v, err := c.Get(ctx, "a")
		Expect(err).To(BeNil())
		Expect(v).To(Equal("1"))

		Expect(c.Delete(ctx, "a", "b")).To(Succeed())
		_, err = c.Get(ctx, "b")
		Expect(err).To(MatchError(cache.ErrNotFound))
	})

	Specify("expired entries are hidden and evicted", func() {
		Expect(c.Set(ctx, "short", "x", 10*time.Millisecond)).To(Succeed())
		Expect(c.Set(ctx, "long", "y", time.Hour)).To(Succeed())

		Eventually(func() bool {
			ok, _ := c.Exists(ctx, "short")
			return ok
		}).Should(BeFalse())

		Expect(c.Len()).To(Equal(2))
		Expect(c.DeleteExpired()).To(Equal(1))
		Expect(c.Len()).To(Equal(1))
	})

	Specify("the cleanup loop evicts in the background", func() {
		bg := cache.NewMemoryCache(5 * time.Millisecond)
		defer bg.Close()

		Expect(bg.Set(ctx, "k", "v", time.Millisecond)).To(Succeed())
		Eventually(bg.Len).Should(BeZero())
	})

	Specify("JSON helpers round trip structs", func() {
		type stats struct {
			Total int `json:"total"`
		}
		Expect(cache.SetJSON(ctx, c, "stats", stats{Total: 7}, time.Minute)).To(Succeed())

		var out stats
		Expect(cache.GetJSON(ctx, c, "stats", &out)).To(Succeed())
		Expect(out.Total).To(Equal(7))

		Expect(cache.GetJSON(ctx, c, "missing", &out)).To(MatchError(cache.ErrNotFound))
	})

	Specify("Close is idempotent", func() {
		Expect(c.Close()).To(Succeed())
	})
})
