package query_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("Options", func() {
	Describe("Normalize", func() {
		Specify("zero value gets defaults", func() {
			o := query.Options{}.Normalize()
			Expect(o.Page).To(Equal(1))
			Expect(o.Limit).To(Equal(10))
			Expect(o.Sort).To(Equal(query.DefaultSort))
		})

		Specify("limit is clamped to 100", func() {
			o := query.Options{Page: 2, Limit: 500}.Normalize()
			Expect(o.Limit).To(Equal(100))
			Expect(o.Page).To(Equal(2))
		})

		Specify("negative values fall back to defaults", func() {
			o := query.Options{Page: -3, Limit: -1}.Normalize()
			Expect(o.Page).To(Equal(1))
			Expect(o.Limit).To(Equal(10))
		})

		Specify("search is trimmed and explicit sort kept", func() {
			o := query.Options{Search: "  go  ", Sort: []query.SortField{{Field: "title"}}}.Normalize()
			Expect(o.Search).To(Equal("go"))
			Expect(o.Sort).To(ConsistOf(query.SortField{Field: "title"}))
		})
	})

	Specify("Offset skips whole pages", func() {
		Expect(query.Options{Page: 3, Limit: 10}.Offset()).To(Equal(20))
		Expect(query.Options{Page: 1, Limit: 25}.Offset()).To(Equal(0))
	})

	Describe("ParseSort", func() {
		Specify("prefixes set direction", func() {
			Expect(query.ParseSort("-createdAt, title,+views")).To(Equal([]query.SortField{
				{Field: "createdAt", Desc: true},
				{Field: "title"},
				{Field: "views"},
			}))
		})

		Specify("blank parts are ignored", func() {
			Expect(query.ParseSort(" , -,")).To(BeEmpty())
			Expect(query.ParseSort("")).To(BeEmpty())
		})
	})

	Specify("TotalPages rounds up", func() {
		Expect(query.TotalPages(25, 10)).To(Equal(3))
		Expect(query.TotalPages(20, 10)).To(Equal(2))
		Expect(query.TotalPages(0, 10)).To(Equal(0))
		Expect(query.TotalPages(5, 0)).To(Equal(0))
	})

	Specify("SearchTerms lowercases and dedupes words", func() {
		Expect(query.SearchTerms("Go, go! Data-Structures 101")).To(Equal([]string{"go", "data", "structures", "101"}))
		Expect(query.SearchTerms("  ")).To(BeEmpty())
		Expect(query.SearchTerms("linked_list")).To(Equal([]string{"linked", "list"}))
	})
})

var _ = Describe("Filter", func() {
	base := query.Filter{query.Eq("isPublic", true), query.Eq("subject", "math")}

	Specify("And does not alias the receiver", func() {
		extended := base.And(query.Eq("course", "CS101"))
		Expect(extended).To(HaveLen(3))
		Expect(base).To(HaveLen(2))
	})

	Specify("Without drops every condition on the field", func() {
		f := base.And(query.Eq("isPublic", false)).Without("isPublic")
		Expect(f).To(ConsistOf(query.Eq("subject", "math")))
	})

	Specify("Lookup finds the first condition", func() {
		c, ok := base.Lookup("subject")
		Expect(ok).To(BeTrue())
		Expect(c.Value).To(Equal("math"))

		_, ok = base.Lookup("missing")
		Expect(ok).To(BeFalse())
	})
})
