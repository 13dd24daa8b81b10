package auth_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("Authorization", func() {
	var (
		owner   *auth.Actor
		student *auth.Actor
		admin   *auth.Actor
	)

	BeforeEach(func() {
		owner = &auth.Actor{ID: primitive.NewObjectID(), Role: models.RoleInstructor}
		student = &auth.Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
		admin = &auth.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	})

	Specify("owners and admins may mutate", func() {
		Expect(auth.CanMutate(owner, owner.ID)).To(BeTrue())
		Expect(auth.CanMutate(admin, owner.ID)).To(BeTrue())
		Expect(auth.CanMutate(student, owner.ID)).To(BeFalse())
		Expect(auth.CanMutate(nil, owner.ID)).To(BeFalse())
	})

	Specify("public items are readable by anyone", func() {
		Expect(auth.CanRead(nil, owner.ID, true)).To(BeTrue())
		Expect(auth.CanRead(student, owner.ID, true)).To(BeTrue())
	})

	Specify("private items are readable by the owner and admins only", func() {
		Expect(auth.CanRead(owner, owner.ID, false)).To(BeTrue())
		Expect(auth.CanRead(admin, owner.ID, false)).To(BeTrue())
		Expect(auth.CanRead(student, owner.ID, false)).To(BeFalse())
		Expect(auth.CanRead(nil, owner.ID, false)).To(BeFalse())
	})

	Specify("authorize helpers return forbidden errors", func() {
		err := auth.AuthorizeMutate(student, owner.ID, "note")
		Expect(errors.Is(err, apperrors.ErrPermissionDenied)).To(BeTrue())
		Expect(err.Error()).To(Equal("you can only modify your own note"))

		err = auth.AuthorizeRead(nil, owner.ID, false, "note")
		Expect(errors.Is(err, apperrors.ErrPermissionDenied)).To(BeTrue())

		Expect(auth.AuthorizeRead(nil, owner.ID, true, "note")).To(Succeed())
	})

	Describe("ScopeListing", func() {
		requested := query.Filter{query.Eq("subject", "math"), query.Eq("isPublic", false)}

		Specify("forces public for anonymous and non-admin callers", func() {
			for _, a := range []*auth.Actor{nil, student, owner} {
				f := auth.ScopeListing(a, requested)
				Expect(f).To(ConsistOf(query.Eq("subject", "math"), query.Eq("isPublic", true)))
			}
		})

		Specify("keeps what an admin asked for", func() {
			Expect(auth.ScopeListing(admin, requested)).To(ConsistOf(requested[0], requested[1]))
			Expect(auth.ScopeListing(admin, query.Filter{})).To(BeEmpty())
		})
	})

	Specify("ScopeOwned pins the owner and drops visibility", func() {
		f := auth.ScopeOwned(student, "author", query.Filter{
			query.Eq("author", owner.ID),
			query.Eq("isPublic", true),
			query.Eq("course", "CS101"),
		})
		Expect(f).To(ConsistOf(query.Eq("course", "CS101"), query.Eq("author", student.ID)))
	})
})
