package services_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("NoteService", func() {
	var (
		ctx        context.Context
		repos      *repositories.Repositories
		publisher  *recordingPublisher
		notes      *services.NoteService
		instructor *auth.Actor
		other      *auth.Actor
		admin      *auth.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		repos = repositories.NewMemoryRepositories()
		publisher = &recordingPublisher{}
		notes = services.NewNoteService(repos.Notes, repos.Users, publisher, testLogger)
		instructor = newActor(models.RoleInstructor, "Ada Lovelace")
		other = newActor(models.RoleInstructor, "Alan Turing")
		admin = newActor(models.RoleAdmin, "Root")
	})

	create := func(title string, public bool) *models.Note {
		n, err := notes.CreateAs(ctx, instructor, noteDraft(title, public))
		Expect(err).To(BeNil())
		return n
	}

	Describe("CreateAs", func() {
		Specify("assigns the actor as author and publishes an event", func() {
			draft := noteDraft("Vectors", true)
			draft.Author = models.OwnerRef{ID: primitive.NewObjectID()}
			draft.AuthorName = "Somebody Else"

			n, err := notes.CreateAs(ctx, instructor, draft)
			Expect(err).To(BeNil())
			Expect(n.ID.IsZero()).To(BeFalse())
			Expect(n.Author.ID).To(Equal(instructor.ID))
			Expect(n.AuthorName).To(Equal("Ada Lovelace"))
			Expect(n.Tags).To(Equal([]string{"algebra"}))
			Expect(n.CreatedAt.IsZero()).To(BeFalse())

			evts := publisher.Events()
			Expect(evts).To(HaveLen(1))
			Expect(evts[0].Kind).To(Equal(events.KindNote))
			Expect(evts[0].ID).To(Equal(n.ID.Hex()))
			Expect(evts[0].Title).To(Equal("Vectors"))
			Expect(evts[0].Body).To(ContainSubstring("Vectors"))
		})

		Specify("invalid notes are rejected with field details and not stored", func() {
			draft := noteDraft("", true)
			draft.Content = ""

			_, err := notes.CreateAs(ctx, instructor, draft)
			Expect(err).To(MatchAppError(apperrors.ErrValidationFailed))
			Expect(apperrors.DetailsOf(err)).To(HaveKey("title"))
			Expect(apperrors.DetailsOf(err)).To(HaveKey("content"))

			total, _ := repos.Notes.Count(ctx, nil, "")
			Expect(total).To(BeZero())
			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	Describe("ListAs", func() {
		Specify("pages through 25 items as 10, 10 and 5", func() {
			for i := 0; i < 25; i++ {
				create("Note", true)
			}

			sizes := []int{}
			for page := 1; page <= 3; page++ {
				res, err := notes.ListAs(ctx, nil, query.Options{Page: page, Limit: 10})
				Expect(err).To(BeNil())
				Expect(res.Total).To(BeEquivalentTo(25))
				Expect(query.TotalPages(res.Total, 10)).To(Equal(3))
				sizes = append(sizes, len(res.Items))
			}
			Expect(sizes).To(Equal([]int{10, 10, 5}))
		})

		Specify("non-admins only see public items even when asking for private ones", func() {
			create("Public", true)
			create("Private", false)

			res, err := notes.ListAs(ctx, other, query.Options{Filter: query.Filter{query.Eq("isPublic", false)}})
			Expect(err).To(BeNil())
			Expect(res.Items).To(HaveLen(1))
			Expect(res.Items[0].Title).To(Equal("Public"))

			res, err = notes.ListAs(ctx, nil, query.Options{})
			Expect(err).To(BeNil())
			Expect(res.Total).To(BeEquivalentTo(1))
		})

		Specify("admins may filter on visibility", func() {
			create("Public", true)
			create("Private", false)

			res, err := notes.ListAs(ctx, admin, query.Options{Filter: query.Filter{query.Eq("isPublic", false)}})
			Expect(err).To(BeNil())
			Expect(res.Items).To(HaveLen(1))
			Expect(res.Items[0].Title).To(Equal("Private"))

			res, err = notes.ListAs(ctx, admin, query.Options{})
			Expect(err).To(BeNil())
			Expect(res.Total).To(BeEquivalentTo(2))
		})

		Specify("search matches words of the title and content", func() {
			create("Matrices", true)
			create("Probability", true)

			res, err := notes.ListAs(ctx, nil, query.Options{Search: "matrices"})
			Expect(err).To(BeNil())
			Expect(res.Items).To(HaveLen(1))
			Expect(res.Items[0].Title).To(Equal("Matrices"))
		})

		Specify("populate joins author profiles", func() {
			Expect(repos.Users.Insert(ctx, &models.User{
				ID: instructor.ID, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
				Role: models.RoleInstructor, IsActive: true,
			})).To(Succeed())
			create("Populated", true)

			res, err := notes.ListAs(ctx, nil, query.Options{Populate: true})
			Expect(err).To(BeNil())
			Expect(res.Items[0].Author.Profile).NotTo(BeNil())
			Expect(res.Items[0].Author.Profile.FullName).To(Equal("Ada Lovelace"))
		})
	})

	Specify("ListMine includes the actor's private items only", func() {
		create("Mine public", true)
		create("Mine private", false)
		_, err := notes.CreateAs(ctx, other, noteDraft("Theirs", true))
		Expect(err).To(BeNil())

		res, err := notes.ListMine(ctx, instructor, query.Options{})
		Expect(err).To(BeNil())
		Expect(res.Total).To(BeEquivalentTo(2))
		for _, n := range res.Items {
			Expect(n.Author.ID).To(Equal(instructor.ID))
		}
	})

	Describe("ViewAs", func() {
		Specify("counts views", func() {
			n := create("Viewed", true)
			for i := 0; i < 3; i++ {
				_, err := notes.ViewAs(ctx, nil, n.ID.Hex(), false)
				Expect(err).To(BeNil())
			}

			stored, _ := repos.Notes.FindByID(ctx, n.ID)
			Expect(stored.Views).To(BeEquivalentTo(3))
		})

		Specify("private items are forbidden to others and not counted", func() {
			n := create("Secret", false)

			_, err := notes.ViewAs(ctx, other, n.ID.Hex(), false)
			Expect(err).To(MatchAppError(apperrors.ErrPermissionDenied))
			_, err = notes.ViewAs(ctx, nil, n.ID.Hex(), false)
			Expect(err).To(MatchAppError(apperrors.ErrPermissionDenied))

			_, err = notes.ViewAs(ctx, instructor, n.ID.Hex(), false)
			Expect(err).To(BeNil())
			_, err = notes.ViewAs(ctx, admin, n.ID.Hex(), false)
			Expect(err).To(BeNil())

			stored, _ := repos.Notes.FindByID(ctx, n.ID)
			Expect(stored.Views).To(BeEquivalentTo(2))
		})

		Specify("malformed and unknown ids are distinguished", func() {
			_, err := notes.ViewAs(ctx, nil, "not-an-id", false)
			Expect(err).To(MatchAppError(apperrors.ErrInvalidIdentifier))

			_, err = notes.ViewAs(ctx, nil, primitive.NewObjectID().Hex(), false)
			Expect(err).To(MatchAppError(apperrors.ErrResourceNotFound))
		})
	})

	Specify("concurrent downloads are all counted", func() {
		n := create("Popular", true)

		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := notes.DownloadAs(ctx, nil, n.ID.Hex())
				Expect(err).To(BeNil())
			}()
		}
		wg.Wait()

		stored, _ := repos.Notes.FindByID(ctx, n.ID)
		Expect(stored.Downloads).To(BeEquivalentTo(40))
	})

	Describe("UpdateAs", func() {
		Specify("owner updates keep the author and the counters", func() {
			n := create("Draft", true)
			notes.IncrementViews(ctx, n.ID)
			notes.SetClock(fixedClock(time.Now().UTC().Add(time.Hour)))

			updated, err := notes.UpdateAs(ctx, instructor, n.ID.Hex(), func(n *models.Note) error {
				n.Title = "Final"
				n.AssignOwner(other.ID, other.Name)
				n.Views = 0
				return nil
			})
			Expect(err).To(BeNil())
			Expect(updated.Title).To(Equal("Final"))
			Expect(updated.Author.ID).To(Equal(instructor.ID))
			Expect(updated.UpdatedAt.After(updated.CreatedAt)).To(BeTrue())

			stored, _ := repos.Notes.FindByID(ctx, n.ID)
			Expect(stored.Title).To(Equal("Final"))
			Expect(stored.Views).To(BeEquivalentTo(1))
		})

		Specify("non-owners are forbidden and nothing changes", func() {
			n := create("Draft", true)

			_, err := notes.UpdateAs(ctx, other, n.ID.Hex(), func(n *models.Note) error {
				n.Title = "Hijacked"
				return nil
			})
			Expect(err).To(MatchAppError(apperrors.ErrPermissionDenied))

			stored, _ := repos.Notes.FindByID(ctx, n.ID)
			Expect(stored.Title).To(Equal("Draft"))
		})

		Specify("admins may update any item", func() {
			n := create("Draft", true)
			_, err := notes.UpdateAs(ctx, admin, n.ID.Hex(), func(n *models.Note) error {
				n.IsPublic = false
				return nil
			})
			Expect(err).To(BeNil())
		})
	})

	Describe("DeleteAs", func() {
		Specify("non-owners cannot delete", func() {
			n := create("Keep", true)
			Expect(notes.DeleteAs(ctx, other, n.ID.Hex())).To(MatchAppError(apperrors.ErrPermissionDenied))

			_, err := repos.Notes.FindByID(ctx, n.ID)
			Expect(err).To(BeNil())
		})

		Specify("owners delete and the item is gone", func() {
			n := create("Gone", true)
			Expect(notes.DeleteAs(ctx, instructor, n.ID.Hex())).To(Succeed())

			_, err := notes.GetAs(ctx, instructor, n.ID.Hex(), false)
			Expect(err).To(MatchAppError(apperrors.ErrResourceNotFound))
		})
	})
})
