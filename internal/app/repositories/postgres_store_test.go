package repositories

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("PostgresStore SQL", func() {
	store := NewPostgresStore[models.Note](nil, NoteSchema())

	Specify("filters become column predicates", func() {
		owner := primitive.NewObjectID()
		b, err := store.where(store.selectQuery(), query.Filter{
			query.Eq("isPublic", true),
			query.Eq("author", owner),
			query.Match("subject", "math"),
		}, "")
		Expect(err).To(BeNil())

		sql, args, err := b.ToSql()
		Expect(err).To(BeNil())
		Expect(sql).To(ContainSubstring("FROM notes WHERE is_public = $1 AND author_id = $2 AND subject ~* $3"))
		Expect(args).To(Equal([]interface{}{true, owner.Hex(), "math"}))
	})

	Specify("search ORs the terms against the text vector", func() {
		b, err := store.where(store.selectQuery(), nil, "Graphs, trees")
		Expect(err).To(BeNil())

		sql, args, err := b.ToSql()
		Expect(err).To(BeNil())
		Expect(sql).To(ContainSubstring("search_vector @@ to_tsquery('simple', $1)"))
		Expect(args).To(Equal([]interface{}{"graphs | trees"}))
	})

	Specify("in over ids expands to a list", func() {
		ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
		b, err := store.where(store.selectQuery(), query.Filter{query.In("_id", ids)}, "")
		Expect(err).To(BeNil())

		sql, _, err := b.ToSql()
		Expect(err).To(BeNil())
		Expect(sql).To(ContainSubstring("id IN ($1,$2)"))
	})

	Specify("unknown fields fail", func() {
		_, err := store.where(store.selectQuery(), query.Filter{query.Eq("nope", 1)}, "")
		Expect(err).NotTo(BeNil())
	})

	Specify("unknown sort keys are rejected before querying", func() {
		_, err := store.Find(context.Background(), query.Query{Sort: []query.SortField{{Field: "bogus", Desc: true}}})
		Expect(errors.Is(err, apperrors.ErrBadRequest)).To(BeTrue())
	})
})
