package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleDoc(userID string) *progress.UserProgress {
	return &progress.UserProgress{
		UserID: userID,
		Categories: []progress.Category{{
			Name:         "Technology",
			AverageScore: 85,
			Skills:       []progress.Skill{{Name: "Programming Languages", Proficient: true, Score: 85}},
		}},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// storeContract runs the same behaviour checks against every backend.
func storeContract(newStore func() Store) {
	ctx := context.Background()

	Convey("When reading a missing user", func() {
		s := newStore()
		defer s.Close()
		_, err := s.Get(ctx, "nobody")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("When upserting and reading back", func() {
		s := newStore()
		defer s.Close()
		v1, err := s.Put(ctx, sampleDoc("u1"), AnyVersion)
		So(err, ShouldBeNil)
		So(v1, ShouldEqual, 1)
		v2, err := s.Put(ctx, sampleDoc("u1"), AnyVersion)
		So(err, ShouldBeNil)
		So(v2, ShouldEqual, 2)

		got, err := s.Get(ctx, "u1")
		So(err, ShouldBeNil)
		So(got.Version, ShouldEqual, 2)
		So(got.Categories, ShouldResemble, sampleDoc("u1").Categories)
		So(got.CreatedAt.Equal(sampleDoc("u1").CreatedAt), ShouldBeTrue)

		n, err := s.Count(ctx)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
	})

	Convey("When writing with version preconditions", func() {
		s := newStore()
		defer s.Close()
		v, err := s.Put(ctx, sampleDoc("u2"), 0)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 1)

		_, err = s.Put(ctx, sampleDoc("u2"), 0)
		So(errors.Is(err, ErrConflict), ShouldBeTrue)

		_, err = s.Put(ctx, sampleDoc("u2"), 7)
		So(errors.Is(err, ErrConflict), ShouldBeTrue)

		v, err = s.Put(ctx, sampleDoc("u2"), 1)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 2)

		_, err = s.Put(ctx, sampleDoc("ghost"), 3)
		So(errors.Is(err, ErrConflict), ShouldBeTrue)
	})

	Convey("When deleting", func() {
		s := newStore()
		defer s.Close()
		_, _ = s.Put(ctx, sampleDoc("u3"), AnyVersion)
		So(s.Delete(ctx, "u3"), ShouldBeNil)
		So(s.Delete(ctx, "u3"), ShouldBeNil)
		_, err := s.Get(ctx, "u3")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("When the document has no user id", func() {
		s := newStore()
		defer s.Close()
		_, err := s.Put(ctx, &progress.UserProgress{}, AnyVersion)
		So(err, ShouldNotBeNil)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		storeContract(func() Store { return NewMemoryStore() })
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an in-memory sqlite store", t, func() {
		storeContract(func() Store {
			s, err := NewSQLiteStore(context.Background(), ":memory:")
			So(err, ShouldBeNil)
			return s
		})
	})
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("INTERVUE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("INTERVUE_TEST_DATABASE_URL not set")
	}
	Convey("Given a postgres store", t, func() {
		storeContract(func() Store {
			s, err := NewPostgresStore(context.Background(), url, WithMaxConns(4))
			So(err, ShouldBeNil)
			_, err = s.pool.Exec(context.Background(), `TRUNCATE user_progress`)
			So(err, ShouldBeNil)
			return s
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given driver names", t, func() {
		s, err := Open(context.Background(), "memory", "", "")
		So(err, ShouldBeNil)
		So(s.Driver(), ShouldEqual, "memory")

		s, err = Open(context.Background(), "sqlite", ":memory:", "")
		So(err, ShouldBeNil)
		So(s.Driver(), ShouldEqual, "sqlite")
		So(s.Close(), ShouldBeNil)

		_, err = Open(context.Background(), "mongo", "", "")
		So(errors.Is(err, ErrUnknownDriver), ShouldBeTrue)
	})
}

// failingStore fails every call, to exercise PersistenceError wrapping.
type failingStore struct{ MemoryStore }

var errDisk = errors.New("disk on fire")

func (*failingStore) Get(context.Context, string) (*progress.UserProgress, error) {
	return nil, errDisk
}
func (*failingStore) Put(context.Context, *progress.UserProgress, int64) (int64, error) {
	return 0, errDisk
}

func addSkill(agg *progress.Aggregator, domain, skill string, score float64) MutateFunc {
	return func(cur *progress.UserProgress) (*progress.UserProgress, error) {
		return agg.Apply(cur, domain, skill, score >= 70, score)
	}
}

func TestGateway(t *testing.T) {
	ctx := context.Background()
	tax := taxonomy.Default()
	agg := progress.NewAggregator(tax)

	Convey("Given a gateway over a memory store", t, func() {
		store := NewMemoryStore()
		g := NewGateway(store, tax, WithLogger(logger.NewNop()))

		Convey("When the user has no document", func() {
			doc, err := g.Load(ctx, "new-user")
			So(err, ShouldBeNil)
			So(doc, ShouldBeNil)
		})

		Convey("When the stored document has a foreign category", func() {
			obsolete := sampleDoc("legacy")
			obsolete.Categories = append(obsolete.Categories, progress.Category{Name: "Obsolete Domain", AverageScore: 10})
			_, _ = store.Put(ctx, obsolete, AnyVersion)

			doc, err := g.Load(ctx, "legacy")

			Convey("Then it is purged and reported as absent", func() {
				So(err, ShouldBeNil)
				So(doc, ShouldBeNil)
				_, err := store.Get(ctx, "legacy")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the next update starts a fresh document", func() {
				next, err := g.Update(ctx, "legacy", addSkill(agg, "Finance", "Budgeting", 60))
				So(err, ShouldBeNil)
				So(next.Categories, ShouldHaveLength, 1)
				So(next.Categories[0].Name, ShouldEqual, "Finance")
			})
		})

		Convey("When updating twice", func() {
			_, err := g.Update(ctx, "u", addSkill(agg, "Technology", "Programming Languages", 85))
			So(err, ShouldBeNil)
			doc, err := g.Update(ctx, "u", addSkill(agg, "Technology", "System Design", 55))
			So(err, ShouldBeNil)

			Convey("Then the stored document reflects both", func() {
				So(doc.Categories[0].AverageScore, ShouldEqual, 70.0)
				loaded, _ := g.Load(ctx, "u")
				So(loaded.Categories, ShouldResemble, doc.Categories)
				So(loaded.Version, ShouldEqual, 2)
				n, _ := g.Count(ctx)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the mutation fails", func() {
			_, err := g.Update(ctx, "u", addSkill(agg, "Technology", "System Design", 900))

			Convey("Then nothing is written", func() {
				So(errors.Is(err, progress.ErrInvalidScore), ShouldBeTrue)
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When an update races in last-write-wins mode", func() {
			calls := 0
			doc, err := g.Update(ctx, "race", func(cur *progress.UserProgress) (*progress.UserProgress, error) {
				calls++
				if calls == 1 {
					_, innerErr := g.Update(ctx, "race", addSkill(agg, "Technology", "System Design", 55))
					So(innerErr, ShouldBeNil)
				}
				return agg.Apply(cur, "Technology", "Programming Languages", true, 85)
			})

			Convey("Then the concurrent change is lost", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 1)
				So(doc.Categories[0].Skills, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a compare-and-swap gateway", t, func() {
		store := NewMemoryStore()
		g := NewGateway(store, tax, WithConsistency(CompareAndSwap), WithMaxRetries(50), WithLogger(logger.NewNop()))
		So(g.Consistency(), ShouldEqual, CompareAndSwap)

		Convey("When an update races", func() {
			calls := 0
			doc, err := g.Update(ctx, "race", func(cur *progress.UserProgress) (*progress.UserProgress, error) {
				calls++
				if calls == 1 {
					_, innerErr := g.Update(ctx, "race", addSkill(agg, "Technology", "System Design", 55))
					So(innerErr, ShouldBeNil)
				}
				return agg.Apply(cur, "Technology", "Programming Languages", true, 85)
			})

			Convey("Then the outer update retries and keeps both skills", func() {
				So(err, ShouldBeNil)
				So(calls, ShouldEqual, 2)
				So(doc.Categories[0].Skills, ShouldHaveLength, 2)
				So(doc.Categories[0].AverageScore, ShouldEqual, 70.0)
			})
		})

		Convey("When many goroutines update the same user", func() {
			skills := taxonomy.Default().Domains()[2].Skills // tech
			var wg sync.WaitGroup
			errs := make(chan error, len(skills))
			for i, sk := range skills {
				wg.Add(1)
				go func(i int, sk string) {
					defer wg.Done()
					_, err := g.Update(ctx, "busy", addSkill(agg, "Technology", sk, float64(50+i)))
					errs <- err
				}(i, sk)
			}
			wg.Wait()
			close(errs)

			Convey("Then no update is lost", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				doc, _ := g.Load(ctx, "busy")
				So(doc.Categories[0].Skills, ShouldHaveLength, len(skills))
			})
		})

		Convey("When the retry budget is exhausted", func() {
			tight := NewGateway(store, tax, WithConsistency(CompareAndSwap), WithMaxRetries(0), WithLogger(logger.NewNop()))
			_, err := tight.Update(ctx, "contended", func(cur *progress.UserProgress) (*progress.UserProgress, error) {
				_, _ = store.Put(ctx, sampleDoc("contended"), AnyVersion)
				return agg.Apply(cur, "Finance", "Budgeting", false, 20)
			})
			So(errors.Is(err, ErrConflict), ShouldBeTrue)
		})
	})

	Convey("Given a failing store", t, func() {
		g := NewGateway(&failingStore{}, tax, WithLogger(logger.NewNop()))

		Convey("Then failures surface as persistence errors", func() {
			_, err := g.Load(ctx, "u")
			var pe *PersistenceError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Op, ShouldEqual, "load")
			So(errors.Is(err, ErrPersistence), ShouldBeTrue)
			So(errors.Is(err, errDisk), ShouldBeTrue)

			err = g.Save(ctx, sampleDoc("u"))
			So(errors.Is(err, ErrPersistence), ShouldBeTrue)
			So(fmt.Sprint(err), ShouldContainSubstring, "save")
		})
	})
}

func TestParseConsistency(t *testing.T) {
	Convey("Given consistency strings", t, func() {
		c, err := ParseConsistency("")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, LastWriteWins)
		c, err = ParseConsistency("COMPARE_AND_SWAP")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, CompareAndSwap)
		_, err = ParseConsistency("eventual")
		So(err, ShouldNotBeNil)
	})
}
