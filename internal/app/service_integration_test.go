package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/intervue/internal/adapters/repository"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func averageOf(svc *service.Service, user, category string) float64 {
	doc, err := svc.Progress(context.Background(), user)
	if err != nil || doc == nil {
		return -1
	}
	c, ok := doc.Category(category)
	if !ok {
		return -1
	}
	return c.AverageScore
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When observations for several users are queued", func() {
			batch := []model.Observation{
				{ID: "o-1", UserID: "u-1", DomainKey: "tech", SkillName: "Programming Languages", Proficient: true, Score: 85},
				{ID: "o-2", UserID: "u-2", DomainKey: "finance", SkillName: "Budgeting", Score: 40},
				{ID: "o-3", UserID: "u-3", DomainKey: "hr", SkillName: "Recruitment", Proficient: true, Score: 90},
			}
			for _, o := range batch {
				dup, err := svc.Enqueue(ctx, o)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			}

			Convey("Then every user ends up with progress", func() {
				So(eventually(func() bool { return averageOf(svc, "u-1", "Technology") == 85 }), ShouldBeTrue)
				So(eventually(func() bool { return averageOf(svc, "u-2", "Finance") == 40 }), ShouldBeTrue)
				So(eventually(func() bool { return averageOf(svc, "u-3", "Human Resources") == 90 }), ShouldBeTrue)
				So(eventually(func() bool { return svc.GetStats(ctx)["trackedUsers"] == 3 }), ShouldBeTrue)
			})

			Convey("Then replaying the batch is a no-op", func() {
				for _, o := range batch {
					dup, err := svc.Enqueue(ctx, o)
					So(err, ShouldBeNil)
					So(dup, ShouldBeTrue)
				}
			})
		})

		Convey("When many users are observed concurrently", func() {
			const users = 50
			var wg sync.WaitGroup
			errs := make(chan error, users)
			for i := 0; i < users; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := svc.Enqueue(ctx, model.Observation{
						UserID: fmt.Sprintf("user-%d", i), DomainKey: "tech", SkillName: "System Design", Score: float64(i),
					})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			Convey("Then all of them are tracked", func() {
				So(eventually(func() bool { return svc.GetStats(ctx)["trackedUsers"] == users }), ShouldBeTrue)
				So(averageOf(svc, "user-42", "Technology"), ShouldEqual, 42.0)
			})
		})
	})
}

func TestServiceCompareAndSwap(t *testing.T) {
	Convey("Given a compare-and-swap gateway", t, func() {
		gw := repository.NewGateway(repository.NewMemoryStore(), taxonomy.Default(),
			repository.WithConsistency(repository.CompareAndSwap),
			repository.WithMaxRetries(100))
		svc := service.New(service.WithGateway(gw))
		ctx := context.Background()

		Convey("When one user's skills are recorded concurrently", func() {
			scores := map[string]float64{
				"Programming Languages": 80,
				"System Design":         60,
				"Code Quality":          90,
				"Problem Solving":       70,
			}
			var wg sync.WaitGroup
			errs := make(chan error, len(scores))
			for name, score := range scores {
				wg.Add(1)
				go func(name string, score float64) {
					defer wg.Done()
					_, err := svc.RecordObservation(ctx, model.Observation{
						UserID: "u-1", DomainKey: "tech", SkillName: name, Score: score,
					})
					errs <- err
				}(name, score)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			Convey("Then no update is lost", func() {
				doc, err := svc.Progress(ctx, "u-1")
				So(err, ShouldBeNil)
				c, _ := doc.Category("Technology")
				So(c.Skills, ShouldHaveLength, 4)
				So(c.AverageScore, ShouldEqual, 75.0)
			})
		})
	})
}

func TestServiceBackpressure(t *testing.T) {
	Convey("Given a single worker stuck on a slow store and a queue of one", t, func() {
		store := &gatedStore{MemoryStore: repository.NewMemoryStore(), release: make(chan struct{})}
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithGateway(repository.NewGateway(store, taxonomy.Default())),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When more observations arrive than fit", func() {
			var rejected int
			for i := 0; i < 3; i++ {
				_, err := svc.Enqueue(ctx, model.Observation{
					UserID: fmt.Sprintf("u-%d", i), DomainKey: "hr", SkillName: "Recruitment", Score: 50,
				})
				if errors.Is(err, service.ErrBackpressure) {
					rejected++
				}
			}
			store.open()
			svc.Stop()

			Convey("Then the overflow is rejected", func() {
				So(rejected, ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}

type gatedStore struct {
	*repository.MemoryStore
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) Get(ctx context.Context, userID string) (*progress.UserProgress, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.MemoryStore.Get(ctx, userID)
}

func (s *gatedStore) open() { s.once.Do(func() { close(s.release) }) }
