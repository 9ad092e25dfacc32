package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/intervue/internal/adapters/mq/queue"
	"github.com/okian/intervue/internal/adapters/mq/worker"
	"github.com/okian/intervue/internal/domain/model"
	logging "github.com/okian/intervue/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []string
	fail    map[string]error
	delay   time.Duration
}

func (r *recordingApplier) ApplyObservation(_ context.Context, o model.Observation) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[o.ID]; err != nil {
		return err
	}
	r.applied = append(r.applied, o.ID)
	return nil
}

func (r *recordingApplier) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.applied...)
}

func observation(id string) model.Observation {
	return model.Observation{ID: id, UserID: "u-" + id, DomainKey: "tech", SkillName: "System Design", Score: 70}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		app := &recordingApplier{fail: map[string]error{"bad": errors.New("store down")}}
		w := worker.NewInMemoryWorker(q, app, worker.WithName("w1"), worker.WithLogger(logging.NewNop()))

		ctx := context.Background()
		for _, id := range []string{"a", "bad", "b"} {
			convey.So(q.Enqueue(ctx, observation(id)), convey.ShouldBeTrue)
		}

		convey.Convey("When the queue is closed", func() {
			_ = q.Close()
			w.Run(ctx)

			convey.Convey("Then every observation is attempted and failures do not stop the worker", func() {
				convey.So(app.ids(), convey.ShouldResemble, []string{"a", "b"})
			})
		})

		convey.Convey("When the worker is stopped", func() {
			go w.Run(ctx)
			convey.So(w.Stop(ctx), convey.ShouldBeNil)
			convey.So(w.Stop(ctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		app := &recordingApplier{fail: map[string]error{}}
		pool := worker.NewPool(4, q, app, worker.WithLogger(logging.NewNop()))
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx := context.Background()
		pool.Start(ctx)
		for i := 0; i < 200; i++ {
			id := fmt.Sprintf("o%d", i)
			if i%50 == 0 {
				app.mu.Lock()
				app.fail[id] = errors.New("boom")
				app.mu.Unlock()
			}
			convey.So(q.Enqueue(ctx, observation(id)), convey.ShouldBeTrue)
		}

		convey.Convey("When the pool shuts down", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then the backlog is drained", func() {
				ok, failed := pool.Processed()
				convey.So(ok, convey.ShouldEqual, 196)
				convey.So(failed, convey.ShouldEqual, 4)
				convey.So(app.ids(), convey.ShouldHaveLength, 196)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given workers that cannot finish in time", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		app := &recordingApplier{delay: 200 * time.Millisecond}
		pool := worker.NewPool(1, q, app, worker.WithLogger(logging.NewNop()))
		pool.Start(context.Background())
		for i := 0; i < 5; i++ {
			q.Enqueue(context.Background(), observation(fmt.Sprintf("slow%d", i)))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := pool.Shutdown(ctx)

		convey.Convey("Then the backlog is abandoned", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(app.ids()), convey.ShouldBeLessThan, 5)
		})
	})
}
