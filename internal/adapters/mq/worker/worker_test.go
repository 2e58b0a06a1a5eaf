package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/camtrap/internal/adapters/mq/queue"
	"github.com/okian/camtrap/internal/adapters/mq/worker"
	"github.com/okian/camtrap/internal/domain/model"
	logging "github.com/okian/camtrap/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingHandler remembers which jobs it saw and fails the ones listed in fail.
type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{fail: make(map[string]error)}
}

func (h *recordingHandler) Handle(_ context.Context, j worker.Job) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, j.ID)
	return h.fail[j.ID]
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func job(id string) queue.Job {
	return queue.Job{ID: id, Species: model.Species{Name: id}}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		h := newRecordingHandler()
		w := worker.NewInMemoryWorker(q, h, worker.WithName("test-worker"))
		ctx := context.Background()

		convey.So(w.Name(), convey.ShouldEqual, "test-worker")

		convey.Convey("When jobs are queued and the queue is closed", func() {
			h.fail["bad"] = errors.New("boom")
			convey.So(q.Enqueue(ctx, job("a")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, job("bad")), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, job("b")), convey.ShouldBeTrue)
			convey.So(q.Close(), convey.ShouldBeNil)

			w.Run(ctx)

			convey.Convey("Then every job is handled in order and the loop returns", func() {
				convey.So(h.seen, convey.ShouldResemble, []string{"a", "bad", "b"})
				select {
				case <-w.Done():
				default:
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the worker is shut down while idle", func() {
			go w.Run(ctx)
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops without error and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the run context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			go w.Run(runCtx)
			cancel()

			convey.Convey("Then the worker returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When shutdown is bounded by an expired context on a busy worker", func() {
			release := make(chan struct{})
			busy := worker.NewInMemoryWorker(q, worker.HandlerFunc(func(context.Context, worker.Job) error {
				<-release
				return nil
			}))
			convey.So(q.Enqueue(ctx, job("slow")), convey.ShouldBeTrue)
			go busy.Run(ctx)
			for q.Len(ctx) != 0 {
				time.Sleep(time.Millisecond)
			}

			expired, cancel := context.WithTimeout(ctx, time.Millisecond)
			defer cancel()
			err := busy.Shutdown(expired)
			close(release)
			<-busy.Done()

			convey.Convey("Then a timeout error is returned", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		_ = logging.Init()
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		h := newRecordingHandler()
		h.fail["job-3"] = errors.New("no data")
		pool := worker.NewPool(3, q, h)

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When more jobs than the queue holds are submitted", func() {
			pool.Start(ctx)
			pool.Start(ctx)
			for i := 0; i < 20; i++ {
				convey.So(q.Submit(ctx, job(fmt.Sprintf("job-%d", i))), convey.ShouldBeNil)
			}
			convey.So(q.Close(), convey.ShouldBeNil)
			pool.Wait()

			convey.Convey("Then all of them are processed and failures are counted", func() {
				convey.So(h.count(), convey.ShouldEqual, 20)
				convey.So(pool.Processed(), convey.ShouldEqual, 20)
				convey.So(pool.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the pool is shut down", func() {
			pool.Start(ctx)
			err := pool.Shutdown(ctx)

			convey.Convey("Then the queue is closed and all workers return", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				pool.Wait()
			})
		})

		convey.Convey("When a pool that never started is waited on or shut down", func() {
			pool.Wait()
			err := pool.Shutdown(ctx)

			convey.Convey("Then nothing blocks", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newRecordingHandler())

		convey.Convey("Then one worker per CPU is created", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
