package queue

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory replay queue", t, func() {
		Convey("jobs round-trip in order", func() {
			q := NewInMemoryQueue(WithCapacity(8))
			defer func() { _ = q.Close() }()

			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2022}), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2023}), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			out := q.Dequeue(ctx)
			first := <-out
			So(first.Season, ShouldEqual, 2022)
			second := <-out
			So(second.Season, ShouldEqual, 2023)
		})

		Convey("a full queue rejects without blocking", func() {
			q := NewInMemoryQueue(WithCapacity(1))
			defer func() { _ = q.Close() }()

			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2023}), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2024}), ShouldBeFalse)
			So(q.Len(ctx), ShouldEqual, 1)
		})

		Convey("a closed queue rejects new jobs", func() {
			q := NewInMemoryQueue()
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2023}), ShouldBeFalse)

			// Closing twice reports the terminal state.
			So(q.Close(), ShouldEqual, ErrClosed)
		})

		Convey("closing drains and then closes the dequeue channel", func() {
			q := NewInMemoryQueue(WithCapacity(4))
			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2023}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			out := q.Dequeue(ctx)
			j, ok := <-out
			So(ok, ShouldBeTrue)
			So(j.Season, ShouldEqual, 2023)

			_, ok = <-out
			So(ok, ShouldBeFalse)
		})

		Convey("a cancelled context stops the dequeue pump", func() {
			q := NewInMemoryQueue(WithCapacity(4))
			defer func() { _ = q.Close() }()

			cancelled, cancel := context.WithCancel(ctx)
			out := q.Dequeue(cancelled)
			cancel()

			So(q.Enqueue(ctx, Job{League: "NFL", Season: 2023}), ShouldBeTrue)
			select {
			case _, ok := <-out:
				// The pump either closed or delivered the job it had
				// already pulled before cancellation.
				_ = ok
			case <-time.After(200 * time.Millisecond):
				// Pump parked on a cancelled context; nothing more
				// arrives.
			}
		})
	})
}
