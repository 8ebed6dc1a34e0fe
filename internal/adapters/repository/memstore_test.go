package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/specious/internal/domain/round"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer func() { _ = store.Close() }()

		So(store.Count(ctx), ShouldEqual, 0)

		Convey("When a session is created", func() {
			sess, err := store.Create(ctx, round.New(nil), 3)

			Convey("Then it gets a uuid and is retrievable", func() {
				So(err, ShouldBeNil)
				_, parseErr := uuid.Parse(sess.ID)
				So(parseErr, ShouldBeNil)
				So(sess.FilterTaxonID, ShouldEqual, 3)
				So(store.Count(ctx), ShouldEqual, 1)

				got, err := store.Get(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, sess)
			})

			Convey("Then deleting it removes it", func() {
				So(store.Delete(ctx, sess.ID), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)

				_, err := store.Get(ctx, sess.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.Delete(ctx, sess.ID), ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a session is created without a machine", func() {
			_, err := store.Create(ctx, nil, 0)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrNilMachine), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When an unknown id is requested", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_Capacity(t *testing.T) {
	Convey("Given a store capped at two sessions", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		store := NewMemoryStore(ctx, WithMaxSessions(2), WithClock(clock.Now))
		defer func() { _ = store.Close() }()

		first, _ := store.Create(ctx, round.New(nil), 0)
		clock.Add(time.Second)
		second, _ := store.Create(ctx, round.New(nil), 0)
		clock.Add(time.Second)

		Convey("When the first session was used recently and a third is created", func() {
			_, err := store.Get(ctx, first.ID)
			So(err, ShouldBeNil)
			clock.Add(time.Second)

			third, err := store.Create(ctx, round.New(nil), 0)
			So(err, ShouldBeNil)

			Convey("Then the least recently used session is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)

				_, err := store.Get(ctx, second.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)

				_, err = store.Get(ctx, first.ID)
				So(err, ShouldBeNil)
				_, err = store.Get(ctx, third.ID)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMemoryStore_IdleExpiry(t *testing.T) {
	Convey("Given a store with a one minute idle TTL", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		store := NewMemoryStore(ctx,
			WithIdleTTL(time.Minute),
			WithSweepInterval(time.Hour),
			WithClock(clock.Now),
		)
		defer func() { _ = store.Close() }()

		stale, _ := store.Create(ctx, round.New(nil), 0)
		clock.Add(45 * time.Second)
		fresh, _ := store.Create(ctx, round.New(nil), 0)
		clock.Add(30 * time.Second)

		Convey("When an idle session is requested", func() {
			_, err := store.Get(ctx, stale.ID)

			Convey("Then it is reported as not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the store is swept", func() {
			removed := store.Sweep()

			Convey("Then only idle sessions are dropped", func() {
				So(removed, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 1)
				_, err := store.Get(ctx, fresh.ID)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a store without idle expiry", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer func() { _ = store.Close() }()
		_, _ = store.Create(ctx, round.New(nil), 0)

		Convey("Then sweeping is a no-op", func() {
			So(store.Sweep(), ShouldEqual, 0)
			So(store.Count(ctx), ShouldEqual, 1)
		})
	})
}

func TestMemoryStore_Close(t *testing.T) {
	Convey("Given a store with a running sweeper", t, func() {
		store := NewMemoryStore(context.Background(),
			WithIdleTTL(time.Minute),
			WithSweepInterval(time.Millisecond),
		)

		Convey("Then Close stops it and is idempotent", func() {
			So(store.Close(), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})
	})
}

func TestMemoryStore_Concurrency(t *testing.T) {
	Convey("Given concurrent creators and readers", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx, WithMaxSessions(50))
		defer func() { _ = store.Close() }()

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					sess, err := store.Create(ctx, round.New(nil), 0)
					if err != nil {
						continue
					}
					_, _ = store.Get(ctx, sess.ID)
					_ = store.Count(ctx)
				}
			}()
		}
		wg.Wait()

		Convey("Then the cap holds", func() {
			So(store.Count(ctx), ShouldEqual, 50)
		})
	})
}
