package watcher

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// DebouncedWatcher wraps a Watcher and holds back each file's changes
// until the file has been quiet for the delay. The changes are then
// delivered as one event with the operations combined, so the burst of
// create and write operations an editor makes on save arrives as one
// event.
//
// A single goroutine owns the timer. Files that become quiet together are
// delivered in path order.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*quietPeriod

	events chan Event
	errors chan error
	stop   chan struct{}
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// quietPeriod is the combined change to one file and the time it may be
// delivered.
type quietPeriod struct {
	event Event
	due   time.Time
}

// NewDebouncedWatcher wraps inner with a debounce delay.
func NewDebouncedWatcher(inner Watcher, delay time.Duration, bufSize int) *DebouncedWatcher {
	def := DefaultConfig()
	if delay <= 0 {
		delay = def.DebounceDelay
	}
	if bufSize <= 0 {
		bufSize = def.BufferSize
	}

	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		pending: make(map[string]*quietPeriod),
		events:  make(chan Event, bufSize),
		errors:  make(chan error, bufSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go dw.loop()
	return dw
}

func (dw *DebouncedWatcher) Watch(path string) error   { return dw.inner.Watch(path) }
func (dw *DebouncedWatcher) Unwatch(path string) error { return dw.inner.Unwatch(path) }
func (dw *DebouncedWatcher) Events() <-chan Event      { return dw.events }
func (dw *DebouncedWatcher) Errors() <-chan error      { return dw.errors }
func (dw *DebouncedWatcher) WatchedPaths() []string    { return dw.inner.WatchedPaths() }

// Pending returns the number of files whose changes are still held back.
func (dw *DebouncedWatcher) Pending() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

// Close drops held-back changes, closes the channels and closes the inner
// watcher. Later calls return the first call's result.
func (dw *DebouncedWatcher) Close() error {
	dw.closeOnce.Do(func() {
		close(dw.stop)
		<-dw.done

		dw.mu.Lock()
		clear(dw.pending)
		dw.mu.Unlock()

		close(dw.events)
		close(dw.errors)
		dw.closeErr = dw.inner.Close()
	})
	return dw.closeErr
}

func (dw *DebouncedWatcher) loop() {
	defer close(dw.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-dw.stop:
			return

		case ev, ok := <-dw.inner.Events():
			if !ok {
				return
			}
			timer.Reset(dw.hold(ev, time.Now()))

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			select {
			case dw.errors <- err:
			default:
			}

		case now := <-timer.C:
			ready, next := dw.release(now)
			for _, ev := range ready {
				select {
				case dw.events <- ev:
				case <-dw.stop:
					return
				}
			}
			if next > 0 {
				timer.Reset(next)
			}
		}
	}
}

// hold merges ev into its file's quiet period and returns the wait until
// the earliest quiet period ends.
func (dw *DebouncedWatcher) hold(ev Event, now time.Time) time.Duration {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if q, ok := dw.pending[ev.Path]; ok {
		q.event.Op |= ev.Op
		q.event.Timestamp = ev.Timestamp
		q.due = now.Add(dw.delay)
	} else {
		dw.pending[ev.Path] = &quietPeriod{event: ev, due: now.Add(dw.delay)}
	}
	return dw.nextLocked(now)
}

// release removes the files whose quiet period has ended and returns their
// events in path order, with the wait until the next one ends or zero
// when nothing is held back.
func (dw *DebouncedWatcher) release(now time.Time) ([]Event, time.Duration) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	var ready []Event
	for path, q := range dw.pending {
		if !q.due.After(now) {
			ready = append(ready, q.event)
			delete(dw.pending, path)
		}
	}
	slices.SortFunc(ready, func(a, b Event) int { return cmp.Compare(a.Path, b.Path) })

	if len(dw.pending) == 0 {
		return ready, 0
	}
	return ready, dw.nextLocked(now)
}

func (dw *DebouncedWatcher) nextLocked(now time.Time) time.Duration {
	var first time.Time
	for _, q := range dw.pending {
		if first.IsZero() || q.due.Before(first) {
			first = q.due
		}
	}
	return max(first.Sub(now), time.Millisecond)
}

var _ Watcher = (*DebouncedWatcher)(nil)
