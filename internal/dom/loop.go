package dom

import (
	"context"
	"sort"
	"sync"
	"time"
)

// maxFlush bounds one Flush so a task that keeps re-posting itself cannot
// hang the caller.
const maxFlush = 100000

// TimerID identifies a timer armed with SetTimeout or SetInterval.
type TimerID int

type timer struct {
	id       TimerID
	due      time.Duration
	interval time.Duration
	fn       func()
	seq      int
}

// Loop is a cooperative task queue with a virtual clock. Tasks run to
// completion one at a time on the goroutine calling Flush, Advance, or Run.
// Post is the only method safe to call from other goroutines.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	now    time.Duration
	timers map[TimerID]*timer
	nextID TimerID
	seq    int
}

// NewLoop returns an empty loop at virtual time zero.
func NewLoop() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		timers: make(map[TimerID]*timer),
	}
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Flush runs queued tasks, including tasks queued by them, until the queue
// is empty. It returns the number of tasks run.
func (l *Loop) Flush() int {
	ran := 0
	for ran < maxFlush {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return ran
		}
		fn := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		fn()
		ran++
	}
	return ran
}

// Now returns the virtual time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// SetTimeout arms a one-shot timer.
func (l *Loop) SetTimeout(d time.Duration, fn func()) TimerID {
	return l.arm(d, 0, fn)
}

// SetInterval arms a repeating timer. Intervals shorter than a millisecond
// are raised to one millisecond.
func (l *Loop) SetInterval(d time.Duration, fn func()) TimerID {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return l.arm(d, d, fn)
}

func (l *Loop) arm(d, interval time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.seq++
	id := l.nextID
	l.timers[id] = &timer{id: id, due: l.now + d, interval: interval, fn: fn, seq: l.seq}
	return id
}

// ClearTimer disarms a timer. Clearing an unknown id is a no-op.
func (l *Loop) ClearTimer(id TimerID) {
	l.mu.Lock()
	delete(l.timers, id)
	l.mu.Unlock()
}

// ActiveTimers returns the number of armed timers.
func (l *Loop) ActiveTimers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Advance moves the virtual clock forward by d, firing due timers in order.
// Queued tasks are flushed before the first timer and after each one.
func (l *Loop) Advance(d time.Duration) {
	l.Flush()
	l.mu.Lock()
	target := l.now + d
	l.mu.Unlock()

	for {
		t := l.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
		l.Flush()
	}

	l.mu.Lock()
	if l.now < target {
		l.now = target
	}
	l.mu.Unlock()
}

// nextDue pops the earliest timer due at or before target, re-arming
// intervals, and moves the clock to its due time.
func (l *Loop) nextDue(target time.Duration) *timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	due := make([]*timer, 0, len(l.timers))
	for _, t := range l.timers {
		if t.due <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	t := due[0]
	l.now = t.due
	fired := *t
	if t.interval > 0 {
		l.seq++
		t.due += t.interval
		t.seq = l.seq
	} else {
		delete(l.timers, t.id)
	}
	return &fired
}

// Run drives the loop from wall-clock time until ctx is done. Posted tasks
// run as soon as they arrive; timers are advanced every tick.
func (l *Loop) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.Flush()
		case now := <-ticker.C:
			l.Advance(now.Sub(last))
			last = now
		}
	}
}
