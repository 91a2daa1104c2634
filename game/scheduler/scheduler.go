// Package scheduler sequences timed callbacks on a logical clock.
//
// A Scheduler keeps two lists: per-frame tasks, run on every Tick, and
// timeout/interval tasks, kept sorted by target time and run once the
// clock reaches them. Tasks registered from inside a callback are ordered
// against the tasks already queued, so nested chains of timeouts fire in
// the order their target times were computed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrInvalidTask is wrapped by the panic raised for a malformed task.
var ErrInvalidTask = errors.New("scheduler: invalid task")

// Mode is how a task is dispatched. The zero value is invalid.
type Mode int

const (
	Timeout Mode = iota + 1
	Interval
	PerFrame
)

func (m Mode) String() string {
	switch m {
	case Timeout:
		return "timeout"
	case Interval:
		return "interval"
	case PerFrame:
		return "per-frame"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Task is a callback plus its dispatch mode. Delay is ignored for
// per-frame tasks.
type Task struct {
	Mode     Mode
	Delay    time.Duration
	Callback func(now time.Duration)

	target time.Duration
}

// Target is the clock time the task is due at.
func (t *Task) Target() time.Duration { return t.target }

// Stats provides statistics about scheduler execution.
type Stats struct {
	Now              time.Duration
	Ticks            int64
	Pending          int
	PerFrameTasks    int
	FrameRuns        int64
	TimeoutRuns      int64
	IntervalRuns     int64
	LastTickDuration time.Duration
	MaxTickDuration  time.Duration
}

// Scheduler is not safe for concurrent use; Run takes a lock around each
// tick for callers that share the scheduled state.
type Scheduler struct {
	now      time.Duration
	perFrame []*Task
	queue    []*Task
	stats    Stats
}

func New() *Scheduler {
	return &Scheduler{}
}

// AddTask registers t. Timeout and interval tasks become due at
// Now()+Delay. It panics on a missing callback or an unknown mode.
func (s *Scheduler) AddTask(t Task) *Task {
	if t.Callback == nil {
		panic(fmt.Errorf("%w: missing callback", ErrInvalidTask))
	}
	task := &t
	switch t.Mode {
	case PerFrame:
		s.perFrame = append(s.perFrame, task)
	case Timeout, Interval:
		if t.Mode == Interval && t.Delay <= 0 {
			panic(fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidTask, t.Delay))
		}
		task.target = s.now + t.Delay
		s.insert(task)
	default:
		panic(fmt.Errorf("%w: unknown mode %s", ErrInvalidTask, t.Mode))
	}
	return task
}

// insert keeps the queue sorted by target; equal targets stay in
// registration order.
func (s *Scheduler) insert(task *Task) {
	i := sort.Search(len(s.queue), func(i int) bool {
		return s.queue[i].target > task.target
	})
	s.queue = append(s.queue, nil)
	copy(s.queue[i+1:], s.queue[i:])
	s.queue[i] = task
}

// After runs fn once, delay after the current clock time.
func (s *Scheduler) After(delay time.Duration, fn func()) {
	s.AddTask(Task{Mode: Timeout, Delay: delay, Callback: func(time.Duration) { fn() }})
}

// Every runs fn each interval.
func (s *Scheduler) Every(interval time.Duration, fn func(now time.Duration)) *Task {
	return s.AddTask(Task{Mode: Interval, Delay: interval, Callback: fn})
}

// EachFrame runs fn on every tick.
func (s *Scheduler) EachFrame(fn func(now time.Duration)) *Task {
	return s.AddTask(Task{Mode: PerFrame, Callback: fn})
}

// Tick advances the clock to now, runs the per-frame tasks, then every
// queued task whose target is not after now.
func (s *Scheduler) Tick(now time.Duration) {
	start := time.Now()
	if now > s.now {
		s.now = now
	}
	s.stats.Ticks++

	for _, task := range append([]*Task(nil), s.perFrame...) {
		task.Callback(s.now)
		s.stats.FrameRuns++
	}

	for len(s.queue) > 0 && s.queue[0].target <= s.now {
		task := s.queue[0]
		s.queue = s.queue[1:]
		task.Callback(s.now)
		if task.Mode == Interval {
			s.stats.IntervalRuns++
			task.target = s.now + task.Delay
			s.insert(task)
		} else {
			s.stats.TimeoutRuns++
		}
	}

	elapsed := time.Since(start)
	s.stats.LastTickDuration = elapsed
	if elapsed > s.stats.MaxTickDuration {
		s.stats.MaxTickDuration = elapsed
	}
}

// Advance ticks the clock forward by d.
func (s *Scheduler) Advance(d time.Duration) {
	s.Tick(s.now + d)
}

// Now returns the clock time of the last tick.
func (s *Scheduler) Now() time.Duration { return s.now }

// Pending returns the number of queued timeout and interval tasks.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Stats returns statistics about task execution.
func (s *Scheduler) Stats() Stats {
	st := s.stats
	st.Now = s.now
	st.Pending = len(s.queue)
	st.PerFrameTasks = len(s.perFrame)
	return st
}

// Run ticks the scheduler at the given interval, advancing the clock by
// the wall time elapsed, until the context is cancelled. mu, when not
// nil, is held during each tick.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, mu sync.Locker) error {
	return Drive(ctx, interval, func(dt time.Duration) error {
		s.advanceLocked(dt, mu)
		return nil
	})
}

// Drive calls step at the given interval with the wall time elapsed since
// the previous call. It stops when ctx is done or step returns an error,
// and returns that error.
func Drive(ctx context.Context, interval time.Duration, step func(dt time.Duration) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			if err := step(dt); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) advanceLocked(d time.Duration, mu sync.Locker) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	s.Advance(d)
}
