package sim

import "container/heap"

// Scheduler owns simulated time. All simulation work runs as continuations
// dispatched from RunUntil on a single goroutine; nothing else may advance
// the clock. Events with equal time resume in the order they were scheduled
// (stable FIFO via a monotonically increasing sequence number), which is the
// only ordering source besides the seeded RNG.
type Scheduler struct {
	now   float64
	seq   uint64
	queue eventQueue
}

type scheduled struct {
	time float64
	seq  uint64
	fn   func()
}

type eventQueue []*scheduled

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)  { *q = append(*q, x.(*scheduled)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulated time in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// Schedule enqueues fn to run after delay seconds of simulated time.
// Negative delays are treated as zero.
func (s *Scheduler) Schedule(delay float64, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.queue, &scheduled{time: s.now + delay, seq: s.seq, fn: fn})
}

// RunUntil processes events until the queue is empty or the next event lies
// beyond the horizon, then advances the clock to the horizon. Events at
// exactly the horizon still run; later ones stay queued, so a subsequent
// RunUntil with a larger horizon resumes where this one stopped.
func (s *Scheduler) RunUntil(horizon float64) {
	for s.queue.Len() > 0 {
		if s.queue[0].time > horizon {
			break
		}
		ev := heap.Pop(&s.queue).(*scheduled)
		s.now = ev.time
		ev.fn()
	}
	if s.now < horizon {
		s.now = horizon
	}
}

// Pending reports how many events are queued. Used by tests.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// Resource is a counting semaphore with capacity slots and strictly FIFO
// waiters, in the shape of simpy.Resource.
type Resource struct {
	sched    *Scheduler
	capacity int
	inUse    int
	waiters  []func()
}

func NewResource(s *Scheduler, capacity int) *Resource {
	return &Resource{sched: s, capacity: capacity}
}

// Acquire runs fn once a slot is held. If a slot is free the continuation
// runs immediately; otherwise it parks at the tail of the wait queue.
func (r *Resource) Acquire(fn func()) {
	if r.inUse < r.capacity {
		r.inUse++
		fn()
		return
	}
	r.waiters = append(r.waiters, fn)
}

// Release frees a slot. If anyone is waiting the slot transfers directly to
// the earliest waiter, resumed at the current simulated time.
func (r *Resource) Release() {
	if len(r.waiters) > 0 {
		next := r.waiters[0]
		r.waiters = r.waiters[1:]
		r.sched.Schedule(0, next)
		return
	}
	if r.inUse > 0 {
		r.inUse--
	}
}

// InUse returns the number of held slots.
func (r *Resource) InUse() int { return r.inUse }

// Store is an unbounded FIFO queue of items with blocking Get, in the shape
// of simpy.Store. Put never suspends.
type Store[T any] struct {
	sched   *Scheduler
	items   []T
	waiters []func(T)
}

func NewStore[T any](s *Scheduler) *Store[T] {
	return &Store[T]{sched: s}
}

// Put inserts an item. If a getter is parked, the item is handed to the
// earliest one instead of entering the queue.
func (q *Store[T]) Put(item T) {
	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		q.sched.Schedule(0, func() { w(item) })
		return
	}
	q.items = append(q.items, item)
}

// Get runs fn with the oldest item, immediately if one is queued, otherwise
// when a future Put delivers one.
func (q *Store[T]) Get(fn func(T)) {
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		fn(item)
		return
	}
	q.waiters = append(q.waiters, fn)
}

// Len returns the number of queued items.
func (q *Store[T]) Len() int { return len(q.items) }

type filterWaiter[T any] struct {
	pred func(T) bool
	fn   func(T)
}

// FilterStore is a bag of items with predicate-based blocking Get, in the
// shape of simpy.FilterStore. On Put, parked waiters are tested in
// registration order and the earliest match claims the item.
type FilterStore[T any] struct {
	sched   *Scheduler
	items   []T
	waiters []filterWaiter[T]
}

func NewFilterStore[T any](s *Scheduler) *FilterStore[T] {
	return &FilterStore[T]{sched: s}
}

// Put inserts an item, waking the earliest waiter whose predicate it
// satisfies. That waiter claims the item atomically.
func (p *FilterStore[T]) Put(item T) {
	for i, w := range p.waiters {
		if w.pred(item) {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			fn := w.fn
			p.sched.Schedule(0, func() { fn(item) })
			return
		}
	}
	p.items = append(p.items, item)
}

// Get runs fn with the first item satisfying pred, immediately if one is
// present, otherwise when a matching Put arrives.
func (p *FilterStore[T]) Get(pred func(T) bool, fn func(T)) {
	for i, item := range p.items {
		if pred(item) {
			p.items = append(p.items[:i], p.items[i+1:]...)
			fn(item)
			return
		}
	}
	p.waiters = append(p.waiters, filterWaiter[T]{pred: pred, fn: fn})
}

// Count returns how many queued items satisfy pred.
func (p *FilterStore[T]) Count(pred func(T) bool) int {
	n := 0
	for _, item := range p.items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Len returns the number of queued items.
func (p *FilterStore[T]) Len() int { return len(p.items) }

// Items returns a copy of the queued items for inspection.
func (p *FilterStore[T]) Items() []T {
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}
