package actor

import (
	"runtime"
	"sync"
)

// DeliveryResult is the outcome of Dispatcher.Enqueue.
type DeliveryResult int

const (
	Ok DeliveryResult = iota
	Closed
)

// cellQueue is an unbounded, goroutine-safe FIFO of ready cells. It plays
// the role the teacher gives a single per-actor goroutine (bollywood spawns
// one `go proc.run()` per actor); actorkit instead multiplexes many cells
// over a fixed worker pool, so the run-ready set itself needs a queue.
type cellQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*cell
	closed bool
}

func newCellQueue() *cellQueue {
	q := &cellQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *cellQueue) push(c *cell) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, c)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *cellQueue) pop() (*cell, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c, true
}

func (q *cellQueue) shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Dispatcher is the thread-pool scheduler of spec.md §4.1: it runs one
// mailbox drain at a time per cell, respecting the throughput limit, and
// guarantees liveness against the "Idle but non-empty" race with a two-sided
// CAS protocol: a producer that observes a cell Running marks it Scheduled
// instead of no-oping, so the worker's own Running->Idle transition fails
// and it re-pushes itself rather than stranding the new message.
type Dispatcher struct {
	throughput int
	queue      *cellQueue
	wg         sync.WaitGroup
}

// NewDispatcher starts workerCount goroutines pulling ready cells from an
// internal unbounded queue. workerCount <= 0 resolves to runtime.NumCPU(),
// matching Config.WorkerThreads' documented zero-value behavior.
func NewDispatcher(workerCount, throughput int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if throughput <= 0 {
		throughput = 5
	}
	d := &Dispatcher{throughput: throughput, queue: newCellQueue()}
	d.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		c, ok := d.queue.pop()
		if !ok {
			return
		}
		d.runCell(c)
	}
}

// Enqueue appends env to cell's mailbox (system lane if isSystem) and
// ensures the cell is scheduled, idempotently.
func (d *Dispatcher) Enqueue(c *cell, env Envelope, isSystem bool) DeliveryResult {
	var ok bool
	if isSystem {
		ok = c.mailbox.enqueueSystem(env)
	} else {
		ok = c.mailbox.enqueueUser(env)
	}
	if !ok {
		return Closed
	}
	c.metricsHooks().envelopeEnqueued(c.path, messageTypeName(env.Message))
	d.schedule(c)
	return Ok
}

// schedule transitions Idle -> Scheduled and pushes the cell onto the run
// queue. If the cell is Running, it marks it Scheduled without pushing: this
// makes the running worker's own Running->Idle CAS in runCell fail, so the
// worker itself notices and re-pushes before parking, rather than the
// producer and the worker racing to push the same cell twice (which would
// let two workers invoke it concurrently and violate run-to-completion).
func (d *Dispatcher) schedule(c *cell) {
	for {
		s := mailboxState(c.mailbox.state.Load())
		switch s {
		case mbScheduled, mbClosed:
			return
		case mbRunning:
			if c.mailbox.state.CompareAndSwap(int32(mbRunning), int32(mbScheduled)) {
				return
			}
		default: // mbIdle
			if c.mailbox.state.CompareAndSwap(int32(s), int32(mbScheduled)) {
				d.queue.push(c)
				return
			}
		}
	}
}

// runCell drains up to d.throughput envelopes from c's mailbox, then
// decides whether to yield-and-requeue (fairness: spec.md §4.1) or go Idle.
func (d *Dispatcher) runCell(c *cell) {
	c.mailbox.state.Store(int32(mbRunning))

	for i := 0; i < d.throughput; i++ {
		env, ok := c.mailbox.dequeue()
		if !ok {
			break
		}
		c.invoke(env)
		if c.isStopped() {
			break
		}
	}

	if c.isStopped() {
		c.mailbox.state.Store(int32(mbClosed))
		return
	}

	if c.mailbox.hasMessages() {
		// More work arrived (or remains past the throughput window): yield
		// to other cells by re-queuing at the back rather than looping here.
		c.mailbox.state.Store(int32(mbScheduled))
		d.queue.push(c)
		return
	}

	if !c.mailbox.state.CompareAndSwap(int32(mbRunning), int32(mbIdle)) {
		// A concurrent schedule() call already flipped us to Scheduled
		// because it observed Running and a new message arriving; that
		// call deliberately did not push (to avoid double-queuing us), so
		// it is on us to re-push ourselves so the message is not stranded.
		c.mailbox.state.Store(int32(mbScheduled))
		d.queue.push(c)
	}
}

// Shutdown stops accepting new run-ready cells and waits for all workers to
// drain their current cell and exit.
func (d *Dispatcher) Shutdown() {
	d.queue.shutdown()
	d.wg.Wait()
}

func messageTypeName(msg interface{}) string {
	if msg == nil {
		return "nil"
	}
	return typeName(msg)
}
