package pipeline

import "sync"

// taskQueue serializes tasks for one project. Tasks run FIFO on a single
// goroutine, so at most one naming/summary pipeline is in flight per
// project. This is what keeps concurrent sessions in the same project from
// racing on the summary's read-modify-write.
type taskQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
	idle    sync.WaitGroup
}

var (
	queues   = make(map[string]*taskQueue)
	queuesMu sync.Mutex
)

// queueFor returns the task queue for a project root, creating it on first
// use. Queues are keyed by absolute root so every Hook for the same project
// shares one queue.
func queueFor(root string) *taskQueue {
	queuesMu.Lock()
	defer queuesMu.Unlock()
	q, ok := queues[root]
	if !ok {
		q = newTaskQueue()
		queues[root] = q
	}
	return q
}

func newTaskQueue() *taskQueue {
	return &taskQueue{}
}

// enqueue schedules task to run after all previously enqueued tasks have
// finished. It never blocks the caller.
func (q *taskQueue) enqueue(task func()) {
	q.mu.Lock()
	q.pending = append(q.pending, task)
	q.idle.Add(1)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
}

// drain runs pending tasks one at a time until the queue is empty, then
// exits. A later enqueue starts a fresh drain goroutine.
func (q *taskQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		func() {
			defer q.idle.Done()
			task()
		}()
	}
}

// wait blocks until every task enqueued so far has finished. Used by tests
// and by CLI invocations that must not exit with work in flight.
func (q *taskQueue) wait() {
	q.idle.Wait()
}
