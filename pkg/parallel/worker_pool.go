package parallel

import (
	"fmt"
	"math"
	"sync"
)

// WorkerPool manages a fixed pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with the specified number of workers.
// Returns an error if the worker count exceeds MaxWorkers.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of workers in the pool
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		task()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if the task was submitted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	// Safe to send because we hold the lock and the pool is not closed
	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool and waits for the workers to exit
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// ChunkBounds returns the half-open range [begin, end) of the i-th of
// `chunks` contiguous, near-equal chunks over n elements. Chunks beyond the
// element count come back empty.
func ChunkBounds(i, n, chunks uint64) (uint64, uint64) {
	size := (n + chunks - 1) / chunks // ceil(n / chunks)
	begin := i * size
	end := begin + size
	if begin > n {
		begin = n
	}
	if end > n {
		end = n
	}
	return begin, end
}

// ForChunks splits the id range [0, n) into one contiguous chunk per worker
// and runs fn(workerIndex, begin, end) on the pool, blocking until every
// chunk is done. Static partitioning keeps each worker on the same id range
// across repeated passes, which preserves cache locality.
func (wp *WorkerPool) ForChunks(n uint64, fn func(worker int, begin, end uint64)) {
	chunks := uint64(wp.workers)
	if chunks > n && n > 0 {
		chunks = n
	}
	if n == 0 {
		return
	}

	var passWG sync.WaitGroup
	for i := uint64(0); i < chunks; i++ {
		begin, end := ChunkBounds(i, n, chunks)
		if begin >= end {
			continue
		}
		worker := int(i)
		passWG.Add(1)
		ok := wp.Submit(func() {
			defer passWG.Done()
			fn(worker, begin, end)
		})
		if !ok {
			passWG.Done()
		}
	}
	passWG.Wait()
}
