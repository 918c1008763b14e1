package arango

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arangotools/arangorest/deque"
	"github.com/arangotools/arangorest/errutil"
)

// BatchJobStatus is the status of a job queued in a batch.
type BatchJobStatus string

const (
	BatchJobPending BatchJobStatus = "pending"
	BatchJobDone    BatchJobStatus = "done"
)

// batchEntry is a queued request along with the function which resolves its job.
type batchEntry struct {
	request *Request
	resolve func(resp *Response, err error)
}

// BatchExecutor queues requests which are then sent in order when the batch is committed.
//
// NOTE: A batch may only be committed once.
type BatchExecutor struct {
	conn *Connection

	lock      sync.Mutex
	queue     *deque.Deque[batchEntry]
	jobs      map[string]*BatchJob[*Response]
	committed bool
}

var _ Executor = (*BatchExecutor)(nil)

// NewBatchExecutor returns an empty batch of requests for the given connection.
func NewBatchExecutor(conn *Connection) *BatchExecutor {
	return &BatchExecutor{
		conn:  conn,
		queue: deque.NewDeque[batchEntry](),
		jobs:  make(map[string]*BatchJob[*Response]),
	}
}

func (b *BatchExecutor) Context() ExecutionContext {
	return ContextBatch
}

func (b *BatchExecutor) Connection() *Connection {
	return b.conn
}

// Submit queues the request, returning a 'DeferredError' which identifies the job resolved with the raw response once
// the batch is committed; see 'Job'.
func (b *BatchExecutor) Submit(_ context.Context, request *Request) (*Response, error) {
	job, err := QueueBatch(b, request, func(resp *Response) (*Response, error) { return resp, nil })
	if err != nil {
		return nil, err
	}

	b.lock.Lock()
	b.jobs[job.id] = job
	b.lock.Unlock()

	return nil, &DeferredError{context: ContextBatch, jobID: job.id}
}

// Job returns the job for a request queued using 'Submit'.
func (b *BatchExecutor) Job(id string) (*BatchJob[*Response], bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	job, ok := b.jobs[id]

	return job, ok
}

// Len returns the number of requests which are queued.
func (b *BatchExecutor) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.queue.Len()
}

// Committed returns a boolean indicating whether the batch has been committed.
func (b *BatchExecutor) Committed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.committed
}

// Commit sends every queued request in the order it was queued, resolving each job with its outcome.
//
// NOTE: Business errors are reported by the individual jobs, an error is only returned if the batch had to be stopped
// early, in which case the remaining jobs are resolved with that error.
func (b *BatchExecutor) Commit(ctx context.Context) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.committed {
		return ErrBatchCommitted
	}

	b.committed = true

	var stopped error

	for entry, ok := b.queue.PopFront(); ok; entry, ok = b.queue.PopFront() {
		if stopped != nil {
			entry.resolve(nil, stopped)
			continue
		}

		resp, err := b.conn.SendRequest(ctx, entry.request)
		if errutil.IsContextError(err) {
			stopped = err
		}

		entry.resolve(resp, err)
	}

	return stopped
}

// BatchJob is a handle to a request queued in a batch, it's resolved when the batch is committed.
type BatchJob[T any] struct {
	id string

	lock   sync.RWMutex
	status BatchJobStatus
	result T
	err    error
}

// QueueBatch queues the given request in the batch, the handler is applied to its response on commit.
func QueueBatch[T any](executor *BatchExecutor, request *Request, handler ResponseHandler[T]) (*BatchJob[T], error) {
	executor.lock.Lock()
	defer executor.lock.Unlock()

	if executor.committed {
		return nil, ErrBatchCommitted
	}

	job := &BatchJob[T]{id: uuid.NewString(), status: BatchJobPending}

	executor.queue.PushBack(batchEntry{
		request: request,
		resolve: func(resp *Response, err error) {
			var result T
			if err == nil {
				result, err = handler(resp)
			}

			job.lock.Lock()
			defer job.lock.Unlock()

			job.status, job.result, job.err = BatchJobDone, result, err
		},
	})

	return job, nil
}

// ID returns the client side job identifier.
func (j *BatchJob[T]) ID() string {
	return j.id
}

// Status returns the status of the job.
func (j *BatchJob[T]) Status() BatchJobStatus {
	j.lock.RLock()
	defer j.lock.RUnlock()

	return j.status
}

// Result returns the result of the job, 'ErrJobPending' is returned if the batch hasn't been committed.
func (j *BatchJob[T]) Result() (T, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	if j.status == BatchJobPending {
		return *new(T), ErrJobPending
	}

	return j.result, j.err
}
