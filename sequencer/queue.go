package sequencer

import "github.com/pkg/errors"

// ErrQueueFull is returned by Push when the queue is at capacity.
var ErrQueueFull = errors.New("oper queue full")

// OperQueue is a fixed capacity FIFO of Opers. It never grows and never blocks.
type OperQueue struct {
	buf  []Oper
	head int
	n    int
}

// NewOperQueue allocates a queue holding up to capacity operations.
func NewOperQueue(capacity int) *OperQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &OperQueue{buf: make([]Oper, capacity)}
}

// Push appends op, or returns ErrQueueFull and drops it.
func (q *OperQueue) Push(op Oper) error {
	if q.n == len(q.buf) {
		return errors.Wrapf(ErrQueueFull, "drop %v", op)
	}
	q.buf[(q.head+q.n)%len(q.buf)] = op
	q.n++
	return nil
}

// DrainUpTo removes at most max of the oldest operations, appending them to
// dst in order.
func (q *OperQueue) DrainUpTo(max int, dst []Oper) []Oper {
	for ; max > 0 && q.n > 0; max-- {
		dst = append(dst, q.buf[q.head])
		q.head = (q.head + 1) % len(q.buf)
		q.n--
	}
	return dst
}

// Len is the number of queued operations.
func (q *OperQueue) Len() int {
	return q.n
}

// Cap is the fixed capacity.
func (q *OperQueue) Cap() int {
	return len(q.buf)
}
