package align

// queue is a FIFO of row indices owned by a single aligner.
type queue struct {
	items []int
}

func (q *queue) push(idx int) {
	q.items = append(q.items, idx)
}

// drain returns the queued indices in FIFO order and empties the queue.
func (q *queue) drain() []int {
	items := q.items
	q.items = nil
	return items
}
