package store

// dispatchQueue is the FIFO of actions dispatched by listeners during a
// sweep. It is owned by a single Store and is not safe for concurrent use.
type dispatchQueue struct {
	actions []any
}

func newDispatchQueue() *dispatchQueue {
	return &dispatchQueue{actions: make([]any, 0, 8)}
}

// push adds an action to the back of the queue.
func (q *dispatchQueue) push(action any) {
	q.actions = append(q.actions, action)
}

// pop removes and returns the front action.
// Returns (nil, false) if the queue is empty.
func (q *dispatchQueue) pop() (any, bool) {
	if len(q.actions) == 0 {
		return nil, false
	}

	a := q.actions[0]

	// Nil out the slot so the backing array does not retain the action.
	q.actions[0] = nil

	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// reset discards all queued actions and returns how many were dropped.
func (q *dispatchQueue) reset() int {
	n := len(q.actions)
	clear(q.actions)
	q.actions = q.actions[:0]
	return n
}

// size returns the number of queued actions.
func (q *dispatchQueue) size() int {
	return len(q.actions)
}
