package kernel

// Send copies length bytes from data into the recipient's ring,
// non-blocking. It rejects an out-of-range recipient, an EMPTY
// recipient, a length over P, or a nil data with positive length.
func (c *TaskContext) Send(to TaskID, data []byte, length int) ErrKind {
	k := c.k
	if int(to) < 0 || int(to) >= T {
		return ErrInvalidParam
	}
	if k.tasks[to].State == Empty {
		return ErrNotFound
	}
	if length > P || (data == nil && length > 0) {
		return ErrInvalidParam
	}

	r := &k.rings[to]
	if r.count >= Q {
		return ErrNoMemory
	}

	slot := &r.slots[r.tail]
	slot.From = c.id
	slot.To = to
	slot.Length = length
	slot.Timestamp = k.now()
	slot.Valid = true
	copy(slot.Payload[:length], data[:length])

	r.tail = (r.tail + 1) % Q
	r.count++
	return OK
}

// Receive pops the oldest message addressed to the current task into
// buffer, returning its byte length. An empty ring returns
// ErrWouldBlock; a message longer than maxlen is left in place and
// ErrInvalidParam is returned; an invalid slot (should not occur)
// returns ErrIOError.
func (c *TaskContext) Receive(buffer []byte, maxlen int, from *TaskID) (int, ErrKind) {
	k := c.k
	r := &k.rings[c.id]
	if r.count == 0 {
		return 0, ErrWouldBlock
	}

	msg := &r.slots[r.head]
	if !msg.Valid {
		return 0, ErrIOError
	}
	if msg.Length > maxlen {
		return 0, ErrInvalidParam
	}

	n := copy(buffer, msg.Payload[:msg.Length])
	if from != nil {
		*from = msg.From
	}
	msg.Valid = false

	r.head = (r.head + 1) % Q
	r.count--
	return n, OK
}

// Poll returns the number of messages pending for the current task.
func (c *TaskContext) Poll() int {
	return c.k.rings[c.id].count
}
