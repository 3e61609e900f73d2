package event

// Sequence is an ordered list of events supporting the pop/peek operations
// the replay scheduler and the responsive strategy's lookahead need.
type Sequence struct {
	items []Event
}

// NewSequence builds a Sequence from items, in order.
func NewSequence(items ...Event) *Sequence {
	s := &Sequence{}
	s.items = append(s.items, items...)
	return s
}

// Append adds an event to the end of the sequence.
func (s *Sequence) Append(e Event) {
	s.items = append(s.items, e)
}

// Len returns the number of remaining events.
func (s *Sequence) Len() int { return len(s.items) }

// Empty reports whether the sequence has no remaining events.
func (s *Sequence) Empty() bool { return len(s.items) == 0 }

// Pop removes and returns the next event, or (nil, false) if empty.
func (s *Sequence) Pop() (Event, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	e := s.items[0]
	s.items = s.items[1:]
	return e, true
}

// TopN peeks at the next k events without popping them. If fewer than k
// remain, it returns as many as are available.
func (s *Sequence) TopN(k int) []Event {
	if k > len(s.items) {
		k = len(s.items)
	}
	out := make([]Event, k)
	copy(out, s.items[:k])
	return out
}

// PopN discards the first k events. If fewer than k remain, it discards
// all of them.
func (s *Sequence) PopN(k int) {
	if k > len(s.items) {
		k = len(s.items)
	}
	s.items = s.items[k:]
}

// All returns every remaining event without popping; used by the
// inspector to read the full sequence non-destructively.
func (s *Sequence) All() []Event {
	out := make([]Event, len(s.items))
	copy(out, s.items)
	return out
}
