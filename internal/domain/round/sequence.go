package round

// Ticket tags one outbound provider request. Tickets are issued in strictly
// increasing order per sequencer; zero is never issued.
type Ticket uint64

// sequencer tracks the latest ticket issued for one kind of request.
// A response is accepted only if it carries the latest ticket and that
// ticket has not been consumed yet.
type sequencer struct {
	latest   Ticket
	consumed bool
}

func (s *sequencer) issue() Ticket {
	s.latest++
	s.consumed = false
	return s.latest
}

func (s *sequencer) current(t Ticket) bool {
	return t != 0 && t == s.latest && !s.consumed
}

func (s *sequencer) consume() {
	s.consumed = true
}

// invalidate makes every outstanding ticket stale without issuing a new one.
func (s *sequencer) invalidate() {
	s.latest++
	s.consumed = true
}
