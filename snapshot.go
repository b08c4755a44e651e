package hyperroute

// QueuedCandidate is a frontier entry as seen by diagnostics.
type QueuedCandidate struct {
	Candidate
	Sequence uint64
}

// Snapshot is a read-only view of solver state for visualizers and
// debugging tools.
type Snapshot struct {
	Status     RunStatus
	Iterations int
	Message    string

	Active  *Connection
	Backlog []ConnectionID

	// Queue holds the cheapest queued candidates in dequeue order.
	Queue    []QueuedCandidate
	QueueLen int

	// Last is the most recently popped candidate of the active connection
	// and LastChain its ancestry from the root.
	Last      *Candidate
	LastChain []Candidate

	Routes        []*SolvedRoute
	AssignedPorts map[PortID]ConnectionID
}

// Snapshot captures the current state. At most peek queued candidates are
// included.
func (s *Solver) Snapshot(peek int) Snapshot {
	snap := Snapshot{
		Status:        s.status,
		Iterations:    s.iterations,
		Message:       s.ErrorMessage(),
		Active:        s.active,
		QueueLen:      s.queue.Len(),
		Routes:        s.Routes(),
		AssignedPorts: make(map[PortID]ConnectionID, s.assignments.Len()),
	}
	for _, c := range s.backlog {
		snap.Backlog = append(snap.Backlog, c.ID)
	}
	for _, item := range s.queue.PeekMany(peek) {
		snap.Queue = append(snap.Queue, QueuedCandidate{
			Candidate: s.arena.get(item.Value),
			Sequence:  item.Sequence,
		})
	}
	if s.last != NoCandidate && int(s.last) < s.arena.len() {
		last := s.arena.get(s.last)
		snap.Last = &last
		snap.LastChain = s.arena.path(s.last)
	}
	for _, id := range s.assignments.PortIDs() {
		route, _ := s.assignments.Get(id)
		snap.AssignedPorts[id] = route.Connection.ID
	}
	return snap
}
