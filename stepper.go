package hyperroute

import (
	"fmt"
	"log/slog"
)

// Solver routes connections one at a time through a shared graph. Each call
// to Step performs one unit of work; an external driver decides how many
// steps to run. A Solver must not be stepped from multiple goroutines.
type Solver struct {
	graph       *Graph
	connections []*Connection
	opts        Options
	log         *slog.Logger

	backlog []*Connection
	active  *Connection

	// Per-activation search state, reset by activate.
	arena   candidateArena
	queue   *PriorityQueue[CandidateIndex]
	visited map[PortID]struct{}
	last    CandidateIndex

	routes      []*SolvedRoute
	routeByConn map[ConnectionID]*SolvedRoute
	assignments *PortAssignments

	status      RunStatus
	connStatus  map[ConnectionID]ConnectionStatus
	activations map[ConnectionID]int
	iterations  int
	err         error
}

// NewSolver validates its inputs and returns a solver with the first
// connection already active. Connections are routed in the given order.
func NewSolver(graph *Graph, connections []*Connection, options ...Option) (*Solver, error) {
	opts := DefaultOptions()
	for _, o := range options {
		o(&opts)
	}
	if opts.Policy == nil {
		opts.Policy = NopPolicy{}
	}
	if opts.Logger == nil {
		opts.Logger = DefaultOptions().Logger
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrNilGraph
	}

	seen := make(map[ConnectionID]bool, len(connections))
	for i, c := range connections {
		switch {
		case c == nil:
			return nil, fmt.Errorf("%w: connection #%d is nil", ErrInvalidConnection, i)
		case c.ID == "":
			return nil, fmt.Errorf("%w: connection #%d has no id", ErrInvalidConnection, i)
		case seen[c.ID]:
			return nil, fmt.Errorf("%w: connection %q: %w", ErrInvalidConnection, c.ID, ErrDuplicateID)
		case c.Start == nil || c.End == nil:
			return nil, fmt.Errorf("%w: connection %q is missing a start or end region", ErrInvalidConnection, c.ID)
		case !graph.Contains(c.Start):
			return nil, fmt.Errorf("connection %q start %q: %w", c.ID, c.Start.ID, ErrUnknownRegion)
		case !graph.Contains(c.End):
			return nil, fmt.Errorf("connection %q end %q: %w", c.ID, c.End.ID, ErrUnknownRegion)
		}
		seen[c.ID] = true
	}

	s := &Solver{
		graph:       graph,
		connections: connections,
		opts:        opts,
		log:         opts.Logger,
		backlog:     append([]*Connection(nil), connections...),
		queue:       NewPriorityQueue[CandidateIndex](),
		last:        NoCandidate,
		routeByConn: make(map[ConnectionID]*SolvedRoute),
		assignments: NewPortAssignments(),
		status:      RunProcessing,
		connStatus:  make(map[ConnectionID]ConnectionStatus, len(connections)),
		activations: make(map[ConnectionID]int, len(connections)),
	}
	for _, c := range connections {
		s.connStatus[c.ID] = ConnectionPending
	}
	if sp, ok := opts.Policy.(StatefulPolicy); ok {
		sp.Bind(s)
	}
	s.advance()
	return s, nil
}

// Step performs one unit of work: it pops the cheapest unvisited candidate
// and either commits the active connection or expands the candidate. Once
// the run is complete or failed, Step does nothing.
func (s *Solver) Step() {
	if s.status != RunProcessing {
		return
	}

	idx, ok := s.popUnvisited()
	if !ok {
		s.fail()
		return
	}
	s.iterations++
	s.opts.Collector.ObserveStep()

	current := s.arena.get(idx)
	s.last = idx
	s.visited[current.Port.ID] = struct{}{}

	if current.NextRegion == s.active.End {
		s.commit(idx)
		s.advance()
		return
	}

	for _, next := range s.expand(idx) {
		s.queue.Enqueue(s.arena.add(next), next.F)
	}
	s.opts.Collector.SetQueueDepth(s.queue.Len())
}

// popUnvisited dequeues until it finds a candidate whose port has not been
// visited by the active connection.
func (s *Solver) popUnvisited() (CandidateIndex, bool) {
	for {
		idx, ok := s.queue.Dequeue()
		if !ok {
			return NoCandidate, false
		}
		if _, seen := s.visited[s.arena.get(idx).Port.ID]; !seen {
			return idx, true
		}
	}
}

// advance activates the next backlog connection or completes the run.
func (s *Solver) advance() {
	if len(s.backlog) == 0 {
		s.active = nil
		s.queue.Reset()
		s.arena.reset()
		s.last = NoCandidate
		s.status = RunComplete
		s.log.Debug("routing complete",
			slog.Int("routes", len(s.routes)),
			slog.Int("iterations", s.iterations))
		return
	}
	next := s.backlog[0]
	s.backlog[0] = nil
	s.backlog = s.backlog[1:]
	s.activate(next)
}

// activate makes conn the active connection. It is the only place where the
// per-connection search state is reset.
func (s *Solver) activate(conn *Connection) {
	s.active = conn
	s.arena.reset()
	s.queue.Reset()
	s.visited = make(map[PortID]struct{})
	s.last = NoCandidate
	s.activations[conn.ID]++
	s.connStatus[conn.ID] = ConnectionSearching
	s.opts.Collector.ObserveActivation()

	s.log.Debug("connection activated",
		slog.String("connection", string(conn.ID)),
		slog.Int("activation", s.activations[conn.ID]),
		slog.Int("backlog", len(s.backlog)))

	if len(conn.Start.Ports) == 0 {
		return
	}
	port := conn.Start.Ports[0]
	rips := 0
	if s.assignments.Conflicts(port.ID, conn.NetworkID) {
		rips = 1
	}
	if rips > 0 && !s.opts.RippingEnabled {
		return
	}
	root := s.arena.add(Candidate{
		Port:         port,
		RipsRequired: rips,
		Parent:       NoCandidate,
		LastRegion:   conn.Start,
		NextRegion:   port.Other(conn.Start),
	})
	s.queue.Enqueue(root, 0)
}

// commit stores the route ending at idx and claims its ports, evicting
// displaced routes of other networks when ripping is enabled.
func (s *Solver) commit(idx CandidateIndex) {
	route := &SolvedRoute{Connection: s.active, Path: s.arena.path(idx)}
	for _, c := range route.Path {
		if displaced, _ := s.assignments.Assign(c.Port, route, s.opts.RippingEnabled); displaced != nil {
			s.evict(displaced, c.Port)
		}
	}
	s.routes = append(s.routes, route)
	s.routeByConn[route.Connection.ID] = route
	s.connStatus[route.Connection.ID] = ConnectionSolved
	s.opts.Collector.ObserveCommit(len(route.Path))

	s.log.Debug("connection solved",
		slog.String("connection", string(route.Connection.ID)),
		slog.Int("hops", len(route.Path)),
		slog.Float64("cost", route.Cost()))
}

// evict invalidates route, releases its ports and re-queues its connection.
func (s *Solver) evict(route *SolvedRoute, contested *Port) {
	released := s.assignments.Evict(route)
	for i, r := range s.routes {
		if r == route {
			s.routes = append(s.routes[:i], s.routes[i+1:]...)
			break
		}
	}
	delete(s.routeByConn, route.Connection.ID)
	s.connStatus[route.Connection.ID] = ConnectionPending
	s.backlog = append(s.backlog, route.Connection)
	s.opts.Collector.ObserveEviction()

	s.log.Debug("route ripped",
		slog.String("connection", string(route.Connection.ID)),
		slog.String("by", string(s.active.ID)),
		slog.String("port", string(contested.ID)),
		slog.Int("released", len(released)))
}

func (s *Solver) fail() {
	s.status = RunFailed
	s.connStatus[s.active.ID] = ConnectionFailed
	s.err = fmt.Errorf("connection %q: %w", s.active.ID, ErrSearchExhausted)
	s.opts.Collector.ObserveFailure()
	s.log.Warn("routing failed",
		slog.String("connection", string(s.active.ID)),
		slog.Int("iterations", s.iterations),
		slog.String("reason", ErrSearchExhausted.Error()))
}

// Solved reports whether every connection has been routed.
func (s *Solver) Solved() bool { return s.status == RunComplete }

// Failed reports whether the run stopped on a connection that could not be
// routed.
func (s *Solver) Failed() bool { return s.status == RunFailed }

// Status returns the global run state.
func (s *Solver) Status() RunStatus { return s.status }

// Err returns the terminal error, or nil.
func (s *Solver) Err() error { return s.err }

// ErrorMessage returns the terminal error text, or "".
func (s *Solver) ErrorMessage() string {
	if s.err == nil {
		return ""
	}
	return s.err.Error()
}

// Iterations returns the number of steps that popped a candidate.
func (s *Solver) Iterations() int { return s.iterations }

// Active returns the connection being searched, or nil.
func (s *Solver) Active() *Connection { return s.active }

// Graph returns the graph the solver routes over.
func (s *Solver) Graph() *Graph { return s.graph }

// Connections returns the connections in routing order.
func (s *Solver) Connections() []*Connection { return s.connections }

// Options returns the effective options.
func (s *Solver) Options() Options { return s.opts }

// Routes returns the committed routes in commit order.
func (s *Solver) Routes() []*SolvedRoute {
	return append([]*SolvedRoute(nil), s.routes...)
}

// Route returns the committed route of a connection.
func (s *Solver) Route(id ConnectionID) (*SolvedRoute, bool) {
	r, ok := s.routeByConn[id]
	return r, ok
}

// AssignedRoute returns the route occupying a port.
func (s *Solver) AssignedRoute(id PortID) (*SolvedRoute, bool) {
	return s.assignments.Get(id)
}

// ConnectionStatus returns the state of a connection.
func (s *Solver) ConnectionStatus(id ConnectionID) ConnectionStatus {
	return s.connStatus[id]
}

// Activations returns how many times a connection has been made active.
func (s *Solver) Activations(id ConnectionID) int { return s.activations[id] }

// QueueLen returns the number of queued candidates, visited ones included.
func (s *Solver) QueueLen() int { return s.queue.Len() }

// Visited reports whether the active connection has expanded port id.
func (s *Solver) Visited(id PortID) bool {
	_, ok := s.visited[id]
	return ok
}
