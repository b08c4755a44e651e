package hyperroute

// SolvedRoute is a connection together with the candidates from its start
// to its destination.
type SolvedRoute struct {
	Connection *Connection
	Path       []Candidate
}

// Ports returns the crossed ports in path order.
func (r *SolvedRoute) Ports() []*Port {
	ports := make([]*Port, len(r.Path))
	for i, c := range r.Path {
		ports[i] = c.Port
	}
	return ports
}

// Cost returns the accumulated cost at the destination.
func (r *SolvedRoute) Cost() float64 {
	if len(r.Path) == 0 {
		return 0
	}
	return r.Path[len(r.Path)-1].G
}

// PortAssignments maps ports to the solved route occupying them. Assign and
// Evict are its only mutators, so a port is held by at most one route.
type PortAssignments struct {
	byPort map[PortID]*SolvedRoute
}

// NewPortAssignments returns an empty map.
func NewPortAssignments() *PortAssignments {
	return &PortAssignments{byPort: make(map[PortID]*SolvedRoute)}
}

// Get returns the route occupying the port.
func (a *PortAssignments) Get(id PortID) (*SolvedRoute, bool) {
	r, ok := a.byPort[id]
	return r, ok
}

// Len returns the number of occupied ports.
func (a *PortAssignments) Len() int { return len(a.byPort) }

// PortIDs returns the occupied port ids in no particular order.
func (a *PortAssignments) PortIDs() []PortID {
	ids := make([]PortID, 0, len(a.byPort))
	for id := range a.byPort {
		ids = append(ids, id)
	}
	return ids
}

// Conflicts reports whether the port is held by a route of a network other
// than network.
func (a *PortAssignments) Conflicts(id PortID, network NetworkID) bool {
	occupant, ok := a.byPort[id]
	return ok && occupant.Connection.NetworkID != network
}

// Assign records route on port. An occupant of the same network keeps the
// port, which both routes then share. An occupant of another network is
// displaced only when rip is true; the displaced route is returned and the
// caller must Evict it.
func (a *PortAssignments) Assign(port *Port, route *SolvedRoute, rip bool) (displaced *SolvedRoute, assigned bool) {
	occupant, ok := a.byPort[port.ID]
	switch {
	case !ok:
		a.byPort[port.ID] = route
		return nil, true
	case occupant == route:
		return nil, true
	case occupant.Connection.NetworkID == route.Connection.NetworkID:
		return nil, false
	case !rip:
		return nil, false
	}
	a.byPort[port.ID] = route
	return occupant, true
}

// Evict releases every port still held by route and returns their ids.
func (a *PortAssignments) Evict(route *SolvedRoute) []PortID {
	var released []PortID
	for _, c := range route.Path {
		if a.byPort[c.Port.ID] == route {
			delete(a.byPort, c.Port.ID)
			released = append(released, c.Port.ID)
		}
	}
	return released
}
