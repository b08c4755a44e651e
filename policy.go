package hyperroute

// CostPolicy supplies the cost and heuristic hooks of a concrete router.
// Implementations must be pure with respect to solver state.
type CostPolicy interface {
	// EstimateCostToEnd estimates the remaining cost from port to the end
	// region. Admissibility is the implementation's responsibility.
	EstimateCostToEnd(port *Port, end *Region) float64

	// PortUsagePenalty is an extra cost for congestion-prone ports. The
	// solver never adds it on its own; policies fold it into RegionCost.
	PortUsagePenalty(port *Port) float64

	// RegionCost is the cost of crossing region from entry to exit.
	RegionCost(region *Region, entry, exit *Port) float64

	// SelectEntryCandidates receives every successor that would enter the
	// same region and returns the subset to keep. It must only return
	// elements of the given slice.
	SelectEntryCandidates(candidates []Candidate) []Candidate
}

// NopPolicy is the default policy: zero heuristic, zero costs, keep every
// candidate. Embed it to override a subset of the hooks.
type NopPolicy struct{}

var _ CostPolicy = NopPolicy{}

func (NopPolicy) EstimateCostToEnd(*Port, *Region) float64 { return 0 }
func (NopPolicy) PortUsagePenalty(*Port) float64           { return 0 }
func (NopPolicy) RegionCost(*Region, *Port, *Port) float64 { return 0 }

func (NopPolicy) SelectEntryCandidates(candidates []Candidate) []Candidate {
	return candidates
}

// SolverState is the read-only view of a solver handed to policies that
// price contention.
type SolverState interface {
	Active() *Connection
	AssignedRoute(id PortID) (*SolvedRoute, bool)
}

// StatefulPolicy is a CostPolicy that reads solver state. NewSolver calls
// Bind once, before the first connection is activated.
type StatefulPolicy interface {
	CostPolicy
	Bind(state SolverState)
}

var _ SolverState = (*Solver)(nil)

// ContentionPolicy wraps a policy and charges Penalty for crossing a port
// held by a route of another network than the active connection's.
type ContentionPolicy struct {
	CostPolicy
	Penalty float64

	state SolverState
}

// Bind implements StatefulPolicy and forwards to the wrapped policy.
func (p *ContentionPolicy) Bind(state SolverState) {
	p.state = state
	if sp, ok := p.CostPolicy.(StatefulPolicy); ok {
		sp.Bind(state)
	}
}

func (p *ContentionPolicy) PortUsagePenalty(port *Port) float64 {
	return p.CostPolicy.PortUsagePenalty(port) + p.contention(port)
}

func (p *ContentionPolicy) RegionCost(region *Region, entry, exit *Port) float64 {
	return p.CostPolicy.RegionCost(region, entry, exit) + p.contention(exit)
}

func (p *ContentionPolicy) contention(port *Port) float64 {
	if p.state == nil {
		return 0
	}
	active := p.state.Active()
	route, ok := p.state.AssignedRoute(port.ID)
	if active == nil || !ok || route.Connection.NetworkID == active.NetworkID {
		return 0
	}
	return p.Penalty
}
