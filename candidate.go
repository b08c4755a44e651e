package hyperroute

import "github.com/pdrpinto/hyperroute/internal/chain"

// CandidateIndex addresses a candidate inside a solver's arena.
type CandidateIndex int

// NoCandidate is the parent index of a root candidate.
const NoCandidate CandidateIndex = chain.None

// Candidate is a search-frontier node: a crossed port together with its
// costs and the index of the candidate it was expanded from.
type Candidate struct {
	Port *Port
	G    float64
	H    float64
	F    float64
	Hops int
	// RipsRequired counts ports along the ancestry that are held by routes
	// of other networks.
	RipsRequired int
	Parent       CandidateIndex

	// LastPort is the port used to reach the parent candidate.
	LastPort *Port
	// LastRegion is the region left when crossing Port.
	LastRegion *Region
	// NextRegion is the region entered when crossing Port.
	NextRegion *Region
}

// IsRoot reports whether the candidate has no parent.
func (c Candidate) IsRoot() bool { return c.Parent == NoCandidate }

// candidateArena owns every candidate created for the active connection.
// Parents always have a lower index than their children, so ancestry
// chains cannot cycle.
type candidateArena struct {
	nodes []Candidate
}

func (a *candidateArena) add(c Candidate) CandidateIndex {
	a.nodes = append(a.nodes, c)
	return CandidateIndex(len(a.nodes) - 1)
}

func (a *candidateArena) get(i CandidateIndex) Candidate {
	return a.nodes[i]
}

func (a *candidateArena) len() int { return len(a.nodes) }

func (a *candidateArena) reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
}

// path returns the candidates from the root of i's chain to i. The copies
// are detached from the arena: each Parent is the position of the previous
// element in the returned slice.
func (a *candidateArena) path(i CandidateIndex) []Candidate {
	indices := chain.Walk(int(i), func(n int) int {
		return int(a.nodes[n].Parent)
	}, len(a.nodes))
	out := make([]Candidate, len(indices))
	for k, n := range indices {
		out[k] = a.nodes[n]
		out[k].Parent = CandidateIndex(k - 1)
	}
	return out
}
