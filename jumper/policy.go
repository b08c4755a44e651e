package jumper

import (
	"cmp"
	"slices"

	"github.com/pdrpinto/hyperroute"
)

// Policy prices routes by trace length. Regions and ports without jumper
// payloads cost nothing and estimate zero.
type Policy struct {
	// ThroughJumperPenalty is charged for every port into or out of a
	// through-jumper body.
	ThroughJumperPenalty float64
	// MaxEntries limits how many ports into the same region are kept per
	// expansion, nearest to the port just crossed first. Zero keeps all.
	MaxEntries int
}

var _ hyperroute.CostPolicy = Policy{}

// EstimateCostToEnd is the straight-line distance from the port to the
// centre of the end region.
func (p Policy) EstimateCostToEnd(port *hyperroute.Port, end *hyperroute.Region) float64 {
	at, ok := portPoint(port)
	if !ok {
		return 0
	}
	d, ok := end.Data.(RegionData)
	if !ok {
		return 0
	}
	return at.Distance(d.Bounds.Center())
}

func (p Policy) PortUsagePenalty(port *hyperroute.Port) float64 {
	if isThroughJumperPort(port) {
		return p.ThroughJumperPenalty
	}
	return 0
}

// RegionCost is the distance between entry and exit plus the usage
// penalty of the exit port.
func (p Policy) RegionCost(_ *hyperroute.Region, entry, exit *hyperroute.Port) float64 {
	cost := p.PortUsagePenalty(exit)
	from, ok1 := portPoint(entry)
	to, ok2 := portPoint(exit)
	if ok1 && ok2 {
		cost += from.Distance(to)
	}
	return cost
}

func (p Policy) SelectEntryCandidates(candidates []hyperroute.Candidate) []hyperroute.Candidate {
	if p.MaxEntries <= 0 || len(candidates) <= p.MaxEntries {
		return candidates
	}
	kept := slices.Clone(candidates)
	slices.SortStableFunc(kept, func(a, b hyperroute.Candidate) int {
		return cmp.Compare(entryDistance(a), entryDistance(b))
	})
	return kept[:p.MaxEntries]
}

func entryDistance(c hyperroute.Candidate) float64 {
	from, ok1 := portPoint(c.LastPort)
	to, ok2 := portPoint(c.Port)
	if !ok1 || !ok2 {
		return 0
	}
	return from.Distance(to)
}

func portPoint(p *hyperroute.Port) (Point, bool) {
	if p == nil {
		return Point{}, false
	}
	pt, ok := p.Data.(Point)
	return pt, ok
}

func isThroughJumperPort(p *hyperroute.Port) bool {
	for _, r := range []*hyperroute.Region{p.Region1, p.Region2} {
		if r == nil {
			continue
		}
		if d, ok := r.Data.(RegionData); ok && d.IsThroughJumper {
			return true
		}
	}
	return false
}
