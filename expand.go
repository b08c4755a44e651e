package hyperroute

// entryGroup collects the successors that would enter the same region.
type entryGroup struct {
	region     *Region
	candidates []Candidate
}

// expand builds the successors of the candidate at idx: one per port of the
// entered region other than the port just crossed. Successors are grouped by
// the region they enter, filtered by the policy, then costed.
func (s *Solver) expand(idx CandidateIndex) []Candidate {
	parent := s.arena.get(idx)
	region := parent.NextRegion
	network := s.active.NetworkID

	var groups []*entryGroup
	byRegion := make(map[RegionID]*entryGroup)
	for _, port := range region.Ports {
		if port == parent.Port {
			continue
		}
		rips := parent.RipsRequired
		if s.assignments.Conflicts(port.ID, network) {
			rips++
		}
		if rips > 0 && !s.opts.RippingEnabled {
			continue
		}
		next := port.Other(region)
		group, ok := byRegion[next.ID]
		if !ok {
			group = &entryGroup{region: next}
			byRegion[next.ID] = group
			groups = append(groups, group)
		}
		group.candidates = append(group.candidates, Candidate{
			Port:         port,
			Hops:         parent.Hops + 1,
			RipsRequired: rips,
			Parent:       idx,
			LastPort:     parent.Port,
			LastRegion:   region,
			NextRegion:   next,
		})
	}

	var successors []Candidate
	for _, group := range groups {
		successors = append(successors, s.opts.Policy.SelectEntryCandidates(group.candidates)...)
	}

	for i := range successors {
		next := &successors[i]
		next.G = parent.G + s.opts.Policy.RegionCost(next.LastRegion, next.LastPort, next.Port)
		next.H = s.opts.Policy.EstimateCostToEnd(next.Port, s.active.End)
		next.F = next.G + next.H*s.opts.GreedyMultiplier
	}
	return successors
}
