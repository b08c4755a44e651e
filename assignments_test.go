package hyperroute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeOver(conn *Connection, ports ...*Port) *SolvedRoute {
	r := &SolvedRoute{Connection: conn}
	for i, p := range ports {
		r.Path = append(r.Path, Candidate{Port: p, G: float64(i), Parent: CandidateIndex(i - 1)})
	}
	return r
}

func TestPortAssignmentsAssignAndEvict(t *testing.T) {
	p1 := &Port{ID: "p1"}
	p2 := &Port{ID: "p2"}
	a := NewPortAssignments()

	first := routeOver(&Connection{ID: "c1", NetworkID: "n1"}, p1, p2)
	for _, p := range first.Ports() {
		displaced, assigned := a.Assign(p, first, false)
		assert.Nil(t, displaced)
		assert.True(t, assigned)
	}
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1.0, first.Cost())

	sameNet := routeOver(&Connection{ID: "c2", NetworkID: "n1"}, p1)
	displaced, assigned := a.Assign(p1, sameNet, true)
	assert.Nil(t, displaced)
	assert.False(t, assigned)
	owner, _ := a.Get("p1")
	assert.Same(t, first, owner)
	assert.False(t, a.Conflicts("p1", "n1"))

	otherNet := routeOver(&Connection{ID: "c3", NetworkID: "n2"}, p1)
	assert.True(t, a.Conflicts("p1", "n2"))
	displaced, assigned = a.Assign(p1, otherNet, false)
	assert.Nil(t, displaced)
	assert.False(t, assigned)

	displaced, assigned = a.Assign(p1, otherNet, true)
	assert.Same(t, first, displaced)
	assert.True(t, assigned)

	released := a.Evict(first)
	assert.Equal(t, []PortID{"p2"}, released)
	owner, ok := a.Get("p1")
	require.True(t, ok)
	assert.Same(t, otherNet, owner)
	_, ok = a.Get("p2")
	assert.False(t, ok)
	assert.ElementsMatch(t, []PortID{"p1"}, a.PortIDs())
}

func TestContentionPolicyPricesForeignPorts(t *testing.T) {
	b, conns := contestedGraph(t)
	policy := &ContentionPolicy{CostPolicy: NopPolicy{}, Penalty: 7}
	s, err := NewSolver(b.graph(), conns, WithRipping(true), WithPolicy(policy))
	require.NoError(t, err)

	for s.Active().ID == "c1" {
		s.Step()
	}
	p, _ := b.graph().Port("p")
	hy, _ := b.graph().Port("hy")
	assert.Equal(t, 7.0, policy.PortUsagePenalty(p))
	assert.Equal(t, 7.0, policy.RegionCost(b.region("H"), hy, p))
	assert.Zero(t, policy.PortUsagePenalty(hy))
}

func TestEmptyRouteCost(t *testing.T) {
	assert.Zero(t, (&SolvedRoute{}).Cost())
}

func TestPortAssignmentsUnsetNetworksShare(t *testing.T) {
	p := &Port{ID: "p"}
	a := NewPortAssignments()
	first := routeOver(&Connection{ID: "c1"}, p)
	_, assigned := a.Assign(p, first, false)
	require.True(t, assigned)

	assert.False(t, a.Conflicts("p", ""))
	assert.True(t, a.Conflicts("p", "gnd"))

	second := routeOver(&Connection{ID: "c2"}, p)
	displaced, assigned := a.Assign(p, second, true)
	assert.Nil(t, displaced)
	assert.False(t, assigned)
	owner, _ := a.Get("p")
	assert.Same(t, first, owner)
}
