package jumper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/hyperroute"
)

func solve(t *testing.T, g *hyperroute.Graph, conns []*hyperroute.Connection, opts ...hyperroute.Option) *hyperroute.Solver {
	t.Helper()
	s, err := hyperroute.NewSolver(g, conns, opts...)
	require.NoError(t, err)
	for i := 0; i < 10000 && s.Status() == hyperroute.RunProcessing; i++ {
		s.Step()
	}
	return s
}

func region(t *testing.T, topo *Topology, id hyperroute.RegionID) *hyperroute.Region {
	t.Helper()
	r, ok := topo.Region(id)
	require.True(t, ok, "region %s", id)
	return r
}

func ids(r *hyperroute.SolvedRoute) []hyperroute.PortID {
	var out []hyperroute.PortID
	for _, p := range r.Ports() {
		out = append(out, p.ID)
	}
	return out
}

func TestPolicyCosts(t *testing.T) {
	topo := SingleJumperX2(Point{}, "j")
	pol := Policy{ThroughJumperPenalty: 3}
	pad1 := region(t, topo, "j:pad1")
	pad4 := region(t, topo, "j:pad4")

	tp1, tj1p1 := pad1.Ports[0], pad1.Ports[3]
	assert.Zero(t, pol.PortUsagePenalty(tp1))
	assert.Equal(t, 3.0, pol.PortUsagePenalty(tj1p1))

	// T-P1 sits at (-0.4, 0.625); pad4 is centred on (0.4, -0.4).
	assert.InDelta(t, Point{X: -0.4, Y: 0.625}.Distance(Point{X: 0.4, Y: -0.4}), pol.EstimateCostToEnd(tp1, pad4), 1e-9)

	// T-P1 to TJ1-P1 inside pad1 is 0.225 long, plus the penalty.
	assert.InDelta(t, 3.225, pol.RegionCost(pad1, tp1, tj1p1), 1e-9)

	bare := &hyperroute.Port{ID: "bare"}
	assert.Zero(t, pol.EstimateCostToEnd(bare, pad4))
	assert.Zero(t, pol.RegionCost(pad1, bare, tp1))
}

func TestPolicyKeepsNearestEntries(t *testing.T) {
	from := &hyperroute.Port{ID: "from", Data: Point{}}
	far := hyperroute.Candidate{Port: &hyperroute.Port{ID: "far", Data: Point{X: 5}}, LastPort: from}
	near := hyperroute.Candidate{Port: &hyperroute.Port{ID: "near", Data: Point{X: 1}}, LastPort: from}
	mid := hyperroute.Candidate{Port: &hyperroute.Port{ID: "mid", Data: Point{X: 3}}, LastPort: from}
	in := []hyperroute.Candidate{far, near, mid}

	kept := Policy{MaxEntries: 2}.SelectEntryCandidates(in)
	require.Len(t, kept, 2)
	assert.Equal(t, hyperroute.PortID("near"), kept[0].Port.ID)
	assert.Equal(t, hyperroute.PortID("mid"), kept[1].Port.ID)
	assert.Equal(t, hyperroute.PortID("far"), in[0].Port.ID, "input is not reordered")

	assert.Len(t, Policy{}.SelectEntryCandidates(in), 3)
}

func TestSolveAcrossSingleJumper(t *testing.T) {
	topo := SingleJumperX2(Point{}, "j")
	conns := []*hyperroute.Connection{
		{ID: "a", Start: region(t, topo, "j:pad1"), End: region(t, topo, "j:pad3"), NetworkID: "n1"},
		{ID: "b", Start: region(t, topo, "j:pad2"), End: region(t, topo, "j:pad4"), NetworkID: "n2"},
	}
	s := solve(t, topo.Graph(), conns, hyperroute.WithPolicy(Policy{ThroughJumperPenalty: 1}))
	require.True(t, s.Solved(), s.ErrorMessage())

	a, ok := s.Route("a")
	require.True(t, ok)
	assert.Equal(t, []hyperroute.PortID{"j:T-P1", "j:T-L", "j:L-CG", "j:CG-P3"}, ids(a))
	b, ok := s.Route("b")
	require.True(t, ok)
	assert.Equal(t, []hyperroute.PortID{"j:T-P2", "j:T-R", "j:R-CG", "j:CG-P4"}, ids(b))
	assert.Positive(t, a.Cost())

	used := map[hyperroute.PortID]bool{}
	for _, p := range a.Ports() {
		used[p.ID] = true
	}
	for _, p := range b.Ports() {
		assert.False(t, used[p.ID], "port %s shared by different networks", p.ID)
	}
}

func TestSolveAcrossGrid(t *testing.T) {
	topo, err := Grid(2, 1, 3, 3)
	require.NoError(t, err)
	start := region(t, topo, hyperroute.RegionID(TilePrefix(0, 0)+":pad1"))
	end := region(t, topo, hyperroute.RegionID(TilePrefix(1, 0)+":pad4"))

	pol := &hyperroute.ContentionPolicy{CostPolicy: Policy{ThroughJumperPenalty: 1}, Penalty: 10}
	s := solve(t, topo.Graph(), []*hyperroute.Connection{{ID: "x", Start: start, End: end}},
		hyperroute.WithPolicy(pol), hyperroute.WithRipping(true), hyperroute.WithGreedyMultiplier(1.5))
	require.True(t, s.Solved(), s.ErrorMessage())

	route, _ := s.Route("x")
	var crossed bool
	for _, p := range route.Ports() {
		if p.ID == "j0_0:R-j1_0:L" {
			crossed = true
		}
	}
	assert.True(t, crossed, "the only way between tiles is the stitch port")
}
