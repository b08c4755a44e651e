package hyperroute

import "testing"

// graphBuilder assembles small graphs for tests. Regions keep the order in
// which their ports were added.
type graphBuilder struct {
	t       *testing.T
	regions map[RegionID]*Region
	order   []*Region
	ports   []*Port
}

func newGraphBuilder(t *testing.T, ids ...RegionID) *graphBuilder {
	t.Helper()
	b := &graphBuilder{t: t, regions: make(map[RegionID]*Region)}
	for _, id := range ids {
		r := &Region{ID: id}
		b.regions[id] = r
		b.order = append(b.order, r)
	}
	return b
}

func (b *graphBuilder) port(id PortID, r1, r2 RegionID) *graphBuilder {
	b.t.Helper()
	a, ok1 := b.regions[r1]
	c, ok2 := b.regions[r2]
	if !ok1 || !ok2 {
		b.t.Fatalf("port %s references unknown region", id)
	}
	p := &Port{ID: id, Region1: a, Region2: c}
	a.Ports = append(a.Ports, p)
	c.Ports = append(c.Ports, p)
	b.ports = append(b.ports, p)
	return b
}

func (b *graphBuilder) region(id RegionID) *Region {
	b.t.Helper()
	r, ok := b.regions[id]
	if !ok {
		b.t.Fatalf("unknown region %s", id)
	}
	return r
}

func (b *graphBuilder) conn(id ConnectionID, start, end RegionID, network NetworkID) *Connection {
	b.t.Helper()
	return &Connection{ID: id, Start: b.region(start), End: b.region(end), NetworkID: network}
}

func (b *graphBuilder) graph() *Graph {
	return NewGraph(b.order, b.ports)
}

// runToEnd steps s until it stops processing or limit steps elapse and
// returns the number of Step calls made.
func runToEnd(s *Solver, limit int) int {
	n := 0
	for s.Status() == RunProcessing && n < limit {
		s.Step()
		n++
	}
	return n
}

func portIDs(route *SolvedRoute) []PortID {
	var ids []PortID
	for _, p := range route.Ports() {
		ids = append(ids, p.ID)
	}
	return ids
}

// contestedGraph has two connections of different networks that both want
// port p. c1 can detour through Y; c2 can only reach T2 through p.
//
//	A1 -a1h- H -p- M -mt1- T1
//	A2 -a2h- H     M -mt2- T2
//	         H -hy- Y -yt1- T1
func contestedGraph(t *testing.T) (*graphBuilder, []*Connection) {
	t.Helper()
	b := newGraphBuilder(t, "A1", "A2", "H", "M", "Y", "T1", "T2").
		port("a1h", "A1", "H").
		port("a2h", "A2", "H").
		port("p", "H", "M").
		port("hy", "H", "Y").
		port("mt1", "M", "T1").
		port("mt2", "M", "T2").
		port("yt1", "Y", "T1")
	return b, []*Connection{
		b.conn("c1", "A1", "T1", "n1"),
		b.conn("c2", "A2", "T2", "n2"),
	}
}
