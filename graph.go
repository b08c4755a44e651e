package hyperroute

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// RegionID identifies a region.
type RegionID string

// PortID identifies a port.
type PortID string

// ConnectionID identifies a connection.
type ConnectionID string

// NetworkID groups connections that may share ports without contention.
type NetworkID string

// Structural errors reported by Graph.Validate and NewSolver.
var (
	ErrEmptyID          = errors.New("empty id")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrDanglingRegion   = errors.New("port references missing region")
	ErrSelfLoopPort     = errors.New("port joins a region to itself")
	ErrInconsistentPort = errors.New("region and port disagree on membership")
	ErrUnknownRegion    = errors.New("connection references region outside graph")
)

// Region is a node of the routing hypergraph. Data is an opaque payload
// that only cost policies and visualizers interpret.
type Region struct {
	ID    RegionID
	Ports []*Port
	Data  any
}

// Port joins exactly two distinct regions. It has no direction.
type Port struct {
	ID      PortID
	Region1 *Region
	Region2 *Region
	Data    any
}

// Other returns the region on the far side of the port when crossing from r.
// It returns nil if r is not one of the port's regions.
func (p *Port) Other(r *Region) *Region {
	switch r {
	case p.Region1:
		return p.Region2
	case p.Region2:
		return p.Region1
	}
	return nil
}

// Joins reports whether the port touches r.
func (p *Port) Joins(r *Region) bool {
	return p.Region1 == r || p.Region2 == r
}

// Connection is a routing request between two regions. Connections with
// equal NetworkID, the empty id included, may share ports freely.
type Connection struct {
	ID        ConnectionID
	Start     *Region
	End       *Region
	NetworkID NetworkID
}

// Graph is the static structure the search runs over. It is immutable once
// handed to a Solver.
type Graph struct {
	Regions []*Region
	Ports   []*Port

	regionsByID map[RegionID]*Region
	portsByID   map[PortID]*Port
}

// NewGraph indexes the given regions and ports. On duplicate ids the first
// occurrence wins the index slot; Validate reports the duplicate.
func NewGraph(regions []*Region, ports []*Port) *Graph {
	g := &Graph{
		Regions:     regions,
		Ports:       ports,
		regionsByID: make(map[RegionID]*Region, len(regions)),
		portsByID:   make(map[PortID]*Port, len(ports)),
	}
	for _, r := range regions {
		if r == nil {
			continue
		}
		if _, ok := g.regionsByID[r.ID]; !ok {
			g.regionsByID[r.ID] = r
		}
	}
	for _, p := range ports {
		if p == nil {
			continue
		}
		if _, ok := g.portsByID[p.ID]; !ok {
			g.portsByID[p.ID] = p
		}
	}
	return g
}

// Region returns the region with the given id.
func (g *Graph) Region(id RegionID) (*Region, bool) {
	r, ok := g.regionsByID[id]
	return r, ok
}

// Port returns the port with the given id.
func (g *Graph) Port(id PortID) (*Port, bool) {
	p, ok := g.portsByID[id]
	return p, ok
}

// Contains reports whether r is the region indexed under its id.
func (g *Graph) Contains(r *Region) bool {
	if r == nil {
		return false
	}
	indexed, ok := g.regionsByID[r.ID]
	return ok && indexed == r
}

// Validate checks the structural invariants of the graph and returns every
// violation found, combined.
func (g *Graph) Validate() error {
	var err error

	seenRegions := make(map[RegionID]bool, len(g.Regions))
	for i, r := range g.Regions {
		if r == nil {
			err = multierr.Append(err, fmt.Errorf("region #%d is nil: %w", i, ErrEmptyID))
			continue
		}
		if r.ID == "" {
			err = multierr.Append(err, fmt.Errorf("region #%d: %w", i, ErrEmptyID))
		}
		if seenRegions[r.ID] {
			err = multierr.Append(err, fmt.Errorf("region %q: %w", r.ID, ErrDuplicateID))
		}
		seenRegions[r.ID] = true
	}

	seenPorts := make(map[PortID]bool, len(g.Ports))
	for i, p := range g.Ports {
		if p == nil {
			err = multierr.Append(err, fmt.Errorf("port #%d is nil: %w", i, ErrEmptyID))
			continue
		}
		if p.ID == "" {
			err = multierr.Append(err, fmt.Errorf("port #%d: %w", i, ErrEmptyID))
		}
		if seenPorts[p.ID] {
			err = multierr.Append(err, fmt.Errorf("port %q: %w", p.ID, ErrDuplicateID))
		}
		seenPorts[p.ID] = true

		if !g.Contains(p.Region1) || !g.Contains(p.Region2) {
			err = multierr.Append(err, fmt.Errorf("port %q: %w", p.ID, ErrDanglingRegion))
			continue
		}
		if p.Region1 == p.Region2 {
			err = multierr.Append(err, fmt.Errorf("port %q: %w", p.ID, ErrSelfLoopPort))
			continue
		}
		for _, r := range []*Region{p.Region1, p.Region2} {
			if !listsPort(r, p) {
				err = multierr.Append(err, fmt.Errorf("port %q not listed by region %q: %w", p.ID, r.ID, ErrInconsistentPort))
			}
		}
	}

	for _, r := range g.Regions {
		if r == nil {
			continue
		}
		for _, p := range r.Ports {
			if p == nil || !p.Joins(r) {
				id := PortID("<nil>")
				if p != nil {
					id = p.ID
				}
				err = multierr.Append(err, fmt.Errorf("region %q lists port %q that does not join it: %w", r.ID, id, ErrInconsistentPort))
				continue
			}
			if indexed, ok := g.portsByID[p.ID]; !ok || indexed != p {
				err = multierr.Append(err, fmt.Errorf("region %q lists port %q outside graph: %w", r.ID, p.ID, ErrInconsistentPort))
			}
		}
	}

	return err
}

func listsPort(r *Region, p *Port) bool {
	for _, candidate := range r.Ports {
		if candidate == p {
			return true
		}
	}
	return false
}
