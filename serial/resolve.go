package serial

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/pdrpinto/hyperroute"
)

// Reference errors reported by Resolve.
var (
	ErrMissingRegion = errors.New("referenced region does not exist")
	ErrMissingPort   = errors.New("referenced port does not exist")
)

// Resolve builds the graph and connections described by doc. Every id
// reference is resolved and the resulting graph is validated; all problems
// are returned together.
func Resolve(doc *Document) (*hyperroute.Graph, []*hyperroute.Connection, error) {
	if doc == nil {
		return nil, nil, errors.New("serial: nil document")
	}
	var errs error

	regions := make([]*hyperroute.Region, 0, len(doc.Regions))
	regionByID := make(map[string]*hyperroute.Region, len(doc.Regions))
	for _, rd := range doc.Regions {
		r := &hyperroute.Region{ID: hyperroute.RegionID(rd.RegionID), Data: rd.D}
		regions = append(regions, r)
		if _, dup := regionByID[rd.RegionID]; !dup {
			regionByID[rd.RegionID] = r
		}
	}

	ports := make([]*hyperroute.Port, 0, len(doc.Ports))
	portByID := make(map[string]*hyperroute.Port, len(doc.Ports))
	for _, pd := range doc.Ports {
		p := &hyperroute.Port{ID: hyperroute.PortID(pd.PortID), Data: pd.D}
		var ok bool
		if p.Region1, ok = regionByID[pd.Region1ID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("port %q region1 %q: %w", pd.PortID, pd.Region1ID, ErrMissingRegion))
		}
		if p.Region2, ok = regionByID[pd.Region2ID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("port %q region2 %q: %w", pd.PortID, pd.Region2ID, ErrMissingRegion))
		}
		ports = append(ports, p)
		if _, dup := portByID[pd.PortID]; !dup {
			portByID[pd.PortID] = p
		}
	}

	for i, rd := range doc.Regions {
		r := regions[i]
		refs, explicit := rd.portRefs()
		if !explicit {
			for _, p := range ports {
				if p.Joins(r) {
					r.Ports = append(r.Ports, p)
				}
			}
			continue
		}
		for _, id := range refs {
			p, ok := portByID[id]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("region %q port %q: %w", rd.RegionID, id, ErrMissingPort))
				continue
			}
			r.Ports = append(r.Ports, p)
		}
	}

	connections := make([]*hyperroute.Connection, 0, len(doc.Connections))
	for _, cd := range doc.Connections {
		c := &hyperroute.Connection{
			ID:        hyperroute.ConnectionID(cd.ConnectionID),
			NetworkID: hyperroute.NetworkID(cd.NetworkID),
		}
		var ok bool
		if c.Start, ok = regionByID[cd.StartRegionID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("connection %q start %q: %w", cd.ConnectionID, cd.StartRegionID, ErrMissingRegion))
		}
		if c.End, ok = regionByID[cd.EndRegionID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("connection %q end %q: %w", cd.ConnectionID, cd.EndRegionID, ErrMissingRegion))
		}
		connections = append(connections, c)
	}
	if errs != nil {
		return nil, nil, errs
	}

	graph := hyperroute.NewGraph(regions, ports)
	if err := graph.Validate(); err != nil {
		return nil, nil, err
	}
	return graph, connections, nil
}

// FromGraph serializes a graph and its connections. Region port lists are
// written explicitly so that expansion order survives a round trip.
func FromGraph(g *hyperroute.Graph, connections []*hyperroute.Connection) *Document {
	doc := &Document{
		Regions: make([]RegionDoc, 0, len(g.Regions)),
		Ports:   make([]PortDoc, 0, len(g.Ports)),
	}
	for _, r := range g.Regions {
		rd := RegionDoc{RegionID: string(r.ID), PortIDs: make([]string, 0, len(r.Ports)), D: r.Data}
		for _, p := range r.Ports {
			rd.PortIDs = append(rd.PortIDs, string(p.ID))
		}
		doc.Regions = append(doc.Regions, rd)
	}
	for _, p := range g.Ports {
		doc.Ports = append(doc.Ports, PortDoc{
			PortID:    string(p.ID),
			Region1ID: string(p.Region1.ID),
			Region2ID: string(p.Region2.ID),
			D:         p.Data,
		})
	}
	for _, c := range connections {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			ConnectionID:  string(c.ID),
			StartRegionID: string(c.Start.ID),
			EndRegionID:   string(c.End.ID),
			NetworkID:     string(c.NetworkID),
		})
	}
	return doc
}
