package serial

// Document is the serialized form of a graph and its connections.
type Document struct {
	Regions     []RegionDoc     `yaml:"regions" json:"regions"`
	Ports       []PortDoc       `yaml:"ports" json:"ports"`
	Connections []ConnectionDoc `yaml:"connections,omitempty" json:"connections,omitempty"`
}

// RegionDoc is a serialized region. PortIDs fixes the order in which the
// region's ports are expanded. When both PortIDs and PointIDs are nil the
// region's ports are attached in document port order.
type RegionDoc struct {
	RegionID string   `yaml:"regionId" json:"regionId"`
	PortIDs  []string `yaml:"portIds,omitempty" json:"portIds,omitempty"`
	// PointIDs is an older spelling of PortIDs.
	PointIDs []string `yaml:"pointIds,omitempty" json:"pointIds,omitempty"`
	D        any      `yaml:"d,omitempty" json:"d,omitempty"`
}

// PortDoc is a serialized port.
type PortDoc struct {
	PortID    string `yaml:"portId" json:"portId"`
	Region1ID string `yaml:"region1Id" json:"region1Id"`
	Region2ID string `yaml:"region2Id" json:"region2Id"`
	D         any    `yaml:"d,omitempty" json:"d,omitempty"`
}

// ConnectionDoc is a serialized connection. Connections with the same
// NetworkID, including the empty one, share ports without contention.
type ConnectionDoc struct {
	ConnectionID  string `yaml:"connectionId" json:"connectionId"`
	StartRegionID string `yaml:"startRegionId" json:"startRegionId"`
	EndRegionID   string `yaml:"endRegionId" json:"endRegionId"`
	NetworkID     string `yaml:"networkId,omitempty" json:"networkId,omitempty"`
}

func (r RegionDoc) portRefs() ([]string, bool) {
	switch {
	case r.PortIDs != nil:
		return r.PortIDs, true
	case r.PointIDs != nil:
		return r.PointIDs, true
	}
	return nil, false
}
