package jumper

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/hyperroute"
)

// Point is a port position.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX float64 `yaml:"minX" json:"minX"`
	MaxX float64 `yaml:"maxX" json:"maxX"`
	MinY float64 `yaml:"minY" json:"minY"`
	MaxY float64 `yaml:"maxY" json:"maxY"`
}

// Center returns the centre of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// RegionData is the payload attached to every generated region.
type RegionData struct {
	Bounds          Bounds `yaml:"bounds" json:"bounds"`
	IsPad           bool   `yaml:"isPad" json:"isPad"`
	IsThroughJumper bool   `yaml:"isThroughJumper,omitempty" json:"isThroughJumper,omitempty"`
}

// Dimensions describes the jumper package, in millimetres.
type Dimensions struct {
	PadLength         float64
	PadWidth          float64
	Pitch             float64
	RowPitch          float64
	ThroughJumperSize float64
	SurroundSize      float64
}

// Dims0606x2 are the dimensions of a 0606x2 resistor chip array.
var Dims0606x2 = Dimensions{
	PadLength:         0.8,
	PadWidth:          0.45,
	Pitch:             0.8,
	RowPitch:          0.8,
	ThroughJumperSize: 0.3,
	SurroundSize:      0.5,
}

// boundaryEps is the tolerance used to decide that two edges touch.
const boundaryEps = 0.001

// Topology is a generated set of regions and ports.
type Topology struct {
	Regions []*hyperroute.Region
	Ports   []*hyperroute.Port

	byID map[hyperroute.RegionID]*hyperroute.Region
}

// Graph indexes the topology.
func (t *Topology) Graph() *hyperroute.Graph {
	return hyperroute.NewGraph(t.Regions, t.Ports)
}

// Region returns the region with the given id.
func (t *Topology) Region(id hyperroute.RegionID) (*hyperroute.Region, bool) {
	r, ok := t.byID[id]
	return r, ok
}

func (t *Topology) addRegion(id string, b Bounds, pad, through bool) *hyperroute.Region {
	r := &hyperroute.Region{
		ID:   hyperroute.RegionID(id),
		Data: RegionData{Bounds: b, IsPad: pad, IsThroughJumper: through},
	}
	if t.byID == nil {
		t.byID = make(map[hyperroute.RegionID]*hyperroute.Region)
	}
	t.byID[r.ID] = r
	t.Regions = append(t.Regions, r)
	return r
}

func (t *Topology) addPort(id string, r1, r2 *hyperroute.Region, at Point) *hyperroute.Port {
	p := &hyperroute.Port{ID: hyperroute.PortID(id), Region1: r1, Region2: r2, Data: at}
	r1.Ports = append(r1.Ports, p)
	r2.Ports = append(r2.Ports, p)
	t.Ports = append(t.Ports, p)
	return p
}

// boundaryPoint places a port at the middle of the edge shared by two
// touching rectangles.
func boundaryPoint(b1, b2 Bounds) Point {
	overlapY := (math.Max(b1.MinY, b2.MinY) + math.Min(b1.MaxY, b2.MaxY)) / 2
	overlapX := (math.Max(b1.MinX, b2.MinX) + math.Min(b1.MaxX, b2.MaxX)) / 2
	switch {
	case math.Abs(b1.MaxX-b2.MinX) < boundaryEps:
		return Point{X: b1.MaxX, Y: overlapY}
	case math.Abs(b1.MinX-b2.MaxX) < boundaryEps:
		return Point{X: b1.MinX, Y: overlapY}
	case math.Abs(b1.MaxY-b2.MinY) < boundaryEps:
		return Point{X: overlapX, Y: b1.MaxY}
	default:
		return Point{X: overlapX, Y: b1.MinY}
	}
}

// SingleJumperX2 generates the 13 regions and 24 ports around one 0606x2
// jumper centred at center. Ids are "<prefix>:<name>". The top resistor
// row joins pad1 and pad2, the bottom row pad3 and pad4.
func SingleJumperX2(center Point, prefix string) *Topology {
	t := &Topology{}
	addSingleJumperX2(t, center, prefix, Dims0606x2)
	return t
}

type surround struct {
	top, bottom, left, right *hyperroute.Region
}

func addSingleJumperX2(t *Topology, center Point, prefix string, d Dimensions) surround {
	halfLen, halfWidth := d.PadLength/2, d.PadWidth/2
	leftX, rightX := center.X-d.Pitch/2, center.X+d.Pitch/2
	topY, bottomY := center.Y+d.RowPitch/2, center.Y-d.RowPitch/2

	pad := func(x, y float64) Bounds {
		return Bounds{MinX: x - halfLen, MaxX: x + halfLen, MinY: y - halfWidth, MaxY: y + halfWidth}
	}
	p1b, p2b := pad(leftX, topY), pad(rightX, topY)
	p3b, p4b := pad(leftX, bottomY), pad(rightX, bottomY)

	uj1b := Bounds{MinX: p1b.MaxX, MaxX: p2b.MinX, MinY: topY - halfWidth, MaxY: topY + halfWidth}
	uj2b := Bounds{MinX: p3b.MaxX, MaxX: p4b.MinX, MinY: bottomY - halfWidth, MaxY: bottomY + halfWidth}
	cgb := Bounds{MinX: p1b.MinX, MaxX: p2b.MaxX, MinY: p3b.MaxY, MaxY: p1b.MinY}
	halfTJ := d.ThroughJumperSize / 2
	tj1b := Bounds{MinX: leftX, MaxX: rightX, MinY: topY - halfTJ, MaxY: topY + halfTJ}
	tj2b := Bounds{MinX: leftX, MaxX: rightX, MinY: bottomY - halfTJ, MaxY: bottomY + halfTJ}

	minX, maxX := p1b.MinX, p2b.MaxX
	minY, maxY := p3b.MinY, p1b.MaxY
	s := d.SurroundSize

	name := func(n string) string { return prefix + ":" + n }
	pad1 := t.addRegion(name("pad1"), p1b, true, false)
	pad2 := t.addRegion(name("pad2"), p2b, true, false)
	pad3 := t.addRegion(name("pad3"), p3b, true, false)
	pad4 := t.addRegion(name("pad4"), p4b, true, false)
	uj1 := t.addRegion(name("underjumper1"), uj1b, false, false)
	uj2 := t.addRegion(name("underjumper2"), uj2b, false, false)
	cg := t.addRegion(name("centerGap"), cgb, false, false)
	tj1 := t.addRegion(name("throughjumper1"), tj1b, false, true)
	tj2 := t.addRegion(name("throughjumper2"), tj2b, false, true)
	top := t.addRegion(name("T"), Bounds{MinX: minX - s, MaxX: maxX + s, MinY: maxY, MaxY: maxY + s}, false, false)
	bottom := t.addRegion(name("B"), Bounds{MinX: minX - s, MaxX: maxX + s, MinY: minY - s, MaxY: minY}, false, false)
	left := t.addRegion(name("L"), Bounds{MinX: minX - s, MaxX: minX, MinY: minY, MaxY: maxY}, false, false)
	right := t.addRegion(name("R"), Bounds{MinX: maxX, MaxX: maxX + s, MinY: minY, MaxY: maxY}, false, false)

	edge := func(id string, r1, r2 *hyperroute.Region) {
		b1 := r1.Data.(RegionData).Bounds
		b2 := r2.Data.(RegionData).Bounds
		t.addPort(name(id), r1, r2, boundaryPoint(b1, b2))
	}
	edge("T-L", top, left)
	edge("T-R", top, right)
	edge("B-L", bottom, left)
	edge("B-R", bottom, right)

	edge("T-P1", top, pad1)
	edge("L-P1", left, pad1)
	edge("T-P2", top, pad2)
	edge("R-P2", right, pad2)

	edge("B-P3", bottom, pad3)
	edge("L-P3", left, pad3)
	edge("B-P4", bottom, pad4)
	edge("R-P4", right, pad4)

	// Under-jumper channels have no ports to the pads.
	edge("T-UJ1", top, uj1)
	edge("B-UJ2", bottom, uj2)

	edge("L-CG", left, cg)
	edge("R-CG", right, cg)
	edge("CG-P1", cg, pad1)
	edge("CG-P2", cg, pad2)
	edge("CG-P3", cg, pad3)
	edge("CG-P4", cg, pad4)

	// Through-jumper ports sit at the pad centres.
	t.addPort(name("TJ1-P1"), tj1, pad1, Point{X: leftX, Y: topY})
	t.addPort(name("TJ1-P2"), tj1, pad2, Point{X: rightX, Y: topY})
	t.addPort(name("TJ2-P3"), tj2, pad3, Point{X: leftX, Y: bottomY})
	t.addPort(name("TJ2-P4"), tj2, pad4, Point{X: rightX, Y: bottomY})

	return surround{top: top, bottom: bottom, left: left, right: right}
}

// TilePrefix is the id prefix of the jumper at column col and row row.
func TilePrefix(col, row int) string {
	return fmt.Sprintf("j%d_%d", col, row)
}

// Grid generates cols x rows jumpers spaced by pitchX and pitchY. The right
// surround of each tile is joined to the left surround of its neighbour and
// the top surround to the bottom surround of the tile above.
func Grid(cols, rows int, pitchX, pitchY float64) (*Topology, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("jumper grid needs at least one tile, got %dx%d", cols, rows)
	}
	width, height := Dims0606x2.outerSize()
	if pitchX < width || pitchY < height {
		return nil, fmt.Errorf("jumper grid pitch %vx%v is smaller than a tile (%vx%v)", pitchX, pitchY, width, height)
	}

	t := &Topology{}
	tiles := make([][]surround, cols)
	for c := 0; c < cols; c++ {
		tiles[c] = make([]surround, rows)
		for r := 0; r < rows; r++ {
			center := Point{X: float64(c) * pitchX, Y: float64(r) * pitchY}
			tiles[c][r] = addSingleJumperX2(t, center, TilePrefix(c, r), Dims0606x2)
		}
	}

	stitch := func(a, b *hyperroute.Region) {
		pa := a.Data.(RegionData).Bounds.Center()
		pb := b.Data.(RegionData).Bounds.Center()
		at := Point{X: (pa.X + pb.X) / 2, Y: (pa.Y + pb.Y) / 2}
		t.addPort(string(a.ID)+"-"+string(b.ID), a, b, at)
	}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if c+1 < cols {
				stitch(tiles[c][r].right, tiles[c+1][r].left)
			}
			if r+1 < rows {
				stitch(tiles[c][r].top, tiles[c][r+1].bottom)
			}
		}
	}
	return t, nil
}

func (d Dimensions) outerSize() (width, height float64) {
	width = d.Pitch + d.PadLength + 2*d.SurroundSize
	height = d.RowPitch + d.PadWidth + 2*d.SurroundSize
	return width, height
}

// DecodeData converts generic region and port payloads, as produced by
// decoding a serialized document, back into RegionData and Point values.
// Payloads that are already typed are left alone.
func DecodeData(g *hyperroute.Graph) error {
	for _, r := range g.Regions {
		if _, ok := r.Data.(RegionData); ok || r.Data == nil {
			continue
		}
		var d RegionData
		if err := convert(r.Data, &d); err != nil {
			return fmt.Errorf("region %q: %w", r.ID, err)
		}
		r.Data = d
	}
	for _, p := range g.Ports {
		if _, ok := p.Data.(Point); ok || p.Data == nil {
			continue
		}
		var pt Point
		if err := convert(p.Data, &pt); err != nil {
			return fmt.Errorf("port %q: %w", p.ID, err)
		}
		p.Data = pt
	}
	return nil
}

func convert(in, out any) error {
	raw, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}
