package genart

import "math"

// PacketKind distinguishes the three render-packet shapes a program
// can emit (spec §6.4).
type PacketKind int

const (
	PacketGeometry PacketKind = iota
	PacketMask
	PacketImage
)

func (k PacketKind) String() string {
	switch k {
	case PacketGeometry:
		return "Geometry"
	case PacketMask:
		return "Mask"
	default:
		return "Image"
	}
}

// Vertex is the fixed per-vertex layout every packet uses: position,
// colour and texture coordinate (spec §6.4 "x,y,r,g,b,a,u,v").
type Vertex struct {
	X, Y          float32
	R, G, B, A    float32
	U, V          float32
}

// maxPacketVertices bounds a single triangle-strip packet; a strip
// that would grow past it is closed and a new packet opened, so no
// packet ever needs a vertex count wider than a uint16 index buffer
// could address.
const maxPacketVertices = 1 << 16

// Packet is one contiguous triangle strip, plus the bitmap it samples
// from (only meaningful for PacketImage).
type Packet struct {
	Kind     PacketKind
	Vertices []Vertex
	Bitmap   string
}

// RenderList accumulates the packets a program produces by drawing.
// Grounded on the shape described in spec §6.4; implemented by hand
// since nothing in the example pack offers an idiomatic Go 2D
// triangle-strip builder.
type RenderList struct {
	Packets []Packet
}

func NewRenderList() *RenderList {
	return &RenderList{}
}

// openPacket returns the current packet for kind/bitmap, starting a
// new one if none is open, the kind changed, the bitmap changed, or
// the current packet has no room for a strip of n vertices plus its
// two bridging vertices.
func (rl *RenderList) openPacket(kind PacketKind, bitmap string, n int) *Packet {
	if k := len(rl.Packets); k > 0 {
		p := &rl.Packets[k-1]
		if p.Kind == kind && p.Bitmap == bitmap && len(p.Vertices)+2+n <= maxPacketVertices {
			return p
		}
	}
	rl.Packets = append(rl.Packets, Packet{Kind: kind, Bitmap: bitmap})
	return &rl.Packets[len(rl.Packets)-1]
}

// AddTriangleStrip appends verts as a new triangle strip to the
// appropriate packet. If a strip is already open in that packet, a
// degenerate (zero-area) bridging triangle is inserted first by
// repeating the last and first vertices, so the whole packet can still
// be drawn as a single strip (spec §6.4 "degenerate triangle
// continuation").
func (rl *RenderList) AddTriangleStrip(kind PacketKind, bitmap string, verts []Vertex) {
	if len(verts) == 0 {
		return
	}
	p := rl.openPacket(kind, bitmap, len(verts))
	if len(p.Vertices) > 0 {
		last := p.Vertices[len(p.Vertices)-1]
		p.Vertices = append(p.Vertices, last, verts[0])
	}
	p.Vertices = append(p.Vertices, verts...)
}

func quadVertices(cx, cy, w, h float32, colour Var) []Vertex {
	c := [4]float32{colour.E0, colour.E1, colour.E2, colour.E3}
	hw, hh := w/2, h/2
	return []Vertex{
		{X: cx - hw, Y: cy - hh, R: c[0], G: c[1], B: c[2], A: c[3]},
		{X: cx + hw, Y: cy - hh, R: c[0], G: c[1], B: c[2], A: c[3], U: 1},
		{X: cx - hw, Y: cy + hh, R: c[0], G: c[1], B: c[2], A: c[3], V: 1},
		{X: cx + hw, Y: cy + hh, R: c[0], G: c[1], B: c[2], A: c[3], U: 1, V: 1},
	}
}

func lineVertices(x0, y0, x1, y1, width float32, colour Var) []Vertex {
	c := [4]float32{colour.E0, colour.E1, colour.E2, colour.E3}
	dx, dy := x1-x0, y1-y0
	length := dx*dx + dy*dy
	var nx, ny float32
	if length > 0 {
		inv := width / 2
		nx, ny = -dy, dx
		mag := float32(math.Sqrt(float64(nx*nx + ny*ny)))
		if mag > 0 {
			nx, ny = nx/mag*inv, ny/mag*inv
		}
	}
	return []Vertex{
		{X: x0 - nx, Y: y0 - ny, R: c[0], G: c[1], B: c[2], A: c[3]},
		{X: x0 + nx, Y: y0 + ny, R: c[0], G: c[1], B: c[2], A: c[3]},
		{X: x1 - nx, Y: y1 - ny, R: c[0], G: c[1], B: c[2], A: c[3]},
		{X: x1 + nx, Y: y1 + ny, R: c[0], G: c[1], B: c[2], A: c[3]},
	}
}

func circleVertices(cx, cy, radius float32, tessellation int, colour Var) []Vertex {
	if tessellation < 3 {
		tessellation = 3
	}
	c := [4]float32{colour.E0, colour.E1, colour.E2, colour.E3}
	verts := make([]Vertex, 0, tessellation*3)
	prevX, prevY := cx+radius, cy
	const tau = 6.2831855
	for i := 1; i <= tessellation; i++ {
		theta := tau * float32(i) / float32(tessellation)
		x := cx + radius*float32(math.Cos(float64(theta)))
		y := cy + radius*float32(math.Sin(float64(theta)))
		verts = append(verts,
			Vertex{X: cx, Y: cy, R: c[0], G: c[1], B: c[2], A: c[3]},
			Vertex{X: prevX, Y: prevY, R: c[0], G: c[1], B: c[2], A: c[3]},
			Vertex{X: x, Y: y, R: c[0], G: c[1], B: c[2], A: c[3]},
		)
		prevX, prevY = x, y
	}
	return verts
}
