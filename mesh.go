package ember

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrGridSize is returned when a requested mesh resolution is not positive.
var ErrGridSize = errors.New("grid size must be positive")

// ErrViewport is returned when a requested viewport dimension is not positive.
var ErrViewport = errors.New("viewport dimensions must be positive")

// maxMeshVertices is the largest vertex count addressable by the uint16
// index buffer. A 255x255 grid hits it exactly.
const maxMeshVertices = math.MaxUint16 + 1

// RadiusAngle is the static polar attribute pair for one mesh vertex.
// Radius folds the viewport aspect ratio in, so it stays constant across
// window resizes at the same aspect; angle encodes direction from center.
type RadiusAngle struct {
	Radius float32
	Angle  float32
}

// ZoomRotWarp holds the dynamic motion scalars for one mesh vertex, either
// copied uniformly from the per-frame values or produced by per-pixel code.
type ZoomRotWarp struct {
	Zoom    float32
	ZoomExp float32
	Rot     float32
	Warp    float32
}

// WarpMesh is the per-pixel transformation mesh. Each vertex carries a
// source sampling coordinate into the previous frame's image; scaling,
// rotating, and offsetting those coordinates per vertex (with fragment
// interpolation between grid points) produces the characteristic
// zoom/rotate/warp motion.
//
// A higher grid resolution improves quality, especially for rotations, but
// the per-pixel code runs once per vertex, so cost grows with it. The grid
// size and viewport can change between frames; buffers are reallocated only
// when needed.
//
// WarpMesh is not safe for concurrent use. All methods must be called from
// the render goroutine.
type WarpMesh struct {
	gridSizeX int
	gridSizeY int

	viewportWidth  int
	viewportHeight int

	aspectX float32
	aspectY float32

	// Parallel per-vertex attribute buffers. All of them always hold
	// exactly (gridSizeX+1)*(gridSizeY+1) entries and are reallocated
	// together in ensureBuffers.
	gridPos     []Point // static normalized position, x right, y up, in [-1, 1]
	radiusAngle []RadiusAngle
	zoomRotWarp []ZoomRotWarp
	center      []Point
	distance    []Point
	stretch     []Point

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewWarpMesh returns an empty mesh. Geometry is allocated on the first
// EnsureGeometry call.
func NewWarpMesh() *WarpMesh {
	return &WarpMesh{}
}

// GridSize returns the current mesh resolution in cells.
func (m *WarpMesh) GridSize() (x, y int) {
	return m.gridSizeX, m.gridSizeY
}

// Viewport returns the viewport dimensions the static attributes were last
// computed for.
func (m *WarpMesh) Viewport() (w, h int) {
	return m.viewportWidth, m.viewportHeight
}

// VertexCount returns the number of mesh vertices, (gridX+1)*(gridY+1).
func (m *WarpMesh) VertexCount() int {
	return len(m.vertices)
}

// Vertices returns the finalized vertex buffer for draw submission.
// The returned slice MUST NOT be mutated or retained across frames.
func (m *WarpMesh) Vertices() []ebiten.Vertex {
	return m.vertices
}

// Indices returns the triangle index buffer for draw submission.
// The returned slice MUST NOT be mutated.
func (m *WarpMesh) Indices() []uint16 {
	return m.indices
}

// EnsureGeometry makes the vertex buffers current for the given grid
// resolution and viewport. Buffers are reallocated only when the grid size
// changed; static per-vertex attributes are recomputed when either the grid
// size or the viewport changed. When nothing changed the call is a no-op
// and leaves every attribute bit-identical.
//
// Non-positive dimensions, and grids whose vertex count overflows the
// uint16 index buffer, are rejected before any buffer is touched.
func (m *WarpMesh) EnsureGeometry(gridX, gridY, viewportWidth, viewportHeight int) error {
	if gridX <= 0 || gridY <= 0 {
		return fmt.Errorf("warp mesh: %w (got %dx%d)", ErrGridSize, gridX, gridY)
	}
	if n := (gridX + 1) * (gridY + 1); n > maxMeshVertices {
		return fmt.Errorf("warp mesh: %w (%dx%d needs %d vertices, index buffer addresses %d)",
			ErrGridSize, gridX, gridY, n, maxMeshVertices)
	}
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return fmt.Errorf("warp mesh: %w (got %dx%d)", ErrViewport, viewportWidth, viewportHeight)
	}

	gridChanged := gridX != m.gridSizeX || gridY != m.gridSizeY
	viewportChanged := viewportWidth != m.viewportWidth || viewportHeight != m.viewportHeight
	if !gridChanged && !viewportChanged {
		return nil
	}

	m.gridSizeX = gridX
	m.gridSizeY = gridY
	m.viewportWidth = viewportWidth
	m.viewportHeight = viewportHeight

	if gridChanged {
		m.ensureBuffers()
		m.buildIndices()
	}
	m.computeStaticAttributes()
	return nil
}

// ensureBuffers reallocates every parallel attribute buffer for the current
// grid size. All buffers are replaced in the same call so their lengths
// never disagree.
func (m *WarpMesh) ensureBuffers() {
	count := (m.gridSizeX + 1) * (m.gridSizeY + 1)
	m.gridPos = make([]Point, count)
	m.radiusAngle = make([]RadiusAngle, count)
	m.zoomRotWarp = make([]ZoomRotWarp, count)
	m.center = make([]Point, count)
	m.distance = make([]Point, count)
	m.stretch = make([]Point, count)
	m.vertices = make([]ebiten.Vertex, count)
}

// buildIndices rebuilds the triangle list: two triangles per grid cell.
func (m *WarpMesh) buildIndices() {
	vcols := m.gridSizeX + 1
	need := m.gridSizeX * m.gridSizeY * 6
	if cap(m.indices) < need {
		m.indices = make([]uint16, need)
	}
	m.indices = m.indices[:need]

	ii := 0
	for r := 0; r < m.gridSizeY; r++ {
		for c := 0; c < m.gridSizeX; c++ {
			tl := uint16(r*vcols + c)
			tr := tl + 1
			bl := uint16((r+1)*vcols + c)
			br := bl + 1
			m.indices[ii+0] = tl
			m.indices[ii+1] = bl
			m.indices[ii+2] = tr
			m.indices[ii+3] = tr
			m.indices[ii+4] = bl
			m.indices[ii+5] = br
			ii += 6
		}
	}
}

// computeStaticAttributes fills the resolution- and aspect-dependent vertex
// values: normalized grid position, radius, angle, and the screen-space
// destination coordinates. Dynamic attributes are left untouched.
func (m *WarpMesh) computeStaticAttributes() {
	m.aspectX, m.aspectY = aspectPair(m.viewportWidth, m.viewportHeight)

	vcols := m.gridSizeX + 1
	vrows := m.gridSizeY + 1
	fx := float32(m.gridSizeX)
	fy := float32(m.gridSizeY)
	vw := float32(m.viewportWidth)
	vh := float32(m.viewportHeight)

	for j := 0; j < vrows; j++ {
		// y is up-positive in normalized space; row 0 is the top of the screen.
		y := 1 - float32(j)/fy*2
		for i := 0; i < vcols; i++ {
			x := float32(i)/fx*2 - 1
			idx := j*vcols + i

			m.gridPos[idx] = Point{X: x, Y: y}
			m.radiusAngle[idx] = RadiusAngle{
				Radius: math32.Sqrt(x*x*m.aspectX*m.aspectX + y*y*m.aspectY*m.aspectY),
				Angle:  math32.Atan2(y*m.aspectY, x*m.aspectX),
			}

			v := &m.vertices[idx]
			v.DstX = (x + 1) * 0.5 * vw
			v.DstY = (1 - y) * 0.5 * vh
		}
	}
}

// aspectPair returns the normalized aspect pair with the larger dimension
// mapped to 1. With it folded in, radius is proportional to the on-screen
// distance from center (1.0 at half the larger viewport dimension), so
// circles stay circular on non-square viewports.
func aspectPair(w, h int) (ax, ay float32) {
	ax, ay = 1, 1
	if w > h {
		ay = float32(h) / float32(w)
	} else if h > w {
		ax = float32(w) / float32(h)
	}
	return ax, ay
}
