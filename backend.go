package ember

import "github.com/hajimehoshi/ebiten/v2"

// MeshDraw is one finalized warp mesh submission: vertex data computed by
// the engine, plus the shader and sampler policy chosen by the selector.
type MeshDraw struct {
	Vertices []ebiten.Vertex
	Indices  []uint16
	// Shader may be nil, selecting the backend's fixed-function path.
	Shader   *ebiten.Shader
	Uniforms map[string]any
	Address  SamplerAddress
}

// DrawBackend performs the actual draw submission. The engine computes
// vertex data and hands it across this boundary; it never issues graphics
// calls itself, which keeps the geometry pipeline testable without a GPU.
type DrawBackend interface {
	// DrawMesh renders the warp mesh, sampling src into dst.
	DrawMesh(dst, src *ebiten.Image, d MeshDraw)
}

// EbitenBackend submits mesh draws through Ebitengine.
type EbitenBackend struct {
	shaderOp ebiten.DrawTrianglesShaderOptions
	plainOp  ebiten.DrawTrianglesOptions
}

// NewEbitenBackend creates the standard GPU submission backend.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{}
}

// DrawMesh renders via DrawTrianglesShader, or plain DrawTriangles when no
// shader is given. The sampler address policy maps to the Repeat uniform on
// the shader path and to the triangle options otherwise.
func (b *EbitenBackend) DrawMesh(dst, src *ebiten.Image, d MeshDraw) {
	if d.Shader != nil {
		uniforms := d.Uniforms
		if uniforms == nil {
			uniforms = map[string]any{}
		}
		if _, ok := uniforms["Repeat"]; !ok {
			repeat := float32(0)
			if d.Address == SamplerRepeat {
				repeat = 1
			}
			uniforms["Repeat"] = repeat
		}
		b.shaderOp.Images[0] = src
		b.shaderOp.Uniforms = uniforms
		dst.DrawTrianglesShader(d.Vertices, d.Indices, d.Shader, &b.shaderOp)
		return
	}

	b.plainOp.Address = d.Address.EbitenAddress()
	b.plainOp.Filter = ebiten.FilterLinear
	dst.DrawTriangles(d.Vertices, d.Indices, src, &b.plainOp)
}
