package ember

import "github.com/chewxy/math32"

// warpOffsetScale is the amplitude of one warp oscillator term in texture
// space. Four terms combine for a peak displacement of 1.4% of the screen
// per unit of warp strength.
const warpOffsetScale = 0.0035

// warpCoefficients returns the four slowly-drifting spatial frequencies of
// the warp pattern. Each oscillates around a distinct base rate so the
// combined distortion never visibly repeats.
func warpCoefficients(warpTime float32) (f0, f1, f2, f3 float32) {
	f0 = 11.68 + 4.0*math32.Cos(warpTime*1.413+10)
	f1 = 8.77 + 3.0*math32.Cos(warpTime*1.113+7)
	f2 = 10.54 + 3.0*math32.Cos(warpTime*1.233+3)
	f3 = 11.49 + 4.0*math32.Cos(warpTime*0.933+5)
	return
}

// CalculateCoordinates recomputes the per-vertex source sampling coordinates
// from the frame's evaluated scalars. When vertexEval is non-nil the
// preset's per-pixel code runs once per vertex and its results override the
// uniform values for that vertex; otherwise every vertex shares the frame
// scalars.
//
// Evaluator output is trusted as-is. Non-finite or extreme values propagate
// into the vertex buffer and degrade the visual output for the frame, but
// never fail it.
//
// EnsureGeometry must have succeeded at least once before calling this.
func (m *WarpMesh) CalculateCoordinates(frame FrameScalars, vertexEval VertexEvaluator, frameTime float64) {
	warpTime := float32(frameTime * frame.WarpAnimSpeed)
	warpScaleInv := float32(1.0 / frame.WarpScale)
	f0, f1, f2, f3 := warpCoefficients(warpTime)

	// Vertex color carries the decay multiplier in legacy 8-bit semantics.
	decay := WrapColor(float32(frame.Decay))

	texW := float32(m.viewportWidth)
	texH := float32(m.viewportHeight)

	uniform := uniformScalars(frame)

	for idx := range m.vertices {
		pos := m.gridPos[idx]
		ra := m.radiusAngle[idx]

		vs := uniform
		if vertexEval != nil {
			vs = vertexEval.EvalVertex(frame, pos.X, pos.Y, ra.Radius, ra.Angle)
		}

		m.zoomRotWarp[idx] = ZoomRotWarp{
			Zoom:    float32(vs.Zoom),
			ZoomExp: float32(vs.ZoomExp),
			Rot:     float32(vs.Rot),
			Warp:    float32(vs.Warp),
		}
		m.center[idx] = Point{X: float32(vs.CX), Y: float32(vs.CY)}
		m.distance[idx] = Point{X: float32(vs.DX), Y: float32(vs.DY)}
		m.stretch[idx] = Point{X: float32(vs.SX), Y: float32(vs.SY)}

		u, v := m.warpVertex(idx, warpScaleInv, warpTime, f0, f1, f2, f3)

		vert := &m.vertices[idx]
		vert.SrcX = u * texW
		vert.SrcY = v * texH
		vert.ColorR = decay
		vert.ColorG = decay
		vert.ColorB = decay
		vert.ColorA = 1
	}
}

// warpVertex computes the final (u, v) sampling coordinate for one vertex
// from its static and dynamic attributes. The transform chain, in order:
// radial zoom, stretch about center, sinusoidal warp offset, rotation about
// center, translation, aspect correction.
func (m *WarpMesh) warpVertex(idx int, warpScaleInv, warpTime, f0, f1, f2, f3 float32) (u, v float32) {
	pos := m.gridPos[idx]
	rad := m.radiusAngle[idx].Radius
	zrw := m.zoomRotWarp[idx]
	center := m.center[idx]
	dist := m.distance[idx]
	stretch := m.stretch[idx]

	// Radial zoom. The exponent biases the zoom toward the edge (rad near 1)
	// or the center (rad near 0); zoomExp of 1 is a pure linear zoom.
	zoom := math32.Pow(zrw.Zoom, math32.Pow(zrw.ZoomExp, rad*2-1))
	zoomInv := 1 / zoom

	// Aspect-corrected texture space, y flipped to texture orientation.
	u = pos.X*m.aspectX*0.5*zoomInv + 0.5
	v = 0.5 - pos.Y*m.aspectY*0.5*zoomInv

	// Stretch about the effect center.
	u = (u-center.X)/stretch.X + center.X
	v = (v-center.Y)/stretch.Y + center.Y

	// Four-term sinusoidal warp offset; the characteristic non-linear,
	// time-varying distortion.
	warp := zrw.Warp * warpOffsetScale
	u += warp * math32.Sin(warpTime*0.333+warpScaleInv*(pos.X*f0-pos.Y*f3))
	v += warp * math32.Cos(warpTime*0.375-warpScaleInv*(pos.X*f2+pos.Y*f1))
	u += warp * math32.Cos(warpTime*0.753-warpScaleInv*(pos.X*f1-pos.Y*f2))
	v += warp * math32.Sin(warpTime*0.825+warpScaleInv*(pos.X*f0+pos.Y*f3))

	// Rotation about the effect center.
	u2 := u - center.X
	v2 := v - center.Y
	cosRot := math32.Cos(zrw.Rot)
	sinRot := math32.Sin(zrw.Rot)
	u = u2*cosRot - v2*sinRot + center.X
	v = u2*sinRot + v2*cosRot + center.Y

	// Translation.
	u -= dist.X
	v -= dist.Y

	// Undo the aspect correction so zoom 1 with neutral scalars samples the
	// identity.
	u = (u-0.5)/m.aspectX + 0.5
	v = (v-0.5)/m.aspectY + 0.5
	return u, v
}
