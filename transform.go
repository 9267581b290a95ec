package bramble

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the object's
// Pos, Angle, and Scale. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Scale -> Rotate -> Translate(Pos)
func computeLocalTransform(o *GameObject) [6]float64 {
	sin, cos := math.Sincos(o.Angle * math.Pi / 180)
	sx, sy := o.Scale.X, o.Scale.Y
	return [6]float64{
		cos * sx, sin * sx,
		-sin * sy, cos * sy,
		o.Pos.X, o.Pos.Y,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// affineAngle extracts the rotation of m in degrees.
func affineAngle(m [6]float64) float64 {
	return math.Atan2(m[1], m[0]) * 180 / math.Pi
}

// affineScale extracts the axis scale factors of m.
func affineScale(m [6]float64) (float64, float64) {
	return math.Hypot(m[0], m[1]), math.Hypot(m[2], m[3])
}

// worldTransform composes the local transforms from the root down to o.
// It is computed on demand so callers always see the current hierarchy.
func (o *GameObject) worldTransform() [6]float64 {
	m := computeLocalTransform(o)
	for p := o.parent; p != nil; p = p.parent {
		m = multiplyAffine(computeLocalTransform(p), m)
	}
	return m
}

// --- Public accessors ---

// Transform returns the object's world affine matrix [a, b, c, d, tx, ty].
func (o *GameObject) Transform() [6]float64 {
	return o.worldTransform()
}

// LocalTransform returns the object's affine matrix relative to its parent.
func (o *GameObject) LocalTransform() [6]float64 {
	return computeLocalTransform(o)
}

// WorldPos returns the object's origin in world space.
func (o *GameObject) WorldPos() Vec2 {
	m := o.worldTransform()
	return Vec2{m[4], m[5]}
}

// SetPos sets the object's local position.
func (o *GameObject) SetPos(x, y float64) {
	o.Pos = Vec2{x, y}
}

// Move offsets the object's local position.
func (o *GameObject) Move(dx, dy float64) {
	o.Pos.X += dx
	o.Pos.Y += dy
}

// SetAngle sets the object's local rotation in degrees.
func (o *GameObject) SetAngle(deg float64) {
	o.Angle = deg
}

// SetScale sets the object's local scale.
func (o *GameObject) SetScale(sx, sy float64) {
	o.Scale = Vec2{sx, sy}
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this object's local coordinate space.
func (o *GameObject) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(o.worldTransform()), wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (o *GameObject) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(o.worldTransform(), lx, ly)
}
