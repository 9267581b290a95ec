package bramble

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is a component that turns its host into a view: each update it
// rewrites the host's local transform so that the point (X, Y) of the
// host's coordinate space lands on the center of Viewport. Place the
// scrolling world under the host and screen-space objects beside it.
type Camera struct {
	// X and Y are the point the camera centers on, in host space.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Angle is the camera rotation in degrees (clockwise).
	Angle float64
	// Viewport is the rectangle this camera maps onto, in the host's parent space.
	Viewport Rect

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	follow       *GameObject
	followOffset Vec2
	followLerp   float64

	scroll *scrollAnim
}

// NewCamera creates a Camera with zoom 1 centered on the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: viewport}
}

func (c *Camera) ID() string { return "camera" }

// Add implements Adder.
func (c *Camera) Add(host *GameObject) {
	c.apply(host)
}

// Update implements Updater.
func (c *Camera) Update(host *GameObject, dt float64) {
	if c.follow != nil {
		if !c.follow.Exists() {
			c.follow = nil
		} else {
			wp := c.follow.WorldPos()
			tx, ty := host.WorldToLocal(wp.X, wp.Y)
			tx += c.followOffset.X
			ty += c.followOffset.Y
			c.X += (tx - c.X) * c.followLerp
			c.Y += (ty - c.Y) * c.followLerp
		}
	}

	if s := c.scroll; s != nil {
		if !s.doneX {
			val, done := s.tweenX.Update(float32(dt))
			c.X = float64(val)
			s.doneX = done
		}
		if !s.doneY {
			val, done := s.tweenY.Update(float32(dt))
			c.Y = float64(val)
			s.doneY = done
		}
		if s.doneX && s.doneY {
			c.scroll = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
	c.apply(host)
}

// Follow makes the camera track target with the given offset and lerp factor.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
// Following stops when the target is destroyed.
func (c *Camera) Follow(target *GameObject, offsetX, offsetY, lerp float64) {
	c.follow = target
	c.followOffset = Vec2{offsetX, offsetY}
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.follow = nil
}

// ScrollTo animates the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scroll != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// If bounds are smaller than visible area, center the camera.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// viewMatrix maps host space to the host's parent space:
//
//	Translate(viewport center) * Rotate(-Angle) * Scale(Zoom) * Translate(-X, -Y)
func (c *Camera) viewMatrix() [6]float64 {
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	sin, cos := math.Sincos(-c.Angle * math.Pi / 180)
	z := c.Zoom
	rs := [6]float64{z * cos, z * sin, -z * sin, z * cos, 0, 0}
	m := multiplyAffine(rs, [6]float64{1, 0, 0, 1, -c.X, -c.Y})
	m[4] += cx
	m[5] += cy
	return m
}

// apply writes the view into the host's local transform.
func (c *Camera) apply(host *GameObject) {
	m := c.viewMatrix()
	host.Pos = Vec2{m[4], m[5]}
	host.Angle = -c.Angle
	host.Scale = Vec2{c.Zoom, c.Zoom}
}

// WorldToScreen converts a host-space point to viewport coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(c.viewMatrix(), wx, wy)
}

// ScreenToWorld converts viewport coordinates to a host-space point.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return transformPoint(invertAffine(c.viewMatrix()), sx, sy)
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's
// visible area in host space.
func (c *Camera) VisibleBounds() Rect {
	inv := invertAffine(c.viewMatrix())

	vx := c.Viewport.X
	vy := c.Viewport.Y
	vr := vx + c.Viewport.Width
	vb := vy + c.Viewport.Height

	x0, y0 := transformPoint(inv, vx, vy)
	x1, y1 := transformPoint(inv, vr, vy)
	x2, y2 := transformPoint(inv, vr, vb)
	x3, y3 := transformPoint(inv, vx, vb)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
