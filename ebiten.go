package bramble

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is a component that draws an image tinted by Color, with its
// top-left corner at Offset in local space.
type Sprite struct {
	Image  *ebiten.Image
	Color  Color
	Offset Vec2
}

// NewSprite returns a sprite with a white tint.
func NewSprite(img *ebiten.Image) *Sprite {
	return &Sprite{Image: img, Color: ColorWhite}
}

func (s *Sprite) ID() string { return "sprite" }

// Draw implements Drawer.
func (s *Sprite) Draw(_ *GameObject, dc *DrawContext) {
	if s.Image != nil {
		dc.Push(s)
	}
}

// RectShape is a component that draws a solid rectangle with its top-left
// corner at the object's origin.
type RectShape struct {
	Width, Height float64
	Color         Color
}

func (s *RectShape) ID() string { return "rect" }

// Draw implements Drawer.
func (s *RectShape) Draw(_ *GameObject, dc *DrawContext) {
	dc.Push(s)
}

// maskBlendIntersect keeps destination pixels where the source is opaque.
var maskBlendIntersect = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorZero,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// maskFrame is one open BeginMask group.
type maskFrame struct {
	mode    MaskMode
	stencil *ebiten.Image
	content *ebiten.Image
}

// EbitenRenderer draws commands onto ebiten images. Supported payloads are
// *Sprite, *RectShape, *ebiten.Image, *ImageTarget, and *Picture; other
// payloads are counted in Skipped and ignored.
//
// Masks render the stencil and the masked content into pooled offscreen
// images and composite them on EndMask. Image targets push their image as
// the current output; other targets leave the output unchanged.
type EbitenRenderer struct {
	outputs []*ebiten.Image
	masks   []maskFrame
	pool    renderTexturePool
	op      ebiten.DrawImageOptions

	// Skipped counts payloads the renderer did not understand since Begin.
	Skipped int
}

// NewEbitenRenderer returns a renderer with an empty offscreen pool.
func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{}
}

// Begin starts a frame that draws onto screen.
func (r *EbitenRenderer) Begin(screen *ebiten.Image) {
	clear(r.outputs)
	r.outputs = append(r.outputs[:0], screen)
	r.masks = r.masks[:0]
	r.Skipped = 0
}

func (r *EbitenRenderer) current() *ebiten.Image {
	return r.outputs[len(r.outputs)-1]
}

// Submit implements Renderer.
func (r *EbitenRenderer) Submit(cmd DrawCommand) {
	switch p := cmd.Payload.(type) {
	case *Sprite:
		r.drawImage(p.Image, cmd.Transform, p.Color, 1, 1, p.Offset)
	case *RectShape:
		r.drawImage(WhitePixel, cmd.Transform, p.Color, p.Width, p.Height, Vec2{})
	case *ebiten.Image:
		r.drawImage(p, cmd.Transform, ColorWhite, 1, 1, Vec2{})
	case *ImageTarget:
		r.drawImage(p.image, cmd.Transform, ColorWhite, 1, 1, Vec2{})
	case *Picture:
		p.Replay(r, cmd.Transform)
	default:
		r.Skipped++
	}
}

// drawImage draws img scaled by (sx, sy) and moved to off in local space,
// then transformed.
func (r *EbitenRenderer) drawImage(img *ebiten.Image, m [6]float64, c Color, sx, sy float64, off Vec2) {
	if img == nil {
		return
	}
	r.op = ebiten.DrawImageOptions{}
	r.op.GeoM.Scale(sx, sy)
	r.op.GeoM.Translate(off.X, off.Y)
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	r.op.GeoM.Concat(g)
	r.op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	r.current().DrawImage(img, &r.op)
}

// BeginMask implements Renderer.
func (r *EbitenRenderer) BeginMask(mode MaskMode) {
	b := r.current().Bounds()
	f := maskFrame{
		mode:    mode,
		stencil: r.pool.Acquire(b.Dx(), b.Dy()),
		content: r.pool.Acquire(b.Dx(), b.Dy()),
	}
	r.masks = append(r.masks, f)
	r.outputs = append(r.outputs, f.stencil)
}

// ApplyMask implements Renderer.
func (r *EbitenRenderer) ApplyMask() {
	f := r.masks[len(r.masks)-1]
	r.outputs[len(r.outputs)-1] = f.content
}

// EndMask implements Renderer.
func (r *EbitenRenderer) EndMask() {
	f := r.masks[len(r.masks)-1]
	r.masks = r.masks[:len(r.masks)-1]
	r.outputs[len(r.outputs)-1] = nil
	r.outputs = r.outputs[:len(r.outputs)-1]

	op := &ebiten.DrawImageOptions{}
	switch f.mode {
	case MaskIntersect:
		op.Blend = maskBlendIntersect
	case MaskSubtract:
		op.Blend = ebiten.BlendDestinationOut
	}
	f.content.DrawImage(f.stencil, op)
	r.current().DrawImage(f.content, nil)

	r.pool.Release(f.stencil)
	r.pool.Release(f.content)
}

// PushTarget implements Renderer.
func (r *EbitenRenderer) PushTarget(target Target) {
	if it, ok := target.(*ImageTarget); ok && it.image != nil {
		r.outputs = append(r.outputs, it.image)
		return
	}
	r.outputs = append(r.outputs, r.current())
}

// PopTarget implements Renderer.
func (r *EbitenRenderer) PopTarget() {
	if len(r.outputs) <= 1 {
		panic("bramble: PopTarget without matching PushTarget")
	}
	r.outputs[len(r.outputs)-1] = nil
	r.outputs = r.outputs[:len(r.outputs)-1]
}
