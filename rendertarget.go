package bramble

// Target is an output a subtree can be redirected into: an offscreen
// framebuffer provided by the renderer, or a *Picture.
type Target interface {
	// Clear empties the target before it is redrawn.
	Clear()
}

// RenderTarget redirects the draw output of an object's subtree.
type RenderTarget struct {
	Target Target
	// RefreshOnly skips redrawing while the target is fresh. A target
	// becomes fresh after it is drawn and stale again after MarkStale.
	RefreshOnly bool
	// ChildrenOnly draws only the descendants into Target; the object
	// itself still draws to the enclosing output.
	ChildrenOnly bool

	fresh bool
}

// MarkStale forces a RefreshOnly target to be redrawn on the next Draw.
func (rt *RenderTarget) MarkStale() {
	rt.fresh = false
}

// Fresh reports whether the target holds an up-to-date drawing.
func (rt *RenderTarget) Fresh() bool {
	return rt.fresh
}

// SetRenderTarget redirects the object's subtree into rt. Nil restores
// normal output.
func (o *GameObject) SetRenderTarget(rt *RenderTarget) {
	o.target = rt
}

// RenderTarget returns the object's render target, or nil.
func (o *GameObject) RenderTarget() *RenderTarget {
	return o.target
}

// --- Picture ---

type pictureOpKind uint8

const (
	picSubmit pictureOpKind = iota
	picBeginMask
	picApplyMask
	picEndMask
	picPushTarget
	picPopTarget
)

type pictureOp struct {
	kind   pictureOpKind
	cmd    DrawCommand
	mode   MaskMode
	target Target
}

// Picture records renderer calls so a subtree can be drawn once and
// replayed many times. It is both a Renderer and a Target.
type Picture struct {
	ops []pictureOp
}

// NewPicture returns an empty picture.
func NewPicture() *Picture {
	return &Picture{}
}

func (p *Picture) Submit(cmd DrawCommand) {
	p.ops = append(p.ops, pictureOp{kind: picSubmit, cmd: cmd})
}

func (p *Picture) BeginMask(mode MaskMode) {
	p.ops = append(p.ops, pictureOp{kind: picBeginMask, mode: mode})
}

func (p *Picture) ApplyMask() { p.ops = append(p.ops, pictureOp{kind: picApplyMask}) }

func (p *Picture) EndMask() { p.ops = append(p.ops, pictureOp{kind: picEndMask}) }

func (p *Picture) PushTarget(target Target) {
	p.ops = append(p.ops, pictureOp{kind: picPushTarget, target: target})
}

func (p *Picture) PopTarget() { p.ops = append(p.ops, pictureOp{kind: picPopTarget}) }

// Clear drops every recorded call.
func (p *Picture) Clear() {
	clear(p.ops)
	p.ops = p.ops[:0]
}

// Len returns the number of recorded draw commands.
func (p *Picture) Len() int {
	n := 0
	for i := range p.ops {
		if p.ops[i].kind == picSubmit {
			n++
		}
	}
	return n
}

// Commands returns the recorded draw commands in order.
func (p *Picture) Commands() []DrawCommand {
	out := make([]DrawCommand, 0, len(p.ops))
	for i := range p.ops {
		if p.ops[i].kind == picSubmit {
			out = append(out, p.ops[i].cmd)
		}
	}
	return out
}

// Replay sends the recorded calls to r with transform applied on top of
// each command's transform.
func (p *Picture) Replay(r Renderer, transform [6]float64) {
	for i := range p.ops {
		op := &p.ops[i]
		switch op.kind {
		case picSubmit:
			cmd := op.cmd
			cmd.Transform = multiplyAffine(transform, cmd.Transform)
			r.Submit(cmd)
		case picBeginMask:
			r.BeginMask(op.mode)
		case picApplyMask:
			r.ApplyMask()
		case picEndMask:
			r.EndMask()
		case picPushTarget:
			r.PushTarget(op.target)
		case picPopTarget:
			r.PopTarget()
		}
	}
}
