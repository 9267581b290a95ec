package bramble

import (
	"fmt"
	"time"
)

// DrawCommand is a single draw instruction submitted during the draw pass.
type DrawCommand struct {
	Object    *GameObject
	Transform [6]float64 // world affine matrix [a, b, c, d, tx, ty]
	Layer     int
	Z         int
	Payload   any
}

// Renderer turns draw commands into pixels. The tree calls it in draw
// order; it never needs to sort.
type Renderer interface {
	// Submit draws one command to the current output.
	Submit(cmd DrawCommand)
	// BeginMask starts a masked group. Commands submitted until ApplyMask
	// form the stencil.
	BeginMask(mode MaskMode)
	// ApplyMask ends the stencil. Commands submitted until EndMask are the
	// masked content.
	ApplyMask()
	// EndMask composites the masked content into the enclosing output.
	EndMask()
	// PushTarget redirects submissions into target until the matching PopTarget.
	PushTarget(target Target)
	PopTarget()
}

// DrawContext is passed to draw hooks. It carries the state of the object
// being drawn and forwards payloads to the active renderer.
type DrawContext struct {
	obj       *GameObject
	transform [6]float64
	layer     int
	r         Renderer
	submitted int

	timed      bool
	submitTime time.Duration
}

// Object returns the object being drawn.
func (dc *DrawContext) Object() *GameObject { return dc.obj }

// Transform returns the accumulated world transform of the object being drawn.
func (dc *DrawContext) Transform() [6]float64 { return dc.transform }

// Layer returns the draw layer of the object being drawn.
func (dc *DrawContext) Layer() int { return dc.layer }

// Push submits payload with the object's transform, layer, and z.
func (dc *DrawContext) Push(payload any) {
	dc.PushTransformed(identityTransform, payload)
}

// PushTransformed submits payload with local applied on top of the
// object's transform.
func (dc *DrawContext) PushTransformed(local [6]float64, payload any) {
	dc.submitted++
	cmd := DrawCommand{
		Object:    dc.obj,
		Transform: multiplyAffine(dc.transform, local),
		Layer:     dc.layer,
		Z:         dc.obj.Z,
		Payload:   payload,
	}
	if !dc.timed {
		dc.r.Submit(cmd)
		return
	}
	t0 := time.Now()
	dc.r.Submit(cmd)
	dc.submitTime += time.Since(t0)
}

// drawEntry is one collected visible descendant.
type drawEntry struct {
	obj       *GameObject
	transform [6]float64
	layer     int
	z         int
}

// Draw runs the draw pass from the root into r.
func (t *Tree) Draw(r Renderer) {
	var t0 time.Time
	if t.cfg.Debug {
		t0 = time.Now()
		t.stats.sortTime = 0
		t.stats.maskCount = 0
		t.stats.targetCount = 0
	}
	t.dc.submitted = 0
	t.dc.timed = t.cfg.Debug
	t.dc.submitTime = 0

	root := t.root
	if !root.hidden {
		layer := t.cfg.DefaultLayer
		if root.layerSet {
			layer = root.layer
		}
		t.drawNode(r, root, computeLocalTransform(root), layer, 0)
	}

	if t.cfg.Debug {
		t.stats.commandCount = t.dc.submitted
		t.stats.submitTime = t.dc.submitTime
		t.stats.traverseTime = time.Since(t0) - t.stats.sortTime - t.stats.submitTime
		t.debugLog(t.stats)
	}
}

// isSpecial reports whether o draws its own subtree (mask or render target).
func isSpecial(o *GameObject) bool {
	return o.mask != MaskNone || o.target != nil
}

// drawNode draws o and every visible descendant. world and layer are o's
// accumulated transform and inherited layer.
func (t *Tree) drawNode(r Renderer, o *GameObject, world [6]float64, layer, depth int) {
	o.transform = world
	o.drawLayer = layer

	for len(t.drawBufs) <= depth {
		t.drawBufs = append(t.drawBufs, nil)
	}
	entries := t.collect(t.drawBufs[depth][:0], o, world, layer)
	t.sortEntries(entries)
	t.drawBufs[depth] = entries
	defer clear(entries)

	switch {
	case o.mask != MaskNone:
		if !validMaskMode(o.mask) {
			panic(fmt.Errorf("%w: %d on object %d (%q)", ErrUnknownMaskMode, o.mask, o.id, o.Name))
		}
		t.stats.maskCount++
		r.BeginMask(o.mask)
		t.drawSelf(r, o, world, layer)
		r.ApplyMask()
		t.drawEntries(r, entries, depth)
		r.EndMask()

	case o.target != nil:
		rt := o.target
		t.stats.targetCount++
		if rt.ChildrenOnly {
			t.drawSelf(r, o, world, layer)
		}
		if rt.RefreshOnly && rt.fresh {
			return
		}
		out := r
		if pic, ok := rt.Target.(*Picture); ok {
			pic.Clear()
			out = pic
		} else if rt.Target != nil {
			rt.Target.Clear()
			r.PushTarget(rt.Target)
			defer r.PopTarget()
		}
		if !rt.ChildrenOnly {
			t.drawSelf(out, o, world, layer)
		}
		t.drawEntries(out, entries, depth)
		rt.fresh = true

	default:
		t.drawSelf(r, o, world, layer)
		t.drawEntries(r, entries, depth)
	}
}

// collect appends o's visible descendants with their accumulated transform
// and layer, in tree order. Special descendants are collected but not
// descended into; they draw their own subtree.
func (t *Tree) collect(out []drawEntry, o *GameObject, world [6]float64, layer int) []drawEntry {
	for _, c := range o.children {
		if c.hidden || c.destroyed {
			continue
		}
		cw := multiplyAffine(world, computeLocalTransform(c))
		cl := layer
		if c.layerSet {
			cl = c.layer
		}
		c.transform = cw
		c.drawLayer = cl
		out = append(out, drawEntry{obj: c, transform: cw, layer: cl, z: c.Z})
		if !isSpecial(c) {
			out = t.collect(out, c, cw, cl)
		}
	}
	return out
}

func (t *Tree) drawEntries(r Renderer, entries []drawEntry, depth int) {
	for i := range entries {
		e := &entries[i]
		if e.obj.destroyed {
			continue
		}
		if isSpecial(e.obj) {
			t.drawNode(r, e.obj, e.transform, e.layer, depth+1)
			continue
		}
		t.drawSelf(r, e.obj, e.transform, e.layer)
	}
}

// drawSelf triggers o's draw channel with the shared context.
func (t *Tree) drawSelf(r Renderer, o *GameObject, world [6]float64, layer int) {
	if o.onDraw.Len() == 0 {
		return
	}
	dc := &t.dc
	prevObj, prevT, prevL, prevR := dc.obj, dc.transform, dc.layer, dc.r
	dc.obj, dc.transform, dc.layer, dc.r = o, world, layer, r
	t.guard(o, "draw", func() { o.onDraw.Trigger(dc) })
	dc.obj, dc.transform, dc.layer, dc.r = prevObj, prevT, prevL, prevR
}

// --- Sorting ---

// entryLessOrEqual returns true if a should draw before or with b.
func entryLessOrEqual(a, b *drawEntry) bool {
	if a.layer != b.layer {
		return a.layer < b.layer
	}
	return a.z <= b.z
}

// sortEntries stably sorts entries by (layer, z) using t.sortBuf as scratch
// space. Bottom-up merge sort: zero allocations after the sort buffer reaches
// its high-water mark. Equal keys keep tree order.
func (t *Tree) sortEntries(entries []drawEntry) {
	n := len(entries)
	if n <= 1 {
		return
	}
	var t0 time.Time
	if t.cfg.Debug {
		t0 = time.Now()
		defer func() { t.stats.sortTime += time.Since(t0) }()
	}
	if cap(t.sortBuf) < n {
		t.sortBuf = make([]drawEntry, n)
	}
	buf := t.sortBuf[:n]

	a, b := entries, buf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(entries, buf)
	}
	clear(buf)
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []drawEntry, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if entryLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
