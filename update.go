package bramble

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// Clock is the timing source the tree polls once per frame.
type Clock interface {
	// DT returns the variable time step of the current frame, in seconds.
	DT() float64
	// FixedDT returns the fixed step for the fixed update channel, in
	// seconds. Zero or less selects Config.FixedDT.
	FixedDT() float64
}

// FixedClock is a Clock with constant steps, for tests and headless loops.
type FixedClock struct {
	Step  float64
	Fixed float64
}

// DT returns c.Step.
func (c FixedClock) DT() float64 { return c.Step }

// FixedDT returns c.Fixed.
func (c FixedClock) FixedDT() float64 { return c.Fixed }

// Update runs the update pass: depth-first, parent before children. A paused
// object skips its own update channel; its children still run. Each visited
// object also refreshes its inherited draw layer.
func (t *Tree) Update(dt float64) {
	var t0 time.Time
	if t.cfg.Debug {
		t0 = time.Now()
	}
	t.walk(t.root, t.cfg.DefaultLayer, 0, "update", func(o *GameObject) {
		o.onUpdate.Trigger(dt)
	})
	if t.cfg.Debug {
		t.stats.updateTime = time.Since(t0)
	}
}

// FixedUpdate runs the fixed update pass with the same traversal rules as Update.
func (t *Tree) FixedUpdate(dt float64) {
	t.walk(t.root, t.cfg.DefaultLayer, 0, "fixedUpdate", func(o *GameObject) {
		o.onFixedUpdate.Trigger(dt)
	})
}

// Step advances one frame from clock: as many fixed steps as the
// accumulated time allows, capped at Config.MaxFixedSteps, then one
// variable-step Update. Time beyond the cap is dropped.
func (t *Tree) Step(clock Clock) {
	dt := clock.DT()
	fixed := clock.FixedDT()
	if fixed <= 0 {
		fixed = t.cfg.FixedDT
	}
	steps := 0
	if fixed > 0 {
		t.accumulator += dt
		for t.accumulator >= fixed && steps < t.cfg.MaxFixedSteps {
			t.FixedUpdate(fixed)
			t.accumulator -= fixed
			steps++
		}
		if t.accumulator >= fixed {
			t.log.Debug("dropping fixed update backlog",
				zap.Int("steps", steps),
				zap.Float64("backlog", t.accumulator))
			t.accumulator = math.Mod(t.accumulator, fixed)
		}
	}
	t.stats.fixedSteps = steps
	t.Update(dt)
}

// walk visits o and its subtree parent first, calling run for every
// unpaused object, guarded under hook. Children are iterated from a per-depth snapshot so hooks
// may restructure the tree; a child detached before its turn is skipped.
func (t *Tree) walk(o *GameObject, parentLayer, depth int, hook string, run func(*GameObject)) {
	if o.destroyed {
		return
	}
	if o.layerSet {
		o.drawLayer = o.layer
	} else {
		o.drawLayer = parentLayer
	}
	if !o.paused {
		t.guard(o, hook, func() { run(o) })
	}
	if len(o.children) == 0 || o.destroyed {
		return
	}

	for len(t.walkBufs) <= depth {
		t.walkBufs = append(t.walkBufs, nil)
	}
	buf := append(t.walkBufs[depth][:0], o.children...)
	t.walkBufs[depth] = buf
	for _, c := range buf {
		if c.parent != o {
			continue
		}
		t.walk(c, o.drawLayer, depth+1, hook, run)
	}
	clear(buf)
}
