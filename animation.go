package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween eases float64 fields of an object toward target values over a
// shared duration. It is a Task: schedule it with Timer.Run or drive it with
// Step. A tween whose object has been destroyed finishes without writing.
type Tween struct {
	obj   *GameObject
	dur   float32
	fn    ease.TweenFunc
	chans []tweenChannel
	done  bool
}

type tweenChannel struct {
	field *float64
	to    float64
	curve *gween.Tween
}

// NewTween returns a tween over dur seconds bound to obj's lifetime. Fields
// are added with Field.
func NewTween(obj *GameObject, dur float64, fn ease.TweenFunc) *Tween {
	return &Tween{obj: obj, dur: float32(dur), fn: fn}
}

// Field eases *field from its current value to to.
func (tw *Tween) Field(field *float64, to float64) *Tween {
	tw.chans = append(tw.chans, tweenChannel{
		field: field,
		to:    to,
		curve: gween.New(float32(*field), float32(to), tw.dur, tw.fn),
	})
	return tw
}

// Step implements Task. The final step writes the exact target values.
func (tw *Tween) Step(dt float64) bool {
	if tw.done {
		return true
	}
	if tw.obj != nil && !tw.obj.Exists() {
		tw.done = true
		return true
	}
	finished := true
	for i := range tw.chans {
		ch := &tw.chans[i]
		v, end := ch.curve.Update(float32(dt))
		if end {
			*ch.field = ch.to
			continue
		}
		*ch.field = float64(v)
		finished = false
	}
	tw.done = finished
	return finished
}

// Done reports whether every field reached its target or the object died.
func (tw *Tween) Done() bool { return tw.done }

// TweenPosition eases obj.Pos to (x, y).
func TweenPosition(obj *GameObject, x, y, dur float64, fn ease.TweenFunc) *Tween {
	return NewTween(obj, dur, fn).Field(&obj.Pos.X, x).Field(&obj.Pos.Y, y)
}

// TweenScale eases obj.Scale to (sx, sy).
func TweenScale(obj *GameObject, sx, sy, dur float64, fn ease.TweenFunc) *Tween {
	return NewTween(obj, dur, fn).Field(&obj.Scale.X, sx).Field(&obj.Scale.Y, sy)
}

// TweenAngle eases obj.Angle to deg.
func TweenAngle(obj *GameObject, deg, dur float64, fn ease.TweenFunc) *Tween {
	return NewTween(obj, dur, fn).Field(&obj.Angle, deg)
}

// TweenColor eases every channel of c, usually a field of one of obj's
// components, to to.
func TweenColor(obj *GameObject, c *Color, to Color, dur float64, fn ease.TweenFunc) *Tween {
	return NewTween(obj, dur, fn).
		Field(&c.R, to.R).
		Field(&c.G, to.G).
		Field(&c.B, to.B).
		Field(&c.A, to.A)
}

// TweenValue eases a single field owned by obj.
func TweenValue(obj *GameObject, field *float64, to, dur float64, fn ease.TweenFunc) *Tween {
	return NewTween(obj, dur, fn).Field(field, to)
}
