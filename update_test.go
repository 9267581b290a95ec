package bramble

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// trace records update calls by object name.
func trace(log *[]string, objs ...*GameObject) {
	for _, o := range objs {
		name := o.Name
		o.OnUpdate(func(float64) { *log = append(*log, name) })
	}
}

func TestUpdateParentBeforeChildren(t *testing.T) {
	tree := newTestTree()
	a := tree.Root().MustAdd(WithName("a"))
	a1 := a.MustAdd(WithName("a1"))
	a2 := a.MustAdd(WithName("a2"))
	a1x := a1.MustAdd(WithName("a1x"))
	b := tree.Root().MustAdd(WithName("b"))

	var got []string
	trace(&got, b, a2, a1x, a1, a)
	tree.Update(0.016)

	want := []string{"a", "a1", "a1x", "a2", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestUpdatePassesDelta(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	var got float64
	o.OnUpdate(func(dt float64) { got = dt })
	tree.Update(0.25)
	if got != 0.25 {
		t.Errorf("dt = %v, want 0.25", got)
	}
}

func TestPausedParentChildrenStillRun(t *testing.T) {
	tree := newTestTree()
	p := tree.Root().MustAdd(WithName("p"))
	c := p.MustAdd(WithName("c"))

	var got []string
	trace(&got, p, c)
	p.SetPaused(true)
	tree.Update(0.016)

	if !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("got %v, want [c]", got)
	}
}

func TestSetPausedTree(t *testing.T) {
	tree := newTestTree()
	p := tree.Root().MustAdd(WithName("p"))
	c := p.MustAdd(WithName("c"))
	var got []string
	trace(&got, p, c)

	p.SetPausedTree(true)
	tree.Update(0.016)
	if len(got) != 0 {
		t.Errorf("paused tree ran %v", got)
	}

	p.SetPausedTree(false)
	tree.Update(0.016)
	if !reflect.DeepEqual(got, []string{"p", "c"}) {
		t.Errorf("got %v, want [p c]", got)
	}
}

func TestPausedSkipsFixedUpdate(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	n := 0
	o.OnFixedUpdate(func(float64) { n++ })
	o.SetPaused(true)
	tree.FixedUpdate(0.02)
	if n != 0 {
		t.Errorf("fixed update ran %d times on a paused object", n)
	}
}

func TestStepRunsFixedSteps(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	fixed, variable := 0, 0
	o.OnFixedUpdate(func(dt float64) {
		if dt != 0.125 {
			t.Errorf("fixed dt = %v, want 0.125", dt)
		}
		fixed++
	})
	o.OnUpdate(func(float64) { variable++ })

	tree.Step(FixedClock{Step: 0.25, Fixed: 0.125})
	if fixed != 2 || variable != 1 {
		t.Errorf("fixed = %d, variable = %d, want 2 and 1", fixed, variable)
	}

	// 0.0625 carries over into the next frame.
	tree.Step(FixedClock{Step: 0.0625, Fixed: 0.125})
	tree.Step(FixedClock{Step: 0.0625, Fixed: 0.125})
	if fixed != 3 {
		t.Errorf("fixed = %d after accumulation, want 3", fixed)
	}
}

func TestStepUsesConfigFixedDT(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FixedDT = 0.25
	tree := NewTree(cfg)
	n := 0
	tree.Root().OnFixedUpdate(func(float64) { n++ })
	tree.Step(FixedClock{Step: 0.5})
	if n != 2 {
		t.Errorf("fixed steps = %d, want 2", n)
	}
}

func TestZeroConfigRunsFixedUpdates(t *testing.T) {
	tree := NewTree(Config{})
	n := 0
	tree.Root().OnFixedUpdate(func(float64) { n++ })
	for range 10 {
		tree.Step(FixedClock{Step: 0.125, Fixed: 0.125})
	}
	if n != 10 {
		t.Errorf("fixed steps = %d, want 10", n)
	}
	def := DefaultConfig()
	if cfg := tree.Config(); cfg.FixedDT != def.FixedDT || cfg.MaxFixedSteps != def.MaxFixedSteps {
		t.Errorf("config = %+v, want default timing", cfg)
	}
}

func TestStepClampsBacklog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFixedSteps = 3
	tree := NewTree(cfg)
	n := 0
	tree.Root().OnFixedUpdate(func(float64) { n++ })

	tree.Step(FixedClock{Step: 1, Fixed: 0.125})
	if n != 3 {
		t.Fatalf("fixed steps = %d, want 3", n)
	}
	tree.Step(FixedClock{Step: 0, Fixed: 0.125})
	if n != 3 {
		t.Errorf("backlog was not dropped: %d fixed steps", n)
	}
}

func TestUpdateHookPanicIsolated(t *testing.T) {
	tree := newTestTree()
	bad := tree.Root().MustAdd(WithName("bad"))
	good := tree.Root().MustAdd(WithName("good"))
	child := bad.MustAdd(WithName("child"))

	bad.OnUpdate(func(float64) { panic(errors.New("kaboom")) })
	var got []string
	trace(&got, child, good)

	var reported []error
	tree.OnError(func(err error) { reported = append(reported, err) })
	tree.Update(0.016)

	if !reflect.DeepEqual(got, []string{"child", "good"}) {
		t.Errorf("ran %v, want [child good]", got)
	}
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	var he *HookError
	if !errors.As(reported[0], &he) {
		t.Fatalf("error %T is not a *HookError", reported[0])
	}
	if he.Hook != "update" || he.ObjectID != bad.ID() || he.Name != "bad" {
		t.Errorf("unexpected hook error %+v", he)
	}
	if !strings.Contains(he.Error(), "kaboom") {
		t.Errorf("error %q does not mention the panic", he.Error())
	}
}

func TestFixedUpdatePanicNamesHook(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd(WithName("physics"))
	o.OnFixedUpdate(func(float64) { panic("step") })
	var reported []error
	tree.OnError(func(err error) { reported = append(reported, err) })

	tree.FixedUpdate(0.02)
	if len(reported) != 1 {
		t.Fatalf("reported %d errors, want 1", len(reported))
	}
	var he *HookError
	if !errors.As(reported[0], &he) || he.Hook != "fixedUpdate" {
		t.Errorf("error = %v, want fixedUpdate hook error", reported[0])
	}
}

func TestUpdateInheritsLayer(t *testing.T) {
	tree := newTestTree()
	p := tree.Root().MustAdd(WithLayer(2))
	c := p.MustAdd()
	own := p.MustAdd(WithLayer(5))
	gc := own.MustAdd()
	tree.Update(0)

	if c.Layer() != 2 || own.Layer() != 5 || gc.Layer() != 5 {
		t.Errorf("layers = %d, %d, %d; want 2, 5, 5", c.Layer(), own.Layer(), gc.Layer())
	}

	p.ClearLayer()
	tree.Update(0)
	if c.Layer() != 0 {
		t.Errorf("cleared layer = %d, want default 0", c.Layer())
	}
}

func TestUpdateMutationDuringTraversal(t *testing.T) {
	tree := newTestTree()
	root := tree.Root()
	a := root.MustAdd(WithName("a"))
	b := root.MustAdd(WithName("b"))

	var got []string
	trace(&got, b)
	done := false
	a.OnUpdate(func(float64) {
		got = append(got, "a")
		if done {
			return
		}
		done = true
		b.Destroy()
		c := root.MustAdd(WithName("c"))
		trace(&got, c)
	})

	tree.Update(0.016)
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("first frame = %v, want [a]", got)
	}

	got = got[:0]
	tree.Update(0.016)
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("second frame = %v, want [a c]", got)
	}
}

func TestDestroyedObjectStopsUpdating(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	n := 0
	o.OnUpdate(func(float64) {
		n++
		o.Destroy()
	})
	tree.Update(0.016)
	tree.Update(0.016)
	if n != 1 {
		t.Errorf("update ran %d times, want 1", n)
	}
}
