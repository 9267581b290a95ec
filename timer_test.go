package bramble

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTimerOfAttachesOnce(t *testing.T) {
	o := MustMake()
	tm := TimerOf(o)
	if TimerOf(o) != tm {
		t.Error("TimerOf attached a second timer")
	}
	if !o.Has("timer") {
		t.Error("timer component missing")
	}
}

func TestTimerWait(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	fired := 0
	TimerOf(o).Wait(1, func() { fired++ })

	tree.Update(0.5)
	if fired != 0 {
		t.Fatal("Wait fired early")
	}
	tree.Update(0.5)
	tree.Update(0.5)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestTimerLoop(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	fired := 0
	ctrl := TimerOf(o).Loop(0.25, func() { fired++ })

	tree.Update(0.5)
	tree.Update(0.25)
	if fired != 3 {
		t.Errorf("fired = %d, want 3", fired)
	}

	ctrl.Cancel()
	tree.Update(1)
	if fired != 3 {
		t.Errorf("cancelled loop fired: %d", fired)
	}
}

func TestTimerLoopRejectsZeroPeriod(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewTimer().Loop(0, func() {})
}

func TestTimerTween(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	var got []float64
	TimerOf(o).Tween(0, 10, 1, ease.Linear, func(v float64) { got = append(got, v) })

	tree.Update(0.5)
	tree.Update(0.5)
	if len(got) != 2 || got[1] != 10 {
		t.Errorf("values = %v, want two values ending at 10", got)
	}
}

func TestTimerPausedWithHost(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	fired := 0
	TimerOf(o).Wait(0.1, func() { fired++ })

	o.SetPaused(true)
	tree.Update(1)
	if fired != 0 {
		t.Fatal("paused host ran its timer")
	}
	o.SetPaused(false)
	tree.Update(0.1)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestTimerPausedTask(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	fired := 0
	ctrl := TimerOf(o).Wait(0.1, func() { fired++ })
	ctrl.SetPaused(true)
	tree.Update(1)
	if fired != 0 {
		t.Error("paused task ran")
	}
}

func TestTimerDroppedOnDestroy(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	tm := TimerOf(o)
	ctrl := tm.Wait(1, func() {})
	o.Destroy()
	if !ctrl.Cancelled() || tm.NumTasks() != 0 {
		t.Error("destroying the host should cancel its tasks")
	}
}

func TestTimerTaskAddedDuringUpdate(t *testing.T) {
	tree := newTestTree()
	o := tree.Root().MustAdd()
	tm := TimerOf(o)
	inner := 0
	tm.Run(TaskFunc(func(float64) bool {
		tm.Run(TaskFunc(func(float64) bool {
			inner++
			return true
		}))
		return true
	}))

	tree.Update(0.1)
	if inner != 0 {
		t.Fatal("task added during update ran in the same update")
	}
	tree.Update(0.1)
	if inner != 1 {
		t.Errorf("inner = %d, want 1", inner)
	}
}

func TestTimerInspect(t *testing.T) {
	tm := NewTimer()
	tm.Wait(1, func() {})
	if got := tm.Inspect(); got != "1 tasks" {
		t.Errorf("Inspect = %q", got)
	}
}
