package bramble

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Task is a unit of deferred work advanced once per update with the frame's
// delta. Step reports whether the task has finished.
type Task interface {
	Step(dt float64) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(dt float64) bool

// Step calls f.
func (f TaskFunc) Step(dt float64) bool { return f(dt) }

type timerTask struct {
	task Task
	ctrl *EventController
}

// Timer is a component that runs waits, loops, and tweens on its host's
// update channel. Pausing the host pauses its tasks; destroying the host
// drops them.
type Timer struct {
	tasks []*timerTask
}

// NewTimer returns an empty Timer component.
func NewTimer() *Timer {
	return &Timer{}
}

// ID implements Identified.
func (tm *Timer) ID() string { return "timer" }

// Update implements Updater.
func (tm *Timer) Update(_ *GameObject, dt float64) {
	n := len(tm.tasks)
	for i := 0; i < n && i < len(tm.tasks); i++ {
		tt := tm.tasks[i]
		if tt.ctrl.cancelled || tt.ctrl.paused {
			continue
		}
		if tt.task.Step(dt) {
			tt.ctrl.Cancel()
		}
	}
	live := tm.tasks[:0]
	for _, tt := range tm.tasks {
		if !tt.ctrl.cancelled {
			live = append(live, tt)
		}
	}
	clear(tm.tasks[len(live):])
	tm.tasks = live
}

// Destroy implements Destroyer.
func (tm *Timer) Destroy(_ *GameObject) {
	for _, tt := range tm.tasks {
		tt.ctrl.Cancel()
	}
	tm.tasks = nil
}

// Inspect implements Inspector.
func (tm *Timer) Inspect() string {
	return fmt.Sprintf("%d tasks", tm.NumTasks())
}

// Run schedules task. Tasks added while the timer is updating first run on
// the next update.
func (tm *Timer) Run(task Task) *EventController {
	tt := &timerTask{task: task, ctrl: &EventController{}}
	tm.tasks = append(tm.tasks, tt)
	return tt.ctrl
}

// NumTasks returns the number of pending tasks.
func (tm *Timer) NumTasks() int {
	n := 0
	for _, tt := range tm.tasks {
		if !tt.ctrl.cancelled {
			n++
		}
	}
	return n
}

// Wait calls fn once after sec seconds.
func (tm *Timer) Wait(sec float64, fn func()) *EventController {
	elapsed := 0.0
	return tm.Run(TaskFunc(func(dt float64) bool {
		elapsed += dt
		if elapsed < sec {
			return false
		}
		fn()
		return true
	}))
}

// Loop calls fn every sec seconds until cancelled. A frame longer than sec
// fires fn once per elapsed period.
func (tm *Timer) Loop(sec float64, fn func()) *EventController {
	if sec <= 0 {
		panic("bramble: Timer.Loop period must be positive")
	}
	elapsed := 0.0
	return tm.Run(TaskFunc(func(dt float64) bool {
		elapsed += dt
		for elapsed >= sec {
			elapsed -= sec
			fn()
		}
		return false
	}))
}

// Tween calls set with values eased from from to to over dur seconds. The
// last call receives exactly to.
func (tm *Timer) Tween(from, to, dur float64, fn ease.TweenFunc, set func(float64)) *EventController {
	tw := gween.New(float32(from), float32(to), float32(dur), fn)
	return tm.Run(TaskFunc(func(dt float64) bool {
		v, done := tw.Update(float32(dt))
		if done {
			set(to)
			return true
		}
		set(float64(v))
		return false
	}))
}

// TimerOf returns obj's Timer, attaching a new one if it has none.
func TimerOf(obj *GameObject) *Timer {
	if c, ok := CompByID(obj, "timer"); ok {
		if tm, ok := c.(*Timer); ok {
			return tm
		}
	}
	tm := NewTimer()
	obj.MustUse(tm)
	return tm
}
