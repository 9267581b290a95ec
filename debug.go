package bramble

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing and command metrics.
// Only populated when Config.Debug is true.
type debugStats struct {
	updateTime   time.Duration
	traverseTime time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	fixedSteps   int
	commandCount int
	maskCount    int
	targetCount  int
}

// Stats is a snapshot of the tree's bookkeeping, for debugging.
type Stats struct {
	Objects     int // live objects, root included
	LiveQueries int
	Listeners   int // lifecycle bus subscriptions
	Commands    int // draw commands submitted by the last Draw
}

// Stats walks the tree and reports its current size.
func (t *Tree) Stats() Stats {
	n := 0
	var walk func(o *GameObject)
	walk = func(o *GameObject) {
		n++
		for _, c := range o.children {
			walk(c)
		}
	}
	walk(t.root)
	return Stats{
		Objects:     n,
		LiveQueries: len(t.queries),
		Listeners:   t.bus.NumListeners(),
		Commands:    t.dc.submitted,
	}
}

// debugLog writes timing and command stats at debug level.
func (t *Tree) debugLog(stats debugStats) {
	if !t.cfg.Debug {
		return
	}
	total := stats.traverseTime + stats.sortTime + stats.submitTime
	t.log.Debug("draw",
		zap.Duration("traverse", stats.traverseTime),
		zap.Duration("sort", stats.sortTime),
		zap.Duration("submit", stats.submitTime),
		zap.Duration("total", total),
		zap.Int("commands", stats.commandCount),
		zap.Int("masks", stats.maskCount),
		zap.Int("targets", stats.targetCount),
	)
}

// debugMaxTreeDepth is the depth above which attaching warns.
const debugMaxTreeDepth = 32

func (t *Tree) debugCheckTreeDepth(o *GameObject) {
	depth := 0
	for p := o; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		t.log.Warn("tree depth exceeds threshold",
			append(objectFields(o), zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth))...)
	}
}

// debugMaxChildCount is the child count above which attaching warns.
const debugMaxChildCount = 1000

func (t *Tree) debugCheckChildCount(o *GameObject) {
	if len(o.children) > debugMaxChildCount {
		t.log.Warn("object has many children",
			append(objectFields(o), zap.Int("children", len(o.children)), zap.Int("threshold", debugMaxChildCount))...)
	}
}
