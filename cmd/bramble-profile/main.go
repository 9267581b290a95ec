// Bramble-profile runs a headless frame loop over a synthetic tree under
// the pprof profiler.
//
// Profiling:
// go build ./cmd/bramble-profile
// ./bramble-profile -mode mem -objects 2000 -frames 600
// go tool pprof -http=":8000" -nodefraction=0.001 ./bramble-profile mem.pprof
package main

import (
	"flag"
	"log"
	"math/rand/v2"

	"github.com/phanxgames/bramble"
	"github.com/pkg/profile"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

type velocity struct {
	DX, DY float64
}

func (v *velocity) ID() string { return "velocity" }

func (v *velocity) Update(obj *bramble.GameObject, dt float64) {
	obj.Move(v.DX*dt, v.DY*dt)
}

type bounds struct {
	W, H float64
}

func (b *bounds) ID() string { return "bounds" }

func (b *bounds) Require() []string { return []string{"velocity"} }

func (b *bounds) FixedUpdate(obj *bramble.GameObject, _ float64) {
	v := bramble.MustComp[*velocity](obj)
	if obj.Pos.X < 0 || obj.Pos.X > b.W {
		v.DX = -v.DX
	}
	if obj.Pos.Y < 0 || obj.Pos.Y > b.H {
		v.DY = -v.DY
	}
}

func main() {
	mode := flag.String("mode", "cpu", "profile mode: cpu or mem")
	objects := flag.Int("objects", 1000, "number of moving objects")
	frames := flag.Int("frames", 600, "number of frames to run")
	configPath := flag.String("config", "", "optional bramble config (.toml or .yaml)")
	flag.Parse()

	cfg := bramble.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = bramble.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	logger, err := bramble.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	var p interface{ Stop() }
	switch *mode {
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	stats := run(cfg, logger, *objects, *frames)
	p.Stop()

	logger.Info("profile run complete",
		zap.Int("frames", *frames),
		zap.Int("objects", stats.Objects),
		zap.Int("live_queries", stats.LiveQueries),
		zap.Int("commands", stats.Commands))
}

func run(cfg bramble.Config, logger *zap.Logger, numObjects, frames int) bramble.Stats {
	tree := bramble.NewTree(cfg, bramble.WithLogger(logger))
	defer tree.Close()

	world := tree.Root().MustAdd(bramble.WithName("world"))
	enemies := world.GetLive([]string{"enemy"}, bramble.GetOpts{})
	defer enemies.Cancel()

	clip := world.MustAdd(bramble.WithName("clip"), bramble.WithMask(bramble.MaskIntersect),
		&bramble.RectShape{Width: 320, Height: 240, Color: bramble.ColorWhite})

	for i := range numObjects {
		parent := world
		if i%4 == 0 {
			parent = clip
		}
		obj := parent.MustAdd(
			bramble.WithPos(rand.Float64()*640, rand.Float64()*480),
			bramble.WithZ(rand.IntN(8)),
			bramble.WithLayer(i%3),
			&velocity{DX: rand.Float64()*100 - 50, DY: rand.Float64()*100 - 50},
			&bounds{W: 640, H: 480},
			&bramble.RectShape{Width: 4, Height: 4, Color: bramble.ColorWhite},
			bramble.Tag("enemy"),
		)
		if i%10 == 0 {
			bramble.TimerOf(obj).Loop(0.25, func() { obj.SetZ(rand.IntN(8)) })
			bramble.TimerOf(obj).Run(bramble.TweenAngle(obj, 360, 2, ease.InOutQuad))
		}
	}

	clock := bramble.FixedClock{Step: 1.0 / 60}
	pic := bramble.NewPicture()
	for range frames {
		tree.Step(clock)
		pic.Clear()
		tree.Draw(pic)
	}
	return tree.Stats()
}
