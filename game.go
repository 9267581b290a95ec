package bramble

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// EbitenClock reads frame timing from ebiten's tick rate.
type EbitenClock struct {
	// Fixed is the fixed update step; zero selects Config.FixedDT.
	Fixed float64
}

// DT returns the duration of one ebiten tick.
func (c EbitenClock) DT() float64 {
	return 1 / float64(ebiten.TPS())
}

// FixedDT returns c.Fixed.
func (c EbitenClock) FixedDT() float64 {
	return c.Fixed
}

// RunConfig configures Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ShowFPS    bool
	ClearColor Color
	Clock      Clock // nil selects EbitenClock
	// ScreenshotDir receives PNGs queued with Game.Screenshot. Defaults to
	// "screenshots".
	ScreenshotDir string
}

// Game adapts a Tree to ebiten.Game. Each tick steps the tree; each frame
// draws it with an EbitenRenderer. Closing the tree ends the game.
type Game struct {
	tree        *Tree
	cfg         RunConfig
	clock       Clock
	renderer    *EbitenRenderer
	screenshots []string
}

// NewGame wraps tree for ebiten.RunGame.
func NewGame(tree *Tree, cfg RunConfig) *Game {
	clock := cfg.Clock
	if clock == nil {
		clock = EbitenClock{}
	}
	return &Game{tree: tree, cfg: cfg, clock: clock, renderer: NewEbitenRenderer()}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.tree.closed {
		return ebiten.Termination
	}
	g.tree.Step(g.clock)
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.toRGBA())
	}
	g.renderer.Begin(screen)
	g.tree.Draw(g.renderer)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Width > 0 && g.cfg.Height > 0 {
		return g.cfg.Width, g.cfg.Height
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and drives tree until the window closes or the tree
// is closed.
func Run(tree *Tree, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	return ebiten.RunGame(NewGame(tree, cfg))
}

// FPSCounter is a component that draws the current FPS and TPS. The text is
// refreshed every half second.
type FPSCounter struct {
	img     *ebiten.Image
	elapsed float64
}

// NewFPSCounter creates the counter with its own 100x32 image.
func NewFPSCounter() *FPSCounter {
	return &FPSCounter{img: ebiten.NewImage(100, 32), elapsed: 0.5}
}

func (f *FPSCounter) ID() string { return "fps" }

// Update implements Updater.
func (f *FPSCounter) Update(_ *GameObject, dt float64) {
	f.elapsed += dt
	if f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0

	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// Draw implements Drawer.
func (f *FPSCounter) Draw(_ *GameObject, dc *DrawContext) {
	dc.Push(f.img)
}

// Destroy implements Destroyer.
func (f *FPSCounter) Destroy(_ *GameObject) {
	f.img.Deallocate()
}
