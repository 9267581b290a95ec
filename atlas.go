package bramble

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      int // atlas page index
	X, Y      int // top-left corner of the sub-image rect within the page
	Width     int // may differ from OriginalW if trimmed
	Height    int // may differ from OriginalH if trimmed
	OriginalW int // untrimmed sprite width as authored
	OriginalH int // untrimmed sprite height as authored
	OffsetX   int // horizontal trim offset
	OffsetY   int // vertical trim offset
	Rotated   bool
}

// Atlas holds one or more page images and a map of named regions, loaded
// from TexturePacker JSON.
type Atlas struct {
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the named region.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int {
	return len(a.regions)
}

// Image returns the named region as a sub-image of its page. Unknown names
// and regions on missing pages return a 1x1 magenta placeholder. Rotated
// regions are returned as stored in the page.
func (a *Atlas) Image(name string) *ebiten.Image {
	r, ok := a.regions[name]
	if !ok || r.Page < 0 || r.Page >= len(a.Pages) || a.Pages[r.Page] == nil {
		return ensureMagentaImage()
	}
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	return a.Pages[r.Page].SubImage(rect).(*ebiten.Image)
}

// Sprite returns a Sprite component drawing the named region, offset by
// its trim so the sprite keeps its untrimmed origin.
func (a *Atlas) Sprite(name string) *Sprite {
	s := NewSprite(a.Image(name))
	if r, ok := a.regions[name]; ok {
		s.Offset = Vec2{float64(r.OffsetX), float64(r.OffsetY)}
	}
	return s
}

// magenta placeholder singleton (no sync.Once, bramble is single-threaded)
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// LoadAtlas parses TexturePacker JSON data and associates the given page images.
// Supports both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("bramble: parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]TextureRegion),
	}

	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("bramble: parse atlas textures: %w", err)
		}
		for i, tex := range textures {
			for name, f := range tex.Frames {
				atlas.regions[name] = frameToRegion(f, i)
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("bramble: parse atlas frames: %w", err)
		}
		for name, f := range frames {
			atlas.regions[name] = frameToRegion(f, 0)
		}
	default:
		return nil, errors.New("bramble: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func frameToRegion(f jsonFrame, page int) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         f.Frame.X,
		Y:         f.Frame.Y,
		Width:     f.Frame.W,
		Height:    f.Frame.H,
		OriginalW: f.SourceSize.W,
		OriginalH: f.SourceSize.H,
		OffsetX:   f.SpriteSourceSize.X,
		OffsetY:   f.SpriteSourceSize.Y,
		Rotated:   f.Rotated,
	}
}
