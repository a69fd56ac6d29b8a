package minilight

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the display origin.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// MapCamera is a reference tile-map camera. DisplayX and DisplayY are the
// map coordinates, in tiles, of the screen's top-left corner. Hosts with
// their own camera only need to report ScrolledX/ScrolledY on their anchors.
type MapCamera struct {
	DisplayX, DisplayY float64

	// ScreenTilesX and ScreenTilesY are the visible map area in tiles.
	ScreenTilesX, ScreenTilesY float64

	// BoundsEnabled clamps the display origin to the map size.
	BoundsEnabled bool
	MapWidth      int
	MapHeight     int

	scrollTween *scrollAnim
}

// NewMapCamera creates a camera showing screenW x screenH pixels of a map
// with the given tile size.
func NewMapCamera(screenW, screenH int, m MapMetrics) *MapCamera {
	return &MapCamera{
		ScreenTilesX: float64(screenW) / m.TileWidth(),
		ScreenTilesY: float64(screenH) / m.TileHeight(),
	}
}

// SetBounds enables clamping to a map of w x h tiles.
func (c *MapCamera) SetBounds(w, h int) {
	c.BoundsEnabled = true
	c.MapWidth = w
	c.MapHeight = h
	c.clampToBounds()
}

// ScrolledX converts a map x coordinate in tiles to screen-relative tiles.
func (c *MapCamera) ScrolledX(x float64) float64 {
	return x - c.DisplayX
}

// ScrolledY converts a map y coordinate in tiles to screen-relative tiles.
func (c *MapCamera) ScrolledY(y float64) float64 {
	return y - c.DisplayY
}

// CenterOn snaps the display so the given tile position sits at the middle
// of the screen.
func (c *MapCamera) CenterOn(x, y float64) {
	c.scrollTween = nil
	c.DisplayX = x - (c.ScreenTilesX-1)/2
	c.DisplayY = y - (c.ScreenTilesY-1)/2
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// ScrollTo animates the display origin to (x, y) tiles over frames ticks.
func (c *MapCamera) ScrollTo(x, y float64, frames int, easeFn ease.TweenFunc) {
	if frames <= 0 {
		c.scrollTween = nil
		c.DisplayX, c.DisplayY = x, y
		return
	}
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.DisplayX), float32(x), float32(frames), easeFn),
		tweenY: gween.New(float32(c.DisplayY), float32(y), float32(frames), easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *MapCamera) Scrolling() bool {
	return c.scrollTween != nil
}

// Update advances one tick of scrolling and bounds clamping.
func (c *MapCamera) Update() {
	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(1)
			c.DisplayX = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(1)
			c.DisplayY = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds keeps the visible area within the map. Maps smaller than
// the screen are pinned to the origin.
func (c *MapCamera) clampToBounds() {
	maxX := float64(c.MapWidth) - c.ScreenTilesX
	maxY := float64(c.MapHeight) - c.ScreenTilesY
	c.DisplayX = math.Max(0, math.Min(c.DisplayX, math.Max(0, maxX)))
	c.DisplayY = math.Max(0, math.Min(c.DisplayY, math.Max(0, maxY)))
}
