package minilight

import (
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// lightSprite mirrors one LightSource on screen. It is owned by the
// LightLayer and lives only as long as the registry's light count is stable.
type lightSprite struct {
	source *LightSource
	image  *LightImage
	// radius and opacity are the parameters image was built from.
	radius  float64
	opacity int
	// alpha is the rendered opacity, 0-255.
	alpha   int
	x, y    int
	visible bool
}

// SpriteInfo is a read-only view of a rendered light.
type SpriteInfo struct {
	EntityID int
	X, Y     int
	Alpha    int
	Visible  bool
	Image    *LightImage
}

// LightLayer composites the darkness backdrop and one additive gradient
// sprite per registered light. Call Update once per frame after the game
// state tick, then Draw.
type LightLayer struct {
	reg      *Registry
	metrics  MapMetrics
	backdrop *RenderTexture
	rng      *rand.Rand

	// darkness is the configuration last painted onto backdrop.
	darkness        DarknessConfig
	darknessApplied bool

	sprites []*lightSprite

	flickerBase  int
	flickerRange int

	stats FrameStats
	imgOp ebiten.DrawImageOptions
	debug bool
}

// NewLightLayer creates a light layer covering the configured screen. rng
// drives flicker; nil seeds a fresh generator.
func NewLightLayer(reg *Registry, metrics MapMetrics, cfg Config, rng *rand.Rand) *LightLayer {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = cfg
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &LightLayer{
		reg:          reg,
		metrics:      metrics,
		backdrop:     NewRenderTexture(cfg.ScreenWidth, cfg.ScreenHeight),
		rng:          rng,
		flickerBase:  cfg.FlickerBase,
		flickerRange: cfg.FlickerRange,
		debug:        cfg.Debug,
	}
}

// SetDebug enables per-frame stats and color warnings on stderr.
func (ll *LightLayer) SetDebug(enabled bool) {
	ll.debug = enabled
}

// Backdrop returns the darkness surface.
func (ll *LightLayer) Backdrop() *RenderTexture {
	return ll.backdrop
}

// Darkness returns the darkness configuration last applied to the backdrop.
func (ll *LightLayer) Darkness() DarknessConfig {
	return ll.darkness
}

// Stats returns the work done by the most recent Update.
func (ll *LightLayer) Stats() FrameStats {
	return ll.stats
}

// NumSprites returns the number of light sprites.
func (ll *LightLayer) NumSprites() int {
	return len(ll.sprites)
}

// Sprite returns a view of the sprite at index i, in registry order.
func (ll *LightLayer) Sprite(i int) SpriteInfo {
	s := ll.sprites[i]
	return SpriteInfo{
		EntityID: s.source.EntityID,
		X:        s.x,
		Y:        s.y,
		Alpha:    s.alpha,
		Visible:  s.visible,
		Image:    s.image,
	}
}

// Update syncs the layer with the registry: darkness first, then sprite
// membership, then each sprite's gradient, flicker and screen position.
func (ll *LightLayer) Update() {
	if ll.backdrop == nil {
		return
	}
	var t0 time.Time
	if ll.debug {
		t0 = time.Now()
	}
	st := FrameStats{}

	if !ll.darknessApplied || ll.darkness != ll.reg.Darkness() {
		ll.applyDarkness(ll.reg.Darkness())
		st.DarknessRefills = 1
	}

	// Count-based reconciliation: any change in the number of lights
	// rebuilds every sprite. Same-count edits are caught only by the
	// per-sprite parameter check below.
	if len(ll.sprites) != ll.reg.Len() {
		ll.rebuildSprites()
		st.SpriteRebuilds = 1
	}

	for _, s := range ll.sprites {
		ll.refreshSprite(s, &st)
	}

	st.SpriteCount = len(ll.sprites)
	ll.stats = st
	if ll.debug {
		ll.stats.UpdateTime = time.Since(t0)
		ll.stats.debugLog()
	}
}

// applyDarkness repaints the backdrop with the configured color.
func (ll *LightLayer) applyDarkness(cfg DarknessConfig) {
	ll.darkness = cfg
	ll.darknessApplied = true
	c, err := parseHexColor(cfg.Color)
	if err != nil {
		debugf(ll.debug, "darkness color %q: %v", cfg.Color, err)
	}
	ll.backdrop.Fill(c)
}

// parseHexColor converts "#rrggbb" or "#rgb" to an opaque Color. Invalid
// input yields black along with the parse error.
func parseHexColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorBlack, err
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// rebuildSprites discards every sprite and creates one per registered
// light, in registry order.
func (ll *LightLayer) rebuildSprites() {
	for i, s := range ll.sprites {
		if s.image != nil {
			s.image.Dispose()
		}
		ll.sprites[i] = nil
	}
	ll.sprites = ll.sprites[:0]
	for _, l := range ll.reg.Lights() {
		ll.sprites = append(ll.sprites, &lightSprite{source: l, alpha: 255})
	}
}

// refreshSprite rebuilds the gradient when the light's shape changed, rolls
// flicker, and places the sprite over its anchor.
func (ll *LightLayer) refreshSprite(s *lightSprite, st *FrameStats) {
	l := s.source
	if s.image == nil || s.radius != l.Radius || s.opacity != l.Opacity {
		prev := s.image
		s.image = BuildLightImage(l.Radius, l.Opacity, prev)
		if s.image != prev {
			if prev != nil {
				prev.Dispose()
			}
			st.ImageRebuilds++
		}
		s.radius = l.Radius
		s.opacity = l.Opacity
	}

	if l.Flicker {
		s.alpha = ll.flickerBase + ll.rng.IntN(ll.flickerRange)
		st.FlickerSprites++
	} else {
		s.alpha = 255
	}

	if l.Anchor == nil {
		s.visible = false
		st.HiddenSprites++
		return
	}
	s.x, s.y = ScreenPosition(l.Anchor, ll.metrics)
	s.visible = true
}

// Draw renders the darkness backdrop at its layer opacity, then every
// visible light centred on its anchor with additive blending.
func (ll *LightLayer) Draw(screen *ebiten.Image) {
	if ll.backdrop == nil {
		return
	}
	ll.backdrop.DrawTo(screen, float64(clampByte(ll.darkness.Opacity))/255, BlendNormal)

	op := &ll.imgOp
	for _, s := range ll.sprites {
		if !s.visible || s.image == nil || s.image.Image() == nil {
			continue
		}
		half := float64(s.image.Size()) / 2
		op.GeoM.Reset()
		op.GeoM.Translate(float64(s.x)-half, float64(s.y)-half)
		a := float32(clampByte(s.alpha)) / 255
		op.ColorScale.Reset()
		op.ColorScale.Scale(a, a, a, a)
		op.Blend = BlendAdd.EbitenBlend()
		screen.DrawImage(s.image.Image(), op)
	}
}

// Dispose releases the backdrop and every sprite texture. Safe to call more
// than once.
func (ll *LightLayer) Dispose() {
	if ll.backdrop != nil {
		ll.backdrop.Dispose()
		ll.backdrop = nil
	}
	for _, s := range ll.sprites {
		if s.image != nil {
			s.image.Dispose()
		}
	}
	ll.sprites = nil
	ll.darknessApplied = false
}
