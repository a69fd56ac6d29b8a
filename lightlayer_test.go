package minilight

import (
	"math/rand/v2"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newTestLayer(reg *Registry) *LightLayer {
	return NewLightLayer(reg, tiles48, DefaultConfig(), rand.New(rand.NewPCG(1, 2)))
}

func TestLightLayerEventLightScenario(t *testing.T) {
	reg, _ := newTestRegistry()
	in := NewInterpreter(reg)
	ll := newTestLayer(reg)
	defer ll.Dispose()

	if _, err := in.ExecLine("light add -1 150 100", 7); err != nil {
		t.Fatalf("ExecLine: %v", err)
	}
	ll.Update()

	if ll.NumSprites() != 1 {
		t.Fatalf("NumSprites = %d, want 1", ll.NumSprites())
	}
	s := ll.Sprite(0)
	if s.EntityID != 7 {
		t.Errorf("EntityID = %d, want 7", s.EntityID)
	}
	if s.X != 7*48+24 || s.Y != 7*48+48 {
		t.Errorf("position = (%d, %d), want (%d, %d)", s.X, s.Y, 7*48+24, 7*48+48)
	}
	if s.Image == nil || s.Image.Size() != 300 {
		t.Fatalf("image size = %v, want 300", s.Image)
	}
	if s.Image.Radius() != 150 || s.Image.Opacity() != 100 {
		t.Errorf("image params = (%v, %d), want (150, 100)", s.Image.Radius(), s.Image.Opacity())
	}
	pix := gradientPixels(s.Image.Radius(), s.Image.Opacity())
	if a := pix.NRGBAAt(150, 150).A; a < 99 || a > 100 {
		t.Errorf("centre alpha = %d, want ~100 (100/255 opacity)", a)
	}
	if s.Alpha != 255 {
		t.Errorf("Alpha = %d, want 255 for a steady light", s.Alpha)
	}
	if !s.Visible {
		t.Error("sprite should be visible")
	}
}

func TestLightLayerHugeRadiusDegrades(t *testing.T) {
	reg, _ := newTestRegistry()
	in := NewInterpreter(reg)
	ll := newTestLayer(reg)
	defer ll.Dispose()

	if _, err := in.ExecLine("light add 7 2000000000 100", 0); err != nil {
		t.Fatalf("ExecLine: %v", err)
	}
	ll.Update()

	s := ll.Sprite(0)
	if s.Image == nil || s.Image.Size() != MaxLightTextureSize {
		t.Fatalf("image = %v, want side %d", s.Image, MaxLightTextureSize)
	}
	if s.Image.Radius() != 2000000000 {
		t.Errorf("Radius = %v, want the requested radius", s.Image.Radius())
	}

	// Memoized against the requested radius: no rebuild next frame.
	ll.Update()
	if ll.Stats().ImageRebuilds != 0 {
		t.Errorf("ImageRebuilds = %d, want 0", ll.Stats().ImageRebuilds)
	}
}

func TestLightLayerConvergesAfterRemove(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, false)
	reg.AddLight(8, 80, 90, false)
	ll.Update()
	if ll.NumSprites() != 2 {
		t.Fatalf("NumSprites = %d, want 2", ll.NumSprites())
	}

	reg.RemoveLight(7)
	ll.Update()
	if ll.NumSprites() != 1 {
		t.Fatalf("NumSprites = %d after remove, want 1", ll.NumSprites())
	}
	if ll.Sprite(0).EntityID != 8 {
		t.Errorf("remaining sprite entity = %d, want 8", ll.Sprite(0).EntityID)
	}
	if ll.Stats().SpriteRebuilds != 1 {
		t.Errorf("SpriteRebuilds = %d, want 1", ll.Stats().SpriteRebuilds)
	}

	reg.RemoveLight(8)
	ll.Update()
	if ll.NumSprites() != 0 {
		t.Errorf("NumSprites = %d after removing all, want 0", ll.NumSprites())
	}
}

func TestLightLayerSameCountSwapKeepsSprites(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, false)
	ll.Update()

	// Remove and add in the same tick: the count is unchanged, so the
	// sprite set is not rebuilt and still mirrors the removed record.
	reg.RemoveLight(7)
	reg.AddLight(8, 50, 50, false)
	ll.Update()
	if ll.Stats().SpriteRebuilds != 0 {
		t.Errorf("SpriteRebuilds = %d, want 0", ll.Stats().SpriteRebuilds)
	}
	if ll.Sprite(0).EntityID != 7 {
		t.Errorf("sprite entity = %d, want stale 7", ll.Sprite(0).EntityID)
	}

	// The next count change brings the layer back in sync.
	reg.AddLight(7, 100, 100, false)
	ll.Update()
	if ll.NumSprites() != 2 || ll.Sprite(0).EntityID != 8 || ll.Sprite(1).EntityID != 7 {
		t.Errorf("sprites not rebuilt in registry order")
	}
}

func TestLightLayerImageRebuildOnChange(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, false)
	ll.Update()
	if ll.Stats().ImageRebuilds != 1 {
		t.Errorf("first Update ImageRebuilds = %d, want 1", ll.Stats().ImageRebuilds)
	}
	first := ll.Sprite(0).Image

	ll.Update()
	if ll.Stats().ImageRebuilds != 0 {
		t.Errorf("steady Update ImageRebuilds = %d, want 0", ll.Stats().ImageRebuilds)
	}
	if ll.Sprite(0).Image != first {
		t.Error("image should be reused while parameters are unchanged")
	}

	reg.ChangeLight(7, 120, 100, false, 0, 0)
	ll.Update()
	if ll.Stats().ImageRebuilds != 1 {
		t.Errorf("ImageRebuilds = %d after change, want 1", ll.Stats().ImageRebuilds)
	}
	if ll.Sprite(0).Image.Size() != 240 {
		t.Errorf("image size = %d, want 240", ll.Sprite(0).Image.Size())
	}
	if first.Image() != nil {
		t.Error("replaced image should be disposed")
	}
}

func TestLightLayerGrowthRebuildsEachTick(t *testing.T) {
	reg, _ := newTestRegistry()
	anim := NewAnimator(reg)
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(PlayerID, 50, 80, false)
	reg.ChangeLight(PlayerID, 50, 80, false, 60, 4)
	ll.Update()

	for i := 1; i <= 4; i++ {
		anim.Tick()
		ll.Update()
		if ll.Stats().ImageRebuilds != 1 {
			t.Errorf("tick %d: ImageRebuilds = %d, want 1", i, ll.Stats().ImageRebuilds)
		}
	}
	if got := ll.Sprite(0).Image.Size(); got != 120 {
		t.Errorf("final image size = %d, want 120", got)
	}

	anim.Tick()
	ll.Update()
	if ll.Stats().ImageRebuilds != 0 {
		t.Errorf("after growth: ImageRebuilds = %d, want 0", ll.Stats().ImageRebuilds)
	}
}

func TestLightLayerFlickerAlpha(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, true)
	seen := make(map[int]bool)
	for range 200 {
		ll.Update()
		a := ll.Sprite(0).Alpha
		if a < 155 || a > 254 {
			t.Fatalf("flicker alpha = %d, want in [155, 254]", a)
		}
		seen[a] = true
	}
	if len(seen) < 10 {
		t.Errorf("flicker produced %d distinct alphas, want variation", len(seen))
	}
	if ll.Stats().FlickerSprites != 1 {
		t.Errorf("FlickerSprites = %d, want 1", ll.Stats().FlickerSprites)
	}
}

func TestLightLayerFlickerOffRestoresAlpha(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, true)
	ll.Update()
	reg.ChangeLight(7, 100, 100, false, 0, 0)
	ll.Update()
	if a := ll.Sprite(0).Alpha; a != 255 {
		t.Errorf("Alpha = %d after flicker off, want 255", a)
	}
}

func TestLightLayerCustomFlickerBand(t *testing.T) {
	reg, _ := newTestRegistry()
	cfg := DefaultConfig()
	cfg.FlickerBase = 10
	cfg.FlickerRange = 5
	ll := NewLightLayer(reg, tiles48, cfg, rand.New(rand.NewPCG(3, 4)))
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, true)
	for range 50 {
		ll.Update()
		if a := ll.Sprite(0).Alpha; a < 10 || a > 14 {
			t.Fatalf("flicker alpha = %d, want in [10, 14]", a)
		}
	}
}

func TestLightLayerDarknessRefill(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	ll.Update()
	if ll.Stats().DarknessRefills != 1 {
		t.Errorf("first Update DarknessRefills = %d, want 1", ll.Stats().DarknessRefills)
	}
	ll.Update()
	if ll.Stats().DarknessRefills != 0 {
		t.Errorf("steady DarknessRefills = %d, want 0", ll.Stats().DarknessRefills)
	}

	reg.SetDarknessLayer(200, "#203040")
	ll.Update()
	if ll.Stats().DarknessRefills != 1 {
		t.Errorf("DarknessRefills = %d after change, want 1", ll.Stats().DarknessRefills)
	}
	if ll.Darkness() != reg.Darkness() {
		t.Errorf("layer darkness = %+v, want %+v", ll.Darkness(), reg.Darkness())
	}
	want, _ := parseHexColor("#203040")
	if ll.Backdrop().FillColor() != want {
		t.Errorf("backdrop fill = %+v, want %+v", ll.Backdrop().FillColor(), want)
	}

	// Only the opacity changes: still a refill.
	reg.SetDarknessLayer(100, "#203040")
	ll.Update()
	if ll.Stats().DarknessRefills != 1 {
		t.Errorf("DarknessRefills = %d after opacity change, want 1", ll.Stats().DarknessRefills)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#000000", ColorBlack, false},
		{"#ffffff", ColorWhite, false},
		{"#fff", ColorWhite, false},
		{"#ff0000", Color{R: 1, A: 1}, false},
		{"bogus", ColorBlack, true},
		{"", ColorBlack, true},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if got != tt.want {
			t.Errorf("parseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestLightLayerHidesUnresolvedLights(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.Restore(Snapshot{
		Lights:   []LightRecord{{EntityID: 42, Radius: 100, Opacity: 100}, {EntityID: 7, Radius: 50, Opacity: 50}},
		Darkness: DefaultDarkness,
	})
	ll.Update()

	if ll.Sprite(0).Visible {
		t.Error("sprite for entity 42 should be hidden")
	}
	if !ll.Sprite(1).Visible {
		t.Error("sprite for entity 7 should be visible")
	}
	if ll.Stats().HiddenSprites != 1 {
		t.Errorf("HiddenSprites = %d, want 1", ll.Stats().HiddenSprites)
	}
}

func TestLightLayerFollowsAnchor(t *testing.T) {
	reg, res := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.AddLight(7, 100, 100, false)
	ll.Update()

	ev := res.events[7].(*stubAnchor)
	ev.scrolledX -= 2 // camera moved two tiles right
	ev.jump = 12
	ll.Update()

	s := ll.Sprite(0)
	if s.X != 5*48+24 || s.Y != 7*48+48-12 {
		t.Errorf("position = (%d, %d), want (%d, %d)", s.X, s.Y, 5*48+24, 7*48+48-12)
	}
}

func TestLightLayerNilMetricsUsesConfig(t *testing.T) {
	reg, _ := newTestRegistry()
	cfg := DefaultConfig()
	cfg.TileW, cfg.TileH = 32, 32
	ll := NewLightLayer(reg, nil, cfg, nil)
	defer ll.Dispose()

	reg.AddLight(7, 10, 10, false)
	ll.Update()
	if s := ll.Sprite(0); s.X != 7*32+16 || s.Y != 8*32 {
		t.Errorf("position = (%d, %d), want (%d, %d)", s.X, s.Y, 7*32+16, 8*32)
	}
	if ll.Backdrop().Width() != 816 || ll.Backdrop().Height() != 624 {
		t.Errorf("backdrop = %dx%d, want 816x624", ll.Backdrop().Width(), ll.Backdrop().Height())
	}
}

func TestLightLayerDrawNoPanic(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	defer ll.Dispose()

	reg.SetDarknessLayer(200, "#000000")
	reg.AddLight(7, 100, 100, true)
	reg.AddLight(42, 100, 100, false) // unresolved, never added
	ll.Update()

	screen := ebiten.NewImage(816, 624)
	defer screen.Deallocate()
	ll.Draw(screen)
}

func TestLightLayerDisposeTwice(t *testing.T) {
	reg, _ := newTestRegistry()
	ll := newTestLayer(reg)
	reg.AddLight(7, 100, 100, false)
	ll.Update()

	ll.Dispose()
	ll.Dispose()
	if ll.Backdrop() != nil {
		t.Error("Backdrop should be nil after Dispose")
	}

	// Update and Draw after Dispose are no-ops.
	ll.Update()
	screen := ebiten.NewImage(4, 4)
	defer screen.Deallocate()
	ll.Draw(screen)
}

func BenchmarkLightLayerUpdate(b *testing.B) {
	res := newStubResolver()
	reg := NewRegistry(res)
	for i := 1; i <= 50; i++ {
		res.events[i] = atTile(i%17, i/17)
		reg.AddLight(i, 100, 120, i%3 == 0)
	}
	ll := newTestLayer(reg)
	defer ll.Dispose()
	ll.Update()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ll.Update()
	}
}
