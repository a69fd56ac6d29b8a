package minilight

import (
	"fmt"
	"os"
	"time"
)

// debugf prints a diagnostic line to stderr when enabled is set. Each
// component passes its own debug flag; the Session keeps them in sync.
func debugf(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[minilight] "+format+"\n", args...)
}

// FrameStats holds the work done by one LightLayer.Update call.
type FrameStats struct {
	UpdateTime      time.Duration
	SpriteCount     int
	SpriteRebuilds  int // full membership rebuilds (0 or 1)
	ImageRebuilds   int // gradient textures regenerated
	DarknessRefills int // backdrop repaints (0 or 1)
	FlickerSprites  int
	HiddenSprites   int // sprites without a resolvable anchor
}

// debugLog prints frame stats to stderr. Quiet frames (no rebuilds) are
// skipped so a steady scene does not flood the terminal.
func (s FrameStats) debugLog() {
	if s.SpriteRebuilds == 0 && s.ImageRebuilds == 0 && s.DarknessRefills == 0 {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[minilight] update: %v | sprites: %d | rebuilds: %d | images: %d | darkness: %d\n",
		s.UpdateTime, s.SpriteCount, s.SpriteRebuilds, s.ImageRebuilds, s.DarknessRefills)
}
