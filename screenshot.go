package minilight

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"
)

// shotRequest is one queued capture.
type shotRequest struct {
	label string
	// layerOnly captures the light layer alone, composed over transparency,
	// instead of the whole frame.
	layerOnly bool
}

// ShotMeta is the lighting state written next to each capture as
// <stamp>_<label>.yaml, so a PNG can be matched to the registry and layer
// state that produced it.
type ShotMeta struct {
	Label     string         `yaml:"label"`
	LayerOnly bool           `yaml:"layerOnly,omitempty"`
	Darkness  DarknessConfig `yaml:"darkness"`
	Lights    []LightRecord  `yaml:"lights"`
	// Layer is nil outside a map scene.
	Layer *ShotLayerStats `yaml:"layer,omitempty"`
}

// ShotLayerStats summarizes the light layer at capture time.
type ShotLayerStats struct {
	Sprites  int `yaml:"sprites"`
	Visible  int `yaml:"visible"`
	Flicker  int `yaml:"flicker"`
	Textures int `yaml:"textures"`
}

// Screenshot queues a capture of the full frame, taken at the end of the
// current frame's Draw call. The PNG and its lighting metadata are written
// to ScreenshotDir. Safe to call from Update or Draw.
func (s *Session) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, shotRequest{label: label})
}

// ScreenshotLayer queues a capture of the light layer alone: the darkness
// backdrop and light sprites drawn onto a transparent canvas.
func (s *Session) ScreenshotLayer(label string) {
	s.screenshotQueue = append(s.screenshotQueue, shotRequest{label: label, layerOnly: true})
}

// shotMeta snapshots the lighting state for req.
func (s *Session) shotMeta(req shotRequest) ShotMeta {
	snap := s.registry.Snapshot()
	meta := ShotMeta{
		Label:     req.label,
		LayerOnly: req.layerOnly,
		Darkness:  snap.Darkness,
		Lights:    snap.Lights,
	}
	if s.layer != nil {
		st := s.layer.Stats()
		ls := &ShotLayerStats{Sprites: st.SpriteCount, Flicker: st.FlickerSprites}
		for i := 0; i < s.layer.NumSprites(); i++ {
			sp := s.layer.Sprite(i)
			if sp.Visible {
				ls.Visible++
			}
			if sp.Image != nil {
				ls.Textures++
			}
		}
		meta.Layer = ls
	}
	return meta
}

// flushScreenshots captures every queued request and writes a PNG plus a
// YAML metadata file for each. Called at the end of Session.Draw.
func (s *Session) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		debugf(s.cfg.Debug, "screenshot: mkdir %s: %v", s.ScreenshotDir, err)
		return
	}

	// Each source is read back at most once per frame.
	var frame, layer *image.NRGBA
	stamp := time.Now().Format("20060102_150405")
	for _, req := range s.screenshotQueue {
		var img *image.NRGBA
		if req.layerOnly {
			if layer == nil {
				layer = s.captureLayer(screen.Bounds())
			}
			img = layer
		} else {
			if frame == nil {
				frame = readPixels(screen)
			}
			img = frame
		}

		base := filepath.Join(s.ScreenshotDir, shotName(stamp, req))
		if err := writePNG(base+".png", img); err != nil {
			debugf(s.cfg.Debug, "screenshot: %v", err)
			continue
		}
		if err := writeShotMeta(base+".yaml", s.shotMeta(req)); err != nil {
			debugf(s.cfg.Debug, "screenshot: %v", err)
		}
	}
}

// captureLayer draws the light layer alone onto a transparent canvas the
// size of bounds and reads it back.
func (s *Session) captureLayer(bounds image.Rectangle) *image.NRGBA {
	canvas := ebiten.NewImage(bounds.Dx(), bounds.Dy())
	defer canvas.Deallocate()
	if s.layer != nil {
		s.layer.Draw(canvas)
	}
	return readPixels(canvas)
}

// readPixels copies img back from the GPU as straight-alpha NRGBA.
func readPixels(img *ebiten.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	img.ReadPixels(pixels)
	return unpremultiply(pixels, w, h)
}

// shotName is the file name, without extension, for req captured at stamp.
// Layer-only captures carry a "_layer" suffix.
func shotName(stamp string, req shotRequest) string {
	name := stamp + "_" + sanitizeLabel(req.label)
	if req.layerOnly {
		name += "_layer"
	}
	return name
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// writeShotMeta writes meta as YAML to path.
func writeShotMeta(path string, meta ShotMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
