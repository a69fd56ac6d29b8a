package minilight

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTexture is a persistent offscreen canvas. The light layer uses one as
// its full-screen darkness backdrop; it is owned by the caller and is NOT
// recycled between frames.
type RenderTexture struct {
	image *ebiten.Image
	w, h  int
	fill  Color
}

// NewRenderTexture creates a persistent offscreen canvas of the given size.
// Sizes below one pixel are raised to one.
func NewRenderTexture(w, h int) *RenderTexture {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &RenderTexture{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (rt *RenderTexture) Image() *ebiten.Image {
	return rt.image
}

// Width returns the texture width in pixels.
func (rt *RenderTexture) Width() int {
	return rt.w
}

// Height returns the texture height in pixels.
func (rt *RenderTexture) Height() int {
	return rt.h
}

// Fill replaces the entire texture with the given color.
func (rt *RenderTexture) Fill(c Color) {
	rt.fill = c
	rt.image.Fill(c.toRGBA())
}

// FillColor returns the color of the last Fill, or the zero Color if the
// texture was never filled.
func (rt *RenderTexture) FillColor() Color {
	return rt.fill
}

// DrawTo draws the texture onto dst at the origin, scaled by alpha in [0, 1].
func (rt *RenderTexture) DrawTo(dst *ebiten.Image, alpha float64, blend BlendMode) {
	a := float32(clamp01(alpha))
	if a == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.ColorScale.Scale(a, a, a, a)
	op.Blend = blend.EbitenBlend()
	dst.DrawImage(rt.image, &op)
}

// Dispose deallocates the underlying image. The RenderTexture should not be
// used after calling Dispose.
func (rt *RenderTexture) Dispose() {
	if rt.image != nil {
		rt.image.Deallocate()
		rt.image = nil
	}
}
