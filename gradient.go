package minilight

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// LightImage is a radial gradient built for one (radius, opacity) pair.
type LightImage struct {
	img     *ebiten.Image
	radius  float64
	opacity int
	size    int
}

// Image returns the gradient texture.
func (li *LightImage) Image() *ebiten.Image {
	return li.img
}

// Size returns the side length of the square texture in pixels.
func (li *LightImage) Size() int {
	return li.size
}

// Radius returns the radius the gradient was built for.
func (li *LightImage) Radius() float64 {
	return li.radius
}

// Opacity returns the centre opacity the gradient was built for.
func (li *LightImage) Opacity() int {
	return li.opacity
}

// Matches reports whether the image was built for exactly these parameters.
func (li *LightImage) Matches(radius float64, opacity int) bool {
	return li.radius == radius && li.opacity == opacity
}

// Dispose releases the texture. Safe to call more than once.
func (li *LightImage) Dispose() {
	if li.img != nil {
		li.img.Deallocate()
		li.img = nil
	}
}

// BuildLightImage returns prev unchanged when it was built for the same
// radius and opacity. Otherwise it rasterizes a new gradient; prev is left
// for the caller to dispose.
func BuildLightImage(radius float64, opacity int, prev *LightImage) *LightImage {
	if prev != nil && prev.Matches(radius, opacity) {
		return prev
	}
	pix := gradientPixels(radius, opacity)
	return &LightImage{
		img:     ebiten.NewImageFromImage(pix),
		radius:  radius,
		opacity: opacity,
		size:    pix.Bounds().Dx(),
	}
}

// MaxLightTextureSize is the largest gradient texture side in pixels. Lights
// with a larger diameter are drawn at this size, which still covers a whole
// screen from any position.
const MaxLightTextureSize = 4096

// gradientRadius is the radius actually rasterized for radius: 0 for
// degenerate input and at most half of MaxLightTextureSize.
func gradientRadius(radius float64) float64 {
	switch {
	case math.IsNaN(radius) || radius <= 0:
		return 0
	case radius > MaxLightTextureSize/2:
		return MaxLightTextureSize / 2
	}
	return radius
}

// gradientSize is the texture side for radius: 2*radius truncated, between 1
// and MaxLightTextureSize.
func gradientSize(radius float64) int {
	return max(int(gradientRadius(radius)*2), 1)
}

// gradientPixels rasterizes a ColorWhite radial gradient centred at
// (radius, radius). Alpha falls linearly from opacity/255 at the centre to 0
// at distance radius. Degenerate radii produce one transparent pixel and
// oversized radii are capped.
func gradientPixels(radius float64, opacity int) *image.NRGBA {
	radius = gradientRadius(radius)
	size := gradientSize(radius)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	if radius == 0 {
		return img
	}

	r := uint8(clamp01(ColorWhite.R) * 255)
	g := uint8(clamp01(ColorWhite.G) * 255)
	b := uint8(clamp01(ColorWhite.B) * 255)
	center := float64(clampByte(opacity)) / 255 * clamp01(ColorWhite.A)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			t := math.Sqrt(dx*dx+dy*dy) / radius
			if t >= 1 {
				continue
			}
			off := img.PixOffset(x, y)
			img.Pix[off+0] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = uint8(math.Round(center * (1 - t) * 255))
		}
	}
	return img
}
