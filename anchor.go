package minilight

import "math"

// Anchor is anything a light can be attached to: the player or a map event.
// The host adapts its own entity types to this interface; the lighting code
// never reaches into host internals.
type Anchor interface {
	// RealX and RealY are the continuous (sub-tile) position in tiles. They
	// trail TileX/TileY while the entity walks between tiles.
	RealX() float64
	RealY() float64
	// TileX and TileY are the discrete tile the entity occupies or is
	// walking toward.
	TileX() int
	TileY() int
	// ScrolledX and ScrolledY are the entity position relative to the camera
	// origin, in tiles.
	ScrolledX() float64
	ScrolledY() float64
	// ShiftY is the fixed vertical sprite offset in pixels.
	ShiftY() float64
	// JumpHeight is the current jump elevation in pixels.
	JumpHeight() float64
}

// MapMetrics reports the pixel size of one map tile.
type MapMetrics interface {
	TileWidth() float64
	TileHeight() float64
}

// EntityResolver looks up anchors by entity id. Id 0 is the player; positive
// ids are map events.
type EntityResolver interface {
	Player() Anchor
	Event(id int) (Anchor, bool)
}

// PlayerID is the entity id that always resolves to the player.
const PlayerID = 0

// resolveAnchor maps an entity id to its anchor, reporting false when the id
// names nothing on the current map.
func resolveAnchor(r EntityResolver, entityID int) (Anchor, bool) {
	if r == nil {
		return nil, false
	}
	if entityID == PlayerID {
		a := r.Player()
		return a, a != nil
	}
	a, ok := r.Event(entityID)
	if !ok || a == nil {
		return nil, false
	}
	return a, true
}

// ScreenPosition returns the screen-space point a light anchored to a is
// centred on: the horizontal middle of the tile and the entity's feet,
// following the entity through in-progress walks and jumps.
//
//	x = round(scrolledX*tw + (realX-tileX)*tw + tw/2)
//	y = round(scrolledY*th + (realY-tileY)*th + th - shiftY - jumpHeight)
func ScreenPosition(a Anchor, m MapMetrics) (x, y int) {
	tw, th := m.TileWidth(), m.TileHeight()

	px := a.ScrolledX()*tw + (a.RealX()-float64(a.TileX()))*tw
	py := a.ScrolledY()*th + (a.RealY()-float64(a.TileY()))*th

	x = roundHalfUp(px + tw/2)
	y = roundHalfUp(py + th - a.ShiftY() - a.JumpHeight())
	return
}

// roundHalfUp rounds halves toward positive infinity, so -0.5 becomes 0.
// math.Round would round it away from zero.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
