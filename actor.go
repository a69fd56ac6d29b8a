package minilight

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Actor is a reference Anchor: a tile-walking map entity whose real
// position trails its tile position while a walk tween runs. Hosts with
// their own entity model implement Anchor directly instead.
type Actor struct {
	// ID is the entity id: PlayerID for the player, >0 for events.
	ID int

	x, y         int
	realX, realY float64
	shiftY       float64

	jumpPeak  int
	jumpCount int

	walkX *gween.Tween
	walkY *gween.Tween

	camera *MapCamera
}

// NewActor places an actor on tile (x, y). A nil camera means the map is
// not scrolled.
func NewActor(id, x, y int, camera *MapCamera) *Actor {
	return &Actor{
		ID:     id,
		x:      x,
		y:      y,
		realX:  float64(x),
		realY:  float64(y),
		camera: camera,
	}
}

// SetShiftY sets the fixed vertical sprite offset in pixels.
func (a *Actor) SetShiftY(px float64) {
	a.shiftY = px
}

// Locate snaps the actor to tile (x, y), cancelling any walk or jump.
func (a *Actor) Locate(x, y int) {
	a.x, a.y = x, y
	a.realX, a.realY = float64(x), float64(y)
	a.walkX, a.walkY = nil, nil
	a.jumpCount = 0
}

// Walk moves the actor by (dx, dy) tiles. The tile position changes at once;
// the real position follows linearly over frames ticks. Ignored while a walk
// is already in progress.
func (a *Actor) Walk(dx, dy, frames int) {
	if a.Moving() {
		return
	}
	a.x += dx
	a.y += dy
	if frames <= 0 {
		a.realX, a.realY = float64(a.x), float64(a.y)
		return
	}
	if dx != 0 {
		a.walkX = gween.New(float32(a.realX), float32(a.x), float32(frames), ease.Linear)
	}
	if dy != 0 {
		a.walkY = gween.New(float32(a.realY), float32(a.y), float32(frames), ease.Linear)
	}
}

// Jump starts a parabolic jump in place that peaks at peak ticks.
func (a *Actor) Jump(peak int) {
	if peak <= 0 {
		return
	}
	a.jumpPeak = peak
	a.jumpCount = peak * 2
}

// Moving reports whether a walk or jump is in progress.
func (a *Actor) Moving() bool {
	return a.walkX != nil || a.walkY != nil || a.jumpCount > 0
}

// Update advances walk and jump by one tick.
func (a *Actor) Update() {
	if a.walkX != nil {
		v, done := a.walkX.Update(1)
		a.realX = float64(v)
		if done {
			a.realX = float64(a.x)
			a.walkX = nil
		}
	}
	if a.walkY != nil {
		v, done := a.walkY.Update(1)
		a.realY = float64(v)
		if done {
			a.realY = float64(a.y)
			a.walkY = nil
		}
	}
	if a.jumpCount > 0 {
		a.jumpCount--
	}
}

// RealX implements Anchor.
func (a *Actor) RealX() float64 { return a.realX }

// RealY implements Anchor.
func (a *Actor) RealY() float64 { return a.realY }

// TileX implements Anchor.
func (a *Actor) TileX() int { return a.x }

// TileY implements Anchor.
func (a *Actor) TileY() int { return a.y }

// ScrolledX implements Anchor.
func (a *Actor) ScrolledX() float64 {
	if a.camera == nil {
		return a.realX
	}
	return a.camera.ScrolledX(a.realX)
}

// ScrolledY implements Anchor.
func (a *Actor) ScrolledY() float64 {
	if a.camera == nil {
		return a.realY
	}
	return a.camera.ScrolledY(a.realY)
}

// ShiftY implements Anchor.
func (a *Actor) ShiftY() float64 { return a.shiftY }

// JumpHeight implements Anchor.
func (a *Actor) JumpHeight() float64 {
	if a.jumpCount <= 0 {
		return 0
	}
	d := float64(a.jumpCount - a.jumpPeak)
	p := float64(a.jumpPeak)
	return (p*p - d*d) / 2
}

// ActorMap is a reference EntityResolver over a player and a set of event
// actors.
type ActorMap struct {
	player *Actor
	events map[int]*Actor
}

// NewActorMap creates a resolver for player. player may be nil.
func NewActorMap(player *Actor) *ActorMap {
	return &ActorMap{player: player, events: make(map[int]*Actor)}
}

// AddEvent registers an event actor under its ID. Non-positive ids are ignored.
func (m *ActorMap) AddEvent(a *Actor) {
	if a == nil || a.ID <= 0 {
		return
	}
	m.events[a.ID] = a
}

// RemoveEvent unregisters the event with the given id.
func (m *ActorMap) RemoveEvent(id int) {
	delete(m.events, id)
}

// Player implements EntityResolver.
func (m *ActorMap) Player() Anchor {
	if m.player == nil {
		return nil
	}
	return m.player
}

// Event implements EntityResolver.
func (m *ActorMap) Event(id int) (Anchor, bool) {
	a, ok := m.events[id]
	if !ok {
		return nil, false
	}
	return a, true
}

// Update advances the player and every event actor by one tick.
func (m *ActorMap) Update() {
	if m.player != nil {
		m.player.Update()
	}
	for _, a := range m.events {
		a.Update()
	}
}
