package minilight

// LightSource is a circular light anchored to an entity. The registry owns
// the record; the anchor itself is only referenced.
type LightSource struct {
	// Anchor is the entity the light follows. It is derived from EntityID and
	// is nil for restored lights whose entity is not on the current map.
	Anchor Anchor
	// EntityID identifies the anchored entity (0 = player, >0 = map event).
	EntityID int
	// Radius is the current radius in pixels.
	Radius float64
	// Opacity is the alpha of the gradient centre, 0-255.
	Opacity int
	// Flicker randomizes the rendered opacity every frame.
	Flicker bool
	// GrowthRate is added to Radius on each tick while GrowthFrames > 0.
	GrowthRate float64
	// GrowthFrames counts the ticks of growth left. 0 means static.
	GrowthFrames int
}

// Growing reports whether the light has growth ticks left.
func (l *LightSource) Growing() bool {
	return l.GrowthFrames > 0
}

// DarknessConfig describes the full-screen darkness backdrop.
type DarknessConfig struct {
	// Opacity is the layer alpha, 0-255.
	Opacity int `yaml:"opacity"`
	// Color is a CSS-style hex color such as "#000000".
	Color string `yaml:"color"`
}

// DefaultDarkness is the darkness state of a new game: fully transparent black.
var DefaultDarkness = DarknessConfig{Opacity: 0, Color: "#000000"}

// LightEventType identifies a registry mutation.
type LightEventType uint8

const (
	LightAdded      LightEventType = iota // a light was appended
	LightRemoved                          // a light was removed
	LightChanged                          // a light's parameters were replaced
	DarknessChanged                       // the darkness layer was replaced
	LightsCleared                         // the registry was reset
)

// LightEvent carries registry mutations to an optional EventSink.
type LightEvent struct {
	Type     LightEventType
	EntityID int
	Radius   float64
	Opacity  int
	Flicker  bool
	Darkness DarknessConfig
}

// EventSink receives registry mutations. Used by the ECS bridge.
type EventSink interface {
	EmitLightEvent(event LightEvent)
}

// Registry owns the light sources and darkness configuration of one game
// session. It is pure state: nothing here renders.
type Registry struct {
	resolver EntityResolver
	lights   []*LightSource
	darkness DarknessConfig
	sink     EventSink
	debug    bool
}

// NewRegistry creates an empty registry that resolves entity ids with resolver.
func NewRegistry(resolver EntityResolver) *Registry {
	return &Registry{
		resolver: resolver,
		darkness: DefaultDarkness,
	}
}

// SetResolver replaces the entity resolver, typically on map transfer.
// Existing anchors are not re-resolved; use Restore for that.
func (r *Registry) SetResolver(resolver EntityResolver) {
	r.resolver = resolver
}

// SetDebug enables diagnostic output for unresolved entities.
func (r *Registry) SetDebug(enabled bool) {
	r.debug = enabled
}

// SetEventSink sets the optional mutation observer.
func (r *Registry) SetEventSink(sink EventSink) {
	r.sink = sink
}

// AddLight attaches a light to entityID. If the id does not resolve to an
// entity the call is a no-op. An entity that already has a light gets that
// record replaced in place, so each id has at most one light.
func (r *Registry) AddLight(entityID int, radius float64, opacity int, flicker bool) {
	anchor, ok := resolveAnchor(r.resolver, entityID)
	if !ok {
		debugf(r.debug, "add light: entity %d not found", entityID)
		return
	}
	light := LightSource{
		Anchor:   anchor,
		EntityID: entityID,
		Radius:   radius,
		Opacity:  opacity,
		Flicker:  flicker,
	}
	if l, ok := r.Light(entityID); ok {
		*l = light
	} else {
		r.lights = append(r.lights, &light)
	}
	r.emit(LightEvent{Type: LightAdded, EntityID: entityID, Radius: radius, Opacity: opacity, Flicker: flicker})
}

// RemoveLight removes the first light anchored to entityID. No-op if absent.
func (r *Registry) RemoveLight(entityID int) {
	for i, l := range r.lights {
		if l.EntityID == entityID {
			copy(r.lights[i:], r.lights[i+1:])
			r.lights[len(r.lights)-1] = nil
			r.lights = r.lights[:len(r.lights)-1]
			r.emit(LightEvent{Type: LightRemoved, EntityID: entityID})
			return
		}
	}
}

// ChangeLight replaces the parameters of the first light anchored to
// entityID. When target is non-zero and frames is positive, the radius grows
// linearly toward target over frames ticks; otherwise any pending growth is
// cancelled. No-op if the entity has no light.
func (r *Registry) ChangeLight(entityID int, radius float64, opacity int, flicker bool, target float64, frames int) {
	l, ok := r.Light(entityID)
	if !ok {
		return
	}
	l.Radius = radius
	l.Opacity = opacity
	l.Flicker = flicker
	if target != 0 && frames > 0 {
		l.GrowthRate = (target - radius) / float64(frames)
		l.GrowthFrames = frames
	} else {
		l.GrowthRate = 0
		l.GrowthFrames = 0
	}
	r.emit(LightEvent{Type: LightChanged, EntityID: entityID, Radius: radius, Opacity: opacity, Flicker: flicker})
}

// SetDarknessLayer replaces the darkness backdrop configuration.
func (r *Registry) SetDarknessLayer(opacity int, color string) {
	r.darkness = DarknessConfig{Opacity: opacity, Color: color}
	r.emit(LightEvent{Type: DarknessChanged, Darkness: r.darkness})
}

// Darkness returns the current darkness configuration.
func (r *Registry) Darkness() DarknessConfig {
	return r.darkness
}

// Light returns the first light anchored to entityID.
func (r *Registry) Light(entityID int) (*LightSource, bool) {
	for _, l := range r.lights {
		if l.EntityID == entityID {
			return l, true
		}
	}
	return nil, false
}

// Lights returns the current light list in insertion order. The returned
// slice MUST NOT be mutated.
func (r *Registry) Lights() []*LightSource {
	return r.lights
}

// Len returns the number of registered lights.
func (r *Registry) Len() int {
	return len(r.lights)
}

// Clear removes every light and resets the darkness layer, as on a new game.
func (r *Registry) Clear() {
	for i := range r.lights {
		r.lights[i] = nil
	}
	r.lights = r.lights[:0]
	r.darkness = DefaultDarkness
	r.emit(LightEvent{Type: LightsCleared})
}

func (r *Registry) emit(e LightEvent) {
	if r.sink != nil {
		r.sink.EmitLightEvent(e)
	}
}
