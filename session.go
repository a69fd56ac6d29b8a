package minilight

import (
	"fmt"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// Session is the lighting state of one running game: the light registry and
// darkness configuration, the animator that grows lights, and, while a map
// scene is active, the light layer that renders them. It is owned by the
// host and passed explicitly; nothing here is global.
//
// Per tick the host updates its own entities first and then calls
// Session.Update; Session.Draw renders the layer over the map.
type Session struct {
	cfg      Config
	registry *Registry
	animator *Animator
	interp   *Interpreter
	layer    *LightLayer
	metrics  MapMetrics
	rng      *rand.Rand
	store    *SaveStore
	script   *ScriptRunner

	// ScreenshotDir is where queued screenshots and their lighting
	// metadata are written.
	ScreenshotDir   string
	screenshotQueue []shotRequest
}

// NewSession creates a session for a new game. rng drives flicker; nil seeds
// a fresh generator. The tile size comes from cfg until SetMetrics is called.
func NewSession(cfg Config, resolver EntityResolver, rng *rand.Rand) *Session {
	cfg = cfg.withDefaults()
	reg := NewRegistry(resolver)
	reg.SetDebug(cfg.Debug)
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		cfg:           cfg,
		registry:      reg,
		animator:      NewAnimator(reg),
		interp:        NewInterpreter(reg),
		metrics:       cfg,
		rng:           rng,
		store:         NewSaveStore(nil),
		ScreenshotDir: "screenshots",
	}
}

// Config returns the session configuration with defaults applied.
func (s *Session) Config() Config {
	return s.cfg
}

// Registry returns the light registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Interpreter returns the command interpreter bound to the registry.
func (s *Session) Interpreter() *Interpreter {
	return s.interp
}

// Layer returns the active light layer, or nil outside a map scene.
func (s *Session) Layer() *LightLayer {
	return s.layer
}

// SetMetrics overrides the tile size used for light placement.
func (s *Session) SetMetrics(m MapMetrics) {
	s.metrics = m
	if s.layer != nil {
		s.layer.metrics = m
	}
}

// SetSaveStore sets where Save and Load persist snapshots.
func (s *Session) SetSaveStore(store *SaveStore) {
	if store == nil {
		store = NewSaveStore(nil)
	}
	s.store = store
}

// SetScript attaches a command script that is stepped once per Update.
func (s *Session) SetScript(script *ScriptRunner) {
	s.script = script
}

// SetDebugMode enables or disables diagnostic output on stderr for this
// session's registry, light layer, script and screenshots.
func (s *Session) SetDebugMode(enabled bool) {
	s.cfg.Debug = enabled
	s.registry.SetDebug(enabled)
	if s.layer != nil {
		s.layer.SetDebug(enabled)
	}
}

// NewGame clears every light and resets the darkness layer.
func (s *Session) NewGame() {
	s.registry.Clear()
}

// EnterMap starts a map scene: the registry resolves entities through
// resolver from now on, existing lights re-attach to their entities, and a
// fresh light layer is created and synced.
func (s *Session) EnterMap(resolver EntityResolver) {
	s.LeaveMap()
	if resolver != nil {
		s.registry.SetResolver(resolver)
	}
	s.registry.Reresolve()
	s.layer = NewLightLayer(s.registry, s.metrics, s.cfg, s.rng)
	s.layer.Update()
	debugf(s.cfg.Debug, "enter map: %d lights", s.registry.Len())
}

// LeaveMap tears down the light layer. The registry is kept.
func (s *Session) LeaveMap() {
	if s.layer != nil {
		s.layer.Dispose()
		s.layer = nil
	}
}

// SetupEventPage re-derives an event's light from the comments of its
// newly activated page.
func (s *Session) SetupEventPage(eventID int, comments []string) {
	SetupEventLight(s.registry, eventID, comments)
}

// Exec runs a light command line on behalf of eventID.
func (s *Session) Exec(line string, eventID int) (bool, error) {
	return s.interp.ExecLine(line, eventID)
}

// Update runs one game tick: script step, light growth, then layer sync.
func (s *Session) Update() {
	if s.script != nil {
		s.script.step(s)
	}
	s.animator.Tick()
	if s.layer != nil {
		s.layer.Update()
	}
}

// Draw renders the light layer onto screen and writes any queued
// screenshots.
func (s *Session) Draw(screen *ebiten.Image) {
	if s.layer != nil {
		s.layer.Draw(screen)
	}
	s.flushScreenshots(screen)
}

// Save stores the current lighting state in slot.
func (s *Session) Save(slot string) error {
	snap := s.registry.Snapshot()
	if err := s.store.Save(slot, snap); err != nil {
		return err
	}
	if s.store.Enabled() {
		debugf(s.cfg.Debug, "saved slot %q (%d lights)", slot, len(snap.Lights))
	}
	return nil
}

// Load replaces the lighting state with the one saved in slot. An active
// map scene is rebuilt, as the host reloads the map after loading a save.
func (s *Session) Load(slot string) error {
	snap, err := s.store.Load(slot)
	if err != nil {
		return fmt.Errorf("load %q: %w", slot, err)
	}
	s.registry.Restore(snap)
	if s.layer != nil {
		s.EnterMap(nil)
	}
	return nil
}

// Dispose releases the light layer.
func (s *Session) Dispose() {
	s.LeaveMap()
}
