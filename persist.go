package minilight

import (
	"errors"
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// LightRecord is the persisted form of a LightSource. The anchor is not
// stored; it is re-resolved from EntityID on restore.
type LightRecord struct {
	EntityID     int     `yaml:"entityId"`
	Radius       float64 `yaml:"radius"`
	Opacity      int     `yaml:"opacity"`
	Flicker      bool    `yaml:"flicker,omitempty"`
	GrowthRate   float64 `yaml:"growthRate,omitempty"`
	GrowthFrames int     `yaml:"growthFrames,omitempty"`
}

// Snapshot is the serializable lighting state of a game session.
type Snapshot struct {
	Lights   []LightRecord  `yaml:"lights"`
	Darkness DarknessConfig `yaml:"darkness"`
}

// Snapshot captures the registry's lights and darkness configuration.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Lights:   make([]LightRecord, 0, len(r.lights)),
		Darkness: r.darkness,
	}
	for _, l := range r.lights {
		snap.Lights = append(snap.Lights, LightRecord{
			EntityID:     l.EntityID,
			Radius:       l.Radius,
			Opacity:      l.Opacity,
			Flicker:      l.Flicker,
			GrowthRate:   l.GrowthRate,
			GrowthFrames: l.GrowthFrames,
		})
	}
	return snap
}

// Restore replaces the registry contents with snap, re-resolving every
// anchor. Records whose entity cannot be resolved are kept with a nil
// anchor so a later Snapshot reproduces snap exactly.
func (r *Registry) Restore(snap Snapshot) {
	for i := range r.lights {
		r.lights[i] = nil
	}
	r.lights = r.lights[:0]
	for _, rec := range snap.Lights {
		anchor, ok := resolveAnchor(r.resolver, rec.EntityID)
		if !ok {
			debugf(r.debug, "restore light: entity %d not found", rec.EntityID)
		}
		r.lights = append(r.lights, &LightSource{
			Anchor:       anchor,
			EntityID:     rec.EntityID,
			Radius:       rec.Radius,
			Opacity:      rec.Opacity,
			Flicker:      rec.Flicker,
			GrowthRate:   rec.GrowthRate,
			GrowthFrames: rec.GrowthFrames,
		})
	}
	r.darkness = snap.Darkness
	if r.darkness.Color == "" {
		r.darkness.Color = DefaultDarkness.Color
	}
}

// Reresolve refreshes every anchor from its entity id, for example after the
// host reloads the current map's events.
func (r *Registry) Reresolve() {
	for _, l := range r.lights {
		l.Anchor, _ = resolveAnchor(r.resolver, l.EntityID)
	}
}

// MarshalSnapshot encodes snap as YAML.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal lighting snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a YAML snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal lighting snapshot: %w", err)
	}
	return snap, nil
}

// ErrNoSave is returned by SaveStore.Load when the slot holds no lighting state.
var ErrNoSave = errors.New("minilight: no saved lighting state")

// saveObject is the gdata object key that holds one property per slot.
const saveObject = "lighting"

// SaveStore persists snapshots in named slots through gdata. A nil manager
// runs in degraded mode: Save is a no-op and Load reports ErrNoSave.
type SaveStore struct {
	manager *gdata.Manager
}

// NewSaveStore wraps m. m may be nil.
func NewSaveStore(m *gdata.Manager) *SaveStore {
	return &SaveStore{manager: m}
}

// OpenSaveStore opens the gdata storage for appName. When the platform has
// no usable data directory the store falls back to degraded mode and the
// error is returned alongside it.
func OpenSaveStore(appName string) (*SaveStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewSaveStore(nil), fmt.Errorf("open save storage %q: %w", appName, err)
	}
	return NewSaveStore(m), nil
}

// Enabled reports whether snapshots are actually persisted.
func (s *SaveStore) Enabled() bool {
	return s.manager != nil
}

// Exists reports whether slot holds a snapshot.
func (s *SaveStore) Exists(slot string) bool {
	if s.manager == nil {
		return false
	}
	return s.manager.ObjectPropExists(saveObject, slot)
}

// Save writes snap to slot.
func (s *SaveStore) Save(slot string, snap Snapshot) error {
	if s.manager == nil {
		return nil
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.manager.SaveObjectProp(saveObject, slot, data); err != nil {
		return fmt.Errorf("save lighting slot %q: %w", slot, err)
	}
	return nil
}

// Load reads the snapshot in slot.
func (s *SaveStore) Load(slot string) (Snapshot, error) {
	if !s.Exists(slot) {
		return Snapshot{}, ErrNoSave
	}
	data, err := s.manager.LoadObjectProp(saveObject, slot)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load lighting slot %q: %w", slot, err)
	}
	return UnmarshalSnapshot(data)
}
