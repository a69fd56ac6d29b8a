package minilight

// Animator advances scheduled radius growth. Call Tick once per update tick,
// at the same cadence as the rest of the game state.
type Animator struct {
	reg *Registry
}

// NewAnimator creates an animator for the lights in reg.
func NewAnimator(reg *Registry) *Animator {
	return &Animator{reg: reg}
}

// Tick applies one step of growth to every growing light. The radius is not
// clamped to the growth target, so float drift is carried as-is.
func (a *Animator) Tick() {
	for _, l := range a.reg.lights {
		if l.GrowthFrames > 0 {
			l.GrowthFrames--
			l.Radius += l.GrowthRate
		}
	}
}
