package minilight

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a lighting script.
type scriptStep struct {
	Action string `yaml:"action"`
	// Line is the command for "command" steps, e.g. "light add 0 150 100".
	Line string `yaml:"line,omitempty"`
	// Event is the issuing event id for "command" steps.
	Event int `yaml:"event,omitempty"`
	// Frames is the tick count for "wait" steps.
	Frames int `yaml:"frames,omitempty"`
	// Label names a "screenshot" step.
	Label string `yaml:"label,omitempty"`
	// Layer makes a "screenshot" step capture the light layer alone.
	Layer bool `yaml:"layer,omitempty"`
	// Slot names the save slot for "save" and "load" steps.
	Slot string `yaml:"slot,omitempty"`
}

// script is the top-level structure of a script document.
type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// ScriptRunner sequences light commands, waits, saves and screenshots across
// frames. Attach to a Session via SetScript; one step runs per Update.
//
//	steps:
//	  - {action: command, line: "light set 200 #000000"}
//	  - {action: command, line: "light grow 0 50 80 200 60"}
//	  - {action: wait, frames: 60}
//	  - {action: screenshot, label: grown}
//	  - {action: screenshot, label: grown, layer: true}
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadScript parses a YAML (or JSON) script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse lighting script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse lighting script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "command", "wait", "screenshot", "save", "load", "newgame":
		default:
			return nil, fmt.Errorf("parse lighting script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns every error raised by executed steps, joined.
func (r *ScriptRunner) Err() error {
	return errors.Join(r.errs...)
}

// step advances the runner by one frame. Called from Session.Update before
// the animator tick.
func (r *ScriptRunner) step(s *Session) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "command":
		_, err = s.Exec(st.Line, st.Event)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "screenshot":
		if st.Layer {
			s.ScreenshotLayer(st.Label)
		} else {
			s.Screenshot(st.Label)
		}
	case "save":
		err = s.Save(st.Slot)
	case "load":
		err = s.Load(st.Slot)
	case "newgame":
		s.NewGame()
	}
	if err != nil {
		debugf(s.cfg.Debug, "script step %d (%s): %v", r.cursor-1, st.Action, err)
		r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
