package minilight

import (
	"fmt"
	"strconv"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
)

// CommandName is the plugin command keyword handled by Interpreter.
const CommandName = "light"

// Interpreter applies textual light commands to a Registry.
//
//	light set O C          darkness opacity O (0-255) and hex color C
//	light add I R O        add a light: entity I, radius R, centre opacity O
//	light addf I R O       add a flickering light
//	light sub I            remove a light
//	light grow I R O T F   change a light and grow it to radius T over F frames
//	light I R O            change a light
//
// Entity id 0 is the player and a negative id is the event issuing the
// command.
type Interpreter struct {
	reg *Registry
}

// NewInterpreter creates an interpreter that mutates reg.
func NewInterpreter(reg *Registry) *Interpreter {
	return &Interpreter{reg: reg}
}

// ExecLine tokenizes a full command line such as "light add -1 150 100" and
// executes it on behalf of eventID. handled is false for commands other than
// "light".
func (in *Interpreter) ExecLine(line string, eventID int) (handled bool, err error) {
	fields, err := shlex.Split(line, true)
	if err != nil {
		return false, fmt.Errorf("tokenize command %q: %w", line, err)
	}
	if len(fields) == 0 {
		return false, nil
	}
	return in.Exec(fields[0], fields[1:], eventID)
}

// Exec executes command with args on behalf of eventID. Malformed numbers
// return an error without touching the registry; references to missing
// entities or lights are silently ignored.
func (in *Interpreter) Exec(command string, args []string, eventID int) (handled bool, err error) {
	if !strings.EqualFold(command, CommandName) {
		return false, nil
	}
	if len(args) == 0 {
		return true, fmt.Errorf("light: missing arguments")
	}

	p := argParser{args: args}
	switch strings.ToLower(args[0]) {
	case "set":
		opacity := p.int(1)
		color := p.str(2)
		if p.err != nil {
			return true, p.wrap("set")
		}
		in.reg.SetDarknessLayer(opacity, color)
	case "add", "addf":
		id := p.entity(1, eventID)
		radius := p.float(2)
		opacity := p.int(3)
		if p.err != nil {
			return true, p.wrap(args[0])
		}
		in.reg.AddLight(id, radius, opacity, strings.EqualFold(args[0], "addf"))
	case "sub":
		id := p.entity(1, eventID)
		if p.err != nil {
			return true, p.wrap("sub")
		}
		in.reg.RemoveLight(id)
	case "grow":
		id := p.entity(1, eventID)
		radius := p.float(2)
		opacity := p.int(3)
		target := p.float(4)
		frames := p.int(5)
		if p.err != nil {
			return true, p.wrap("grow")
		}
		in.reg.ChangeLight(id, radius, opacity, false, target, frames)
	default:
		id := p.entity(0, eventID)
		radius := p.float(1)
		opacity := p.int(2)
		if p.err != nil {
			return true, p.wrap("change")
		}
		in.reg.ChangeLight(id, radius, opacity, false, 0, 0)
	}
	return true, nil
}

// argParser reads positional arguments, keeping the first failure.
type argParser struct {
	args []string
	err  error
}

func (p *argParser) str(i int) string {
	if i >= len(p.args) {
		if p.err == nil {
			p.err = fmt.Errorf("missing argument %d", i)
		}
		return ""
	}
	return p.args[i]
}

func (p *argParser) float(i int) float64 {
	s := p.str(i)
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("argument %d: %w", i, err)
		return 0
	}
	return v
}

// int parses a number and truncates it toward zero.
func (p *argParser) int(i int) int {
	return int(p.float(i))
}

// entity parses an entity id, mapping negative ids to the issuing event.
func (p *argParser) entity(i int, eventID int) int {
	id := p.int(i)
	if id < 0 {
		return eventID
	}
	return id
}

func (p *argParser) wrap(sub string) error {
	return fmt.Errorf("light %s: %w", sub, p.err)
}

// EventCommand is one entry of an event page's command list.
type EventCommand struct {
	Code       int
	Parameters []string
}

// Comment command codes: a comment's first line and its continuation lines.
const (
	CodeComment     = 108
	CodeCommentMore = 408
)

// EventComments collects the text of every comment line in list.
func EventComments(list []EventCommand) []string {
	var comments []string
	for _, c := range list {
		if (c.Code == CodeComment || c.Code == CodeCommentMore) && len(c.Parameters) > 0 {
			comments = append(comments, c.Parameters[0])
		}
	}
	return comments
}

// Directive is a light declared in event metadata: "light R O" or "lightf R O".
type Directive struct {
	Radius  float64
	Opacity int
	Flicker bool
}

// ParseDirective returns the first light directive among comments. Matching
// is a case-insensitive substring search for "light "; missing or malformed
// numbers read as 0.
func ParseDirective(comments []string) (Directive, bool) {
	for _, c := range comments {
		if !strings.Contains(strings.ToLower(c), "light ") {
			continue
		}
		fields, err := shlex.Split(c, false)
		if err != nil || len(fields) == 0 {
			fields = strings.Fields(c)
		}
		d := Directive{Flicker: strings.ToLower(fields[0]) == "lightf"}
		if len(fields) > 1 {
			d.Radius, _ = strconv.ParseFloat(fields[1], 64)
		}
		if len(fields) > 2 {
			o, _ := strconv.ParseFloat(fields[2], 64)
			d.Opacity = int(o)
		}
		return d, true
	}
	return Directive{}, false
}

// SetupEventLight re-derives an event's light from its page comments: any
// existing light is removed, and a directive, if present, adds a new one.
// Call it whenever the event's active page changes.
func SetupEventLight(reg *Registry, eventID int, comments []string) {
	reg.RemoveLight(eventID)
	d, ok := ParseDirective(comments)
	if !ok {
		return
	}
	reg.AddLight(eventID, d.Radius, d.Opacity, d.Flicker)
}
