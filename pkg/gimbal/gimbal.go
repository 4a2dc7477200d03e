package gimbal

import (
	"fmt"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

const DefaultStep = 50

// Hat is a d-pad reading.  Each axis is in {-1, 0, 1}; Y is +1 for up.
type Hat struct {
	X, Y int
}

var (
	HatNeutral   = Hat{0, 0}
	HatUp        = Hat{0, 1}
	HatDown      = Hat{0, -1}
	HatLeft      = Hat{-1, 0}
	HatRight     = Hat{1, 0}
	HatUpRight   = Hat{1, 1}
	HatUpLeft    = Hat{-1, 1}
	HatDownRight = Hat{1, -1}
	HatDownLeft  = Hat{-1, -1}
)

type move struct {
	yaw, pitch int
}

// Unit moves, scaled by the gimbal's step.  Anything not in the table
// (including neutral) leaves the gimbal alone.
var moves = map[Hat]move{
	HatUp:        {0, 1},
	HatDown:      {0, -1},
	HatLeft:      {-1, 0},
	HatRight:     {1, 0},
	HatUpRight:   {1, 1},
	HatUpLeft:    {-1, 1},
	HatDownRight: {1, -1},
	HatDownLeft:  {-1, -1},
}

var hatNames = map[Hat]string{
	HatUp:        "DPad Up",
	HatDown:      "DPad Down",
	HatLeft:      "DPad Left",
	HatRight:     "DPad Right",
	HatUpRight:   "DPad Up-Right",
	HatUpLeft:    "DPad Up-Left",
	HatDownRight: "DPad Down-Right",
	HatDownLeft:  "DPad Down-Left",
}

func (h Hat) String() string {
	if name, ok := hatNames[h]; ok {
		return name
	}
	return "DPad Not Pressed"
}

// Gimbal holds the yaw and pitch pulse widths.  It is owned by a single loop
// and is not safe for concurrent use.
type Gimbal struct {
	Yaw, Pitch int

	Step int
	// Clamp keeps both registers within the conventional pulse band.  Off,
	// repeated deflection moves them without limit.
	Clamp bool
}

func New(step int, clamp bool) *Gimbal {
	if step <= 0 {
		step = DefaultStep
	}
	return &Gimbal{
		Yaw:   pulse.NeutralPulse,
		Pitch: pulse.NeutralPulse,
		Step:  step,
		Clamp: clamp,
	}
}

// ApplyHat moves the gimbal one step in the direction of the hat and
// reports whether either register changed.
func (g *Gimbal) ApplyHat(h Hat) bool {
	m, ok := moves[h]
	if !ok {
		return false
	}
	yaw := g.Yaw + m.yaw*g.Step
	pitch := g.Pitch + m.pitch*g.Step
	if g.Clamp {
		yaw = pulse.Clamp(yaw)
		pitch = pulse.Clamp(pitch)
	}
	changed := yaw != g.Yaw || pitch != g.Pitch
	g.Yaw, g.Pitch = yaw, pitch
	return changed
}

func (g *Gimbal) Reset() {
	g.Yaw = pulse.NeutralPulse
	g.Pitch = pulse.NeutralPulse
}

func (g *Gimbal) String() string {
	return fmt.Sprintf("yaw=%d pitch=%d", g.Yaw, g.Pitch)
}
