package drive

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

// JoystickMode drives the rover from a gamepad: one stick axis per drive
// side (tank style) and the d-pad nudging the gimbal.
type JoystickMode struct {
	input Input
	out   Outputs

	curve                   pulse.Curve
	leftAxis, rightAxis     int
	invertLeft, invertRight bool
	recenterButton          int
	interval                time.Duration
	neutralOnExit           bool

	// Owned by the loop goroutine.
	gimbal *gimbal.Gimbal

	Stats    *LoopStats
	Metrics  *metrics.Metrics
	Observer func(Snapshot)
}

func NewJoystickMode(cfg *config.Config, input Input, out Outputs) *JoystickMode {
	return &JoystickMode{
		input:          input,
		out:            out,
		curve:          cfg.AxisCurve,
		leftAxis:       cfg.Joystick.LeftAxis,
		rightAxis:      cfg.Joystick.RightAxis,
		invertLeft:     cfg.Joystick.InvertLeft,
		invertRight:    cfg.Joystick.InvertRight,
		recenterButton: cfg.Joystick.RecenterButton,
		interval:       cfg.Interval,
		neutralOnExit:  cfg.NeutralOnExit,
		gimbal:         gimbal.New(cfg.Gimbal.Step, cfg.Gimbal.Clamp),
		Stats:          NewLoopStats(cfg.Interval),
	}
}

func (m *JoystickMode) Name() string {
	return "Joystick mode"
}

// Start writes the initial positions: gimbal centred, drive stopped.
func (m *JoystickMode) Start() {
	m.out.setAll(m.gimbal.Yaw, m.gimbal.Pitch, pulse.NeutralPulse, pulse.NeutralPulse)
}

// Tick reads the controller once and writes all four outputs.
func (m *JoystickMode) Tick() Snapshot {
	leftAxis := axis(m.input, m.leftAxis, m.invertLeft)
	rightAxis := axis(m.input, m.rightAxis, m.invertRight)
	hat := m.input.Hat()

	left := m.curve.Pulse(leftAxis)
	right := m.curve.Pulse(rightAxis)
	switch {
	case m.recenterButton >= 0 && m.input.Button(m.recenterButton):
		// Held recentre wins over the d-pad.
		if m.gimbal.Yaw != pulse.NeutralPulse || m.gimbal.Pitch != pulse.NeutralPulse {
			m.gimbal.Reset()
			log.Debugf("Recentred gimbal")
		}
	case m.gimbal.ApplyHat(hat):
		log.Debugf("%s: %s", hat, m.gimbal)
	}

	m.out.setAll(m.gimbal.Yaw, m.gimbal.Pitch, left, right)

	snap := Snapshot{
		Yaw:       m.gimbal.Yaw,
		Pitch:     m.gimbal.Pitch,
		Left:      left,
		Right:     right,
		LeftAxis:  leftAxis,
		RightAxis: rightAxis,
		Hat:       hat,
	}
	if m.Observer != nil {
		m.Observer(snap)
	}
	return snap
}

// Run writes the initial positions then ticks until the context is done.
func (m *JoystickMode) Run(ctx context.Context) error {
	m.Start()
	loop(ctx, m.interval, m.Stats, m.Metrics, func() { m.Tick() })
	if m.neutralOnExit {
		set("left", m.out.Left, pulse.NeutralPulse)
		set("right", m.out.Right, pulse.NeutralPulse)
	}
	log.Infof("%s stopped: %s", m.Name(), m.Stats)
	return nil
}

func axis(in Input, n int, invert bool) float64 {
	v := in.Axis(n)
	if invert {
		return -v
	}
	return v
}
