package drive

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

// Bench positions written before a sweep starts.
const (
	SweepInitialYaw   = 500
	SweepInitialPitch = 1000
)

// Sweep generates the synthetic input: 0 up to 1023, then 1024 down to 1,
// repeating.
type Sweep struct {
	pos  int
	down bool
}

func (s *Sweep) Next() int {
	v := s.pos
	if s.down {
		s.pos--
		if s.pos == 0 {
			s.down = false
		}
	} else {
		s.pos++
		if s.pos == pulse.SweepResolution {
			s.down = true
		}
	}
	return v
}

// SweepMode runs the right drive channel back and forth through the sweep
// curve, for checking an ESC or servo on the bench.
type SweepMode struct {
	out           Outputs
	curve         pulse.Curve
	interval      time.Duration
	neutralOnExit bool
	sweep         Sweep

	Stats    *LoopStats
	Metrics  *metrics.Metrics
	Observer func(Snapshot)
}

func NewSweepMode(cfg *config.Config, out Outputs) *SweepMode {
	return &SweepMode{
		out:           out,
		curve:         cfg.SweepCurve,
		interval:      cfg.Interval,
		neutralOnExit: cfg.NeutralOnExit,
		Stats:         NewLoopStats(cfg.Interval),
	}
}

func (m *SweepMode) Name() string {
	return "Sweep mode"
}

func (m *SweepMode) Start() {
	m.out.setAll(SweepInitialYaw, SweepInitialPitch, pulse.NeutralPulse, pulse.NeutralPulse)
}

func (m *SweepMode) Tick() Snapshot {
	x := m.sweep.Next()
	p := m.curve.Pulse(pulse.Normalize10Bit(x))
	log.Debugf("Sweep position=%d pulse=%d", x, p)
	set("right", m.out.Right, p)

	snap := Snapshot{
		Yaw:    SweepInitialYaw,
		Pitch:  SweepInitialPitch,
		Left:   pulse.NeutralPulse,
		Right:  p,
		Sample: x,
	}
	if m.Observer != nil {
		m.Observer(snap)
	}
	return snap
}

func (m *SweepMode) Run(ctx context.Context) error {
	m.Start()
	loop(ctx, m.interval, m.Stats, m.Metrics, func() { m.Tick() })
	if m.neutralOnExit {
		set("left", m.out.Left, pulse.NeutralPulse)
		set("right", m.out.Right, pulse.NeutralPulse)
	}
	log.Infof("%s stopped: %s", m.Name(), m.Stats)
	return nil
}
