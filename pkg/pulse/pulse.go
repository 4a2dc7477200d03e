package pulse

import (
	"fmt"
	"math"
)

// Pulse widths are in microseconds.  1500us is the hobby servo/ESC neutral
// (centred, or stopped for a speed controller).
const (
	NeutralPulse = 1500
	MinPulse     = 500
	MaxPulse     = 2500

	MaxAngle = 180

	// SweepResolution is the size of the 10-bit ADC style input range.
	SweepResolution = 1024
)

// Curve maps a normalised value in [-1, 1] onto a pulse width with the
// compensation nonlinearity applied.
type Curve struct {
	Amplitude float64 `yaml:"amplitude"`
	Damping   float64 `yaml:"damping"`
	Neutral   int     `yaml:"neutral"`
}

var (
	// SweepCurve is used for the synthetic sweep and raw ADC joysticks.
	SweepCurve = Curve{Amplitude: 1000, Damping: 1, Neutral: NeutralPulse}
	// AxisCurve is used for normalised gamepad axes; full deflection is
	// damped so the drive doesn't hit full speed.
	AxisCurve = Curve{Amplitude: 1000, Damping: 1.5, Neutral: NeutralPulse}
)

func (c Curve) Validate() error {
	if c.Amplitude <= 0 {
		return fmt.Errorf("amplitude must be positive")
	}
	if c.Damping <= 0 {
		return fmt.Errorf("damping must be positive")
	}
	if c.Neutral < MinPulse || c.Neutral > MaxPulse {
		return fmt.Errorf("neutral must be within [%d, %d]", MinPulse, MaxPulse)
	}
	return nil
}

// Pulse is not clamped: input outside [-1, 1] can produce a pulse outside
// the conventional band.
func (c Curve) Pulse(n float64) int {
	return int(Compensate(n)*c.Amplitude/c.Damping + float64(c.Neutral))
}

// Compensate squares the input while keeping its sign: fine control near the
// centre, fast response towards the ends of travel.
func Compensate(n float64) float64 {
	return n * math.Abs(n)
}

// Normalize10Bit converts [0, 1024] to [-1, 1].
func Normalize10Bit(x int) float64 {
	return float64(x)/(SweepResolution/2) - 1
}

func SpeedToPulse(x int) int {
	return SweepCurve.Pulse(Normalize10Bit(x))
}

func AxisToPulse(v float64) int {
	return AxisCurve.Pulse(v)
}

// AngleToPulse linearly maps [0, 180] degrees onto [500, 2500]us.
func AngleToPulse(angle float64) int {
	return int(MinPulse + (MaxPulse-MinPulse)*angle/MaxAngle)
}

func Clamp(p int) int {
	if p < MinPulse {
		return MinPulse
	}
	if p > MaxPulse {
		return MaxPulse
	}
	return p
}
