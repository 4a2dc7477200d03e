package joystick

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
)

const (
	maxAxes    = 16
	MaxButtons = 32
)

// State is the latest reading of every axis and button, updated by the event
// pump and polled by the control loop.
type State struct {
	lock    sync.Mutex
	axes    [maxAxes]int16
	buttons [MaxButtons]bool
}

func (s *State) Update(e *Event) {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch e.Type {
	case EventTypeAxis:
		if int(e.Number) < len(s.axes) {
			s.axes[e.Number] = e.Value
		}
	case EventTypeButton:
		if int(e.Number) < len(s.buttons) {
			s.buttons[e.Number] = e.Value != 0
		}
	}
}

// Axis returns the axis position in [-1, 1].  Unknown axes read as 0.
func (s *State) Axis(n int) float64 {
	if n < 0 || n >= maxAxes {
		return 0
	}
	s.lock.Lock()
	v := s.axes[n]
	s.lock.Unlock()
	return normalise(v)
}

func (s *State) Button(n int) bool {
	if n < 0 || n >= MaxButtons {
		return false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.buttons[n]
}

// Hat reads the d-pad, which the driver reports as a pair of axes.
func (s *State) Hat() gimbal.Hat {
	s.lock.Lock()
	x, y := s.axes[AxisDPadX], s.axes[AxisDPadY]
	s.lock.Unlock()
	// Up is negative on the axis but positive on the hat.
	return gimbal.Hat{X: sign(x), Y: -sign(y)}
}

func normalise(v int16) float64 {
	f := float64(v) / AxisMax
	if f < -1 {
		return -1
	}
	return f
}

func sign(v int16) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Pump reads events from the joystick into the state until reading fails or
// the context is done (which is not an error).  Closing the joystick
// unblocks a pending read.
func Pump(ctx context.Context, j *Joystick, state *State) error {
	for ctx.Err() == nil {
		event, err := j.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Errorf("Failed to read from joystick: %v", err)
			return err
		}
		log.Debugf("Joy: %s", event)
		state.Update(event)
	}
	return nil
}
