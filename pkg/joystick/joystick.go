package joystick

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// Axis layout of an Xbox style pad under the Linux joystick driver:
//
//    L stick l/r = 0 (left = -32767; right = +32767)
//            u/d = 1 (up = -32767; down = +32767)
//    LT          = 2 (unpressed = -32767; fully-pressed = 32767)
//    R stick l/r = 3
//            u/d = 4
//    RT          = 5
//    D-pad   l/r = 6
//            u/d = 7 (up = -32767; down = +32767)

type EventType uint8

const (
	EventTypeButton = 1
	EventTypeAxis   = 2

	// Set on the synthetic events the driver sends when the device is
	// opened, reporting the initial state.
	eventTypeInit = 0x80
)

const (
	AxisLStickX = 0
	AxisLStickY = 1
	AxisLT      = 2
	AxisRStickX = 3
	AxisRStickY = 4
	AxisRT      = 5
	AxisDPadX   = 6
	AxisDPadY   = 7

	ButtonA     = 0
	ButtonB     = 1
	ButtonX     = 2
	ButtonY     = 3
	ButtonLB    = 4
	ButtonRB    = 5
	ButtonBack  = 6
	ButtonStart = 7

	AxisMax = 32767

	DefaultDevice = "/dev/input/js0"
)

var ErrNoJoystick = errors.New("no joystick connected")

func (e EventType) String() string {
	switch e {
	case EventTypeAxis:
		return "axis"
	case EventTypeButton:
		return "button"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

type Joystick struct {
	device io.ReadCloser

	deviceEpoch    uint32
	wallclockEpoch time.Time
}

type rawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

type Event struct {
	Time   time.Time
	Value  int16
	Type   EventType
	Number uint8
	Init   bool
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(%v)=%v", e.Type, e.Number, e.Value)
}

// DevicePath picks the joystick device: JOYSTICK_DEVICE when set, then the
// configured device, then DefaultDevice.
func DevicePath(configured string) string {
	if jDev := os.Getenv("JOYSTICK_DEVICE"); jDev != "" {
		return jDev
	}
	if configured != "" {
		return configured
	}
	return DefaultDevice
}

func NewJoystick(device string) (*Joystick, error) {
	f, err := os.Open(device)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoJoystick, device)
	}
	if err != nil {
		return nil, err
	}
	return FromReader(f), nil
}

// FromReader reads js events from an already open stream.
func FromReader(r io.ReadCloser) *Joystick {
	return &Joystick{
		device: r,
	}
}

func (j *Joystick) ReadEvent() (*Event, error) {
	var rawEvent rawEvent
	err := binary.Read(j.device, binary.LittleEndian, &rawEvent)
	if err != nil {
		return nil, err
	}

	if j.deviceEpoch == 0 {
		j.deviceEpoch = rawEvent.Time
		j.wallclockEpoch = time.Now()
	}

	return &Event{
		Time:   j.wallclockEpoch.Add(time.Duration(rawEvent.Time-j.deviceEpoch) * time.Millisecond),
		Value:  rawEvent.Value,
		Type:   EventType(rawEvent.Type & 0x7f),
		Number: rawEvent.Number,
		Init:   rawEvent.Type&eventTypeInit != 0,
	}, nil
}

func (j *Joystick) Close() error {
	return j.device.Close()
}
