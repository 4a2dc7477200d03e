package pwm

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

const (
	maestroSetTarget = 0x84
	MaestroChannels  = 24

	// Targets are 14 bits of quarter microseconds.
	maestroMaxTarget = 0x3fff
)

// Maestro drives a Pololu Maestro USB servo controller using the compact
// serial protocol.  Channel ids are Maestro channels.
type Maestro struct {
	port io.WriteCloser
}

func NewMaestro(portName string, baud int) (*Maestro, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}
	return FromWriter(port), nil
}

// FromWriter talks to a Maestro over an already open stream.
func FromWriter(w io.WriteCloser) *Maestro {
	return &Maestro{port: w}
}

func (m *Maestro) Channel(id int) (Channel, error) {
	if id < 0 || id >= MaestroChannels {
		return nil, &ChannelError{Channel: id, Op: "open", Err: fmt.Errorf("expected 0 <= channel < %d", MaestroChannels)}
	}
	return &maestroChannel{id: id, m: m}, nil
}

func (m *Maestro) Close() error {
	return m.port.Close()
}

// SetTargetCommand encodes a compact protocol Set Target command.  The target
// is in quarter microseconds, sent as two 7 bit bytes, and saturates at the
// largest target the Maestro accepts.
func SetTargetCommand(channel, pulseMicroseconds int) []byte {
	target := min(max(pulseMicroseconds, 0)*4, maestroMaxTarget)
	return []byte{
		maestroSetTarget,
		byte(channel),
		byte(target & 0x7f),
		byte((target >> 7) & 0x7f),
	}
}

type maestroChannel struct {
	id int
	m  *Maestro
}

func (c *maestroChannel) Set(pulseMicroseconds int) error {
	_, err := c.m.port.Write(SetTargetCommand(c.id, pulseMicroseconds))
	if err != nil {
		return &ChannelError{Channel: c.id, Op: "set", Err: err}
	}
	return nil
}
