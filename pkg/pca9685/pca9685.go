package pca9685

import (
	"fmt"
	"time"

	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	NumPorts = 16

	PWMPeriod = 20 * time.Millisecond
	PWMSteps  = 4096
	PWMMax    = PWMSteps - 1
)

type Interface interface {
	Configure() error
	SetPulse(port int, width time.Duration) error
	Close() error
}

type registers interface {
	WriteReg(reg byte, buf []byte) error
	Close() error
}

type PCA9685 struct {
	dev registers
}

func New(deviceFile string) (*PCA9685, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, err
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable, with register auto-increment so a port's four registers go in
	// one write.
	err = p.dev.WriteReg(RegMode1, []byte{0xa1})
	return
}

// Ticks converts a pulse width to an off-time count within one frame.
func Ticks(width time.Duration) uint16 {
	if width <= 0 {
		return 0
	}
	t := int64(width) * PWMSteps / int64(PWMPeriod)
	if t > PWMMax {
		return PWMMax
	}
	return uint16(t)
}

func (p *PCA9685) SetPulse(port int, width time.Duration) error {
	if port < 0 || port >= NumPorts {
		return fmt.Errorf("port %d out of range", port)
	}
	pwmValue := Ticks(width)
	addr := RegLEDBase + port*4

	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(pwmValue & 0xff), byte(pwmValue >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}
