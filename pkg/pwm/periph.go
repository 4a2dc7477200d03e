package pwm

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

// Frequency matches Period.
const Frequency = 50 * physic.Hertz

// Periph drives hardware PWM pins through the periph host drivers.  Channel
// ids are BCM GPIO numbers.
type Periph struct{}

func NewPeriph() (*Periph, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise periph: %w", err)
	}
	return &Periph{}, nil
}

func (p *Periph) Channel(id int) (Channel, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", id))
	if pin == nil {
		return nil, &ChannelError{Channel: id, Op: "open", Err: fmt.Errorf("no such pin")}
	}
	return &periphChannel{id: id, pin: pin}, nil
}

func (p *Periph) Close() error {
	return nil
}

type periphChannel struct {
	id  int
	pin gpio.PinIO
}

func (c *periphChannel) Set(pulseMicroseconds int) error {
	if err := c.pin.PWM(PulseToDuty(pulseMicroseconds), Frequency); err != nil {
		return &ChannelError{Channel: c.id, Op: "set", Err: err}
	}
	return nil
}

// PulseToDuty converts a pulse width to a duty cycle of one 50Hz frame.
func PulseToDuty(pulseMicroseconds int) gpio.Duty {
	d := int64(pulseMicroseconds) * int64(gpio.DutyMax) / int64(Period/time.Microsecond)
	if d < 0 {
		return 0
	}
	if d > int64(gpio.DutyMax) {
		return gpio.DutyMax
	}
	return gpio.Duty(d)
}
