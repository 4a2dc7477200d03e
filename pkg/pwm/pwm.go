package pwm

import (
	"fmt"
	"time"
)

//go:generate mockgen -source=pwm.go -destination=pwm_mock.go -package=pwm

const (
	// Standard hobby servo/ESC frame: 50Hz.
	Period = 20 * time.Millisecond

	BackendSysfs   = "sysfs"
	BackendPeriph  = "periph"
	BackendPCA9685 = "pca9685"
	BackendMaestro = "maestro"
	BackendDummy   = "dummy"
)

// Channel drives one PWM output.
type Channel interface {
	// Set the high time of each frame, in microseconds.
	Set(pulseMicroseconds int) error
}

// Driver hands out channels on one piece of PWM hardware.
type Driver interface {
	Channel(id int) (Channel, error)
	Close() error
}

// ChannelError is returned by channels and drivers for failures on a
// particular output.
type ChannelError struct {
	Channel int
	Op      string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("pwm channel %d %s: %v", e.Channel, e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

type Config struct {
	Backend string `yaml:"backend"`

	// sysfs
	SysfsRoot string `yaml:"sysfs_root"`
	Chip      int    `yaml:"chip"`

	// pca9685
	I2CDevice string `yaml:"i2c_device"`

	// maestro
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

func DefaultConfig() Config {
	return Config{
		Backend:    BackendSysfs,
		SysfsRoot:  "/sys/class/pwm",
		Chip:       0,
		I2CDevice:  "/dev/i2c-1",
		SerialPort: "/dev/ttyACM0",
		BaudRate:   115200,
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSysfs:
		if c.SysfsRoot == "" {
			return fmt.Errorf("sysfs_root must be set for the %q backend", c.Backend)
		}
		if c.Chip < 0 {
			return fmt.Errorf("chip must be 0 or positive")
		}
	case BackendPCA9685:
		if c.I2CDevice == "" {
			return fmt.Errorf("i2c_device must be set for the %q backend", c.Backend)
		}
	case BackendMaestro:
		if c.SerialPort == "" {
			return fmt.Errorf("serial_port must be set for the %q backend", c.Backend)
		}
		if c.BaudRate <= 0 {
			return fmt.Errorf("baud_rate must be positive")
		}
	case BackendPeriph, BackendDummy:
	default:
		return fmt.Errorf("backend must be one of %q, %q, %q, %q or %q",
			BackendSysfs, BackendPeriph, BackendPCA9685, BackendMaestro, BackendDummy)
	}
	return nil
}

// Open connects to the PWM hardware selected by the config.
func Open(cfg Config) (Driver, error) {
	var (
		d   Driver
		err error
	)
	switch cfg.Backend {
	case BackendSysfs:
		d = NewSysfs(cfg.SysfsRoot, cfg.Chip)
	case BackendPeriph:
		d, err = NewPeriph()
	case BackendPCA9685:
		d, err = NewPCA9685(cfg.I2CDevice)
	case BackendMaestro:
		d, err = NewMaestro(cfg.SerialPort, cfg.BaudRate)
	case BackendDummy:
		d = Dummy()
	default:
		err = fmt.Errorf("unknown pwm backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
