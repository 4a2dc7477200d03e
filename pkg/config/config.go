package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/joystick"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

// DefaultPath is read when no config file is given, if it exists.
const DefaultPath = "/etc/roo.yaml"

// ChannelConfig assigns PWM channel ids (GPIO numbers for the sysfs and
// periph backends, board ports otherwise) to the rover's outputs.
type ChannelConfig struct {
	Yaw   int `yaml:"yaw"`
	Pitch int `yaml:"pitch"`
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

type GimbalConfig struct {
	Step  int  `yaml:"step"`
	Clamp bool `yaml:"clamp"`
}

type JoystickConfig struct {
	Device      string `yaml:"device"`
	LeftAxis    int    `yaml:"left_axis"`
	RightAxis   int    `yaml:"right_axis"`
	InvertLeft  bool   `yaml:"invert_left"`
	InvertRight bool   `yaml:"invert_right"`
	// Holding this button recentres the gimbal; -1 disables it.
	RecenterButton int `yaml:"recenter_button"`
}

type Config struct {
	PWM      pwm.Config     `yaml:"pwm"`
	Channels ChannelConfig  `yaml:"channels"`
	Interval time.Duration  `yaml:"interval"`
	Joystick JoystickConfig `yaml:"joystick"`
	Gimbal   GimbalConfig   `yaml:"gimbal"`

	SweepCurve pulse.Curve `yaml:"sweep_curve"`
	AxisCurve  pulse.Curve `yaml:"axis_curve"`

	// Write neutral to the drive channels when the loop stops.
	NeutralOnExit bool `yaml:"neutral_on_exit"`

	MonitoringPort int    `yaml:"monitoring_port"`
	Screen         string `yaml:"screen"`
	StartupSound   string `yaml:"startup_sound"`
}

// DefaultConfig reproduces the original rover wiring: Pi 5 hardware PWM on
// GPIO 12/13 (gimbal) and 18/19 (drive), 10ms loop.
func DefaultConfig() *Config {
	return &Config{
		PWM: pwm.DefaultConfig(),
		Channels: ChannelConfig{
			Yaw:   12,
			Pitch: 13,
			Left:  18,
			Right: 19,
		},
		Interval: 10 * time.Millisecond,
		Joystick: JoystickConfig{
			Device:         joystick.DefaultDevice,
			LeftAxis:       joystick.AxisLStickY,
			RightAxis:      joystick.AxisRStickX,
			InvertRight:    true,
			RecenterButton: joystick.ButtonY,
		},
		Gimbal: GimbalConfig{
			Step: gimbal.DefaultStep,
		},
		SweepCurve: pulse.SweepCurve,
		AxisCurve:  pulse.AxisCurve,
	}
}

// Validate config is sane
func (c *Config) Validate() error {
	if err := c.PWM.Validate(); err != nil {
		return fmt.Errorf("pwm: %w", err)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}
	if c.Gimbal.Step <= 0 {
		return fmt.Errorf("gimbal step must be greater than zero")
	}
	if c.Joystick.Device == "" {
		return fmt.Errorf("joystick device must be set")
	}
	for name, axis := range map[string]int{"left_axis": c.Joystick.LeftAxis, "right_axis": c.Joystick.RightAxis} {
		if axis < 0 || axis > joystick.AxisDPadY {
			return fmt.Errorf("joystick %s must be within [0, %d]", name, joystick.AxisDPadY)
		}
	}
	if b := c.Joystick.RecenterButton; b < -1 || b >= joystick.MaxButtons {
		return fmt.Errorf("joystick recenter_button must be -1 or within [0, %d)", joystick.MaxButtons)
	}
	if err := c.SweepCurve.Validate(); err != nil {
		return fmt.Errorf("sweep_curve: %w", err)
	}
	if err := c.AxisCurve.Validate(); err != nil {
		return fmt.Errorf("axis_curve: %w", err)
	}
	if c.MonitoringPort < 0 {
		return fmt.Errorf("monitoring_port must be 0 or positive")
	}
	return nil
}

// ReadConfig layers the YAML file at path over the defaults.  An empty path
// reads DefaultPath when it exists.  JOYSTICK_DEVICE overrides the joystick
// device.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		log.Debugf("Read config from %s", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		log.Debugf("No config at %s, using defaults", path)
	default:
		return nil, err
	}
	c.Joystick.Device = joystick.DevicePath(c.Joystick.Device)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
