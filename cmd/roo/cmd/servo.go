package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

var servoDryRunFlag bool

func init() {
	RootCmd.AddCommand(servoCmd)
	servoCmd.Flags().BoolVarP(&servoDryRunFlag, "dry-run", "n", false, "log pulse widths instead of driving the PWM hardware")
}

var servoCmd = &cobra.Command{
	Use:   "servo",
	Short: "Interactively position servos on the configured PWM backend",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		cfg, err := loadConfig(servoDryRunFlag)
		if err != nil {
			return err
		}
		d, err := pwm.Open(cfg.PWM)
		if err != nil {
			return err
		}
		defer d.Close()
		return runServo(os.Stdin, os.Stdout, d)
	},
}

const servoUsage = `Commands:
    s <ch> <pulse>   # Set channel to a pulse width in microseconds
    a <ch> <angle>   # Set channel to an angle in degrees, 0-180
    q                # Quit

<ch>     Channel id for the backend (GPIO number for sysfs/periph)
Pulses are clamped to 500-2500us.
`

var errQuit = errors.New("quit")

type servoCommand struct {
	channel int
	pulse   int
}

func parseServoLine(line string) (servoCommand, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return servoCommand{}, fmt.Errorf("empty command")
	}
	switch parts[0] {
	case "q":
		return servoCommand{}, errQuit
	case "s", "a":
	default:
		return servoCommand{}, fmt.Errorf("unknown command %q", parts[0])
	}
	if len(parts) < 3 {
		return servoCommand{}, fmt.Errorf("not enough parameters")
	}
	ch, err := strconv.Atoi(parts[1])
	if err != nil {
		return servoCommand{}, fmt.Errorf("expected int, not %q", parts[1])
	}
	v, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return servoCommand{}, fmt.Errorf("expected number, not %q", parts[2])
	}
	p := int(v)
	if parts[0] == "a" {
		if v < 0 || v > pulse.MaxAngle {
			return servoCommand{}, fmt.Errorf("expected 0 <= angle <= %d", pulse.MaxAngle)
		}
		p = pulse.AngleToPulse(v)
	}
	return servoCommand{channel: ch, pulse: pulse.Clamp(p)}, nil
}

func runServo(in io.Reader, out io.Writer, d pwm.Driver) error {
	fmt.Fprintln(out, servoUsage)
	channels := map[int]pwm.Channel{}
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "> ")
		line, readErr := reader.ReadString('\n')
		if strings.TrimSpace(line) == "" {
			if readErr != nil {
				fmt.Fprintln(out)
				return nil
			}
			continue
		}
		c, perr := parseServoLine(line)
		if errors.Is(perr, errQuit) {
			return nil
		}
		if perr != nil {
			fmt.Fprintln(out, perr)
		} else {
			ch, ok := channels[c.channel]
			if !ok {
				var err error
				ch, err = d.Channel(c.channel)
				if err != nil {
					return err
				}
				channels[c.channel] = ch
			}
			fmt.Fprintf(out, "Setting channel %d to %dus\n", c.channel, c.pulse)
			if err := ch.Set(c.pulse); err != nil {
				log.Errorf("Failed to set channel %d: %v", c.channel, err)
			}
		}
		if readErr != nil {
			return nil
		}
	}
}
