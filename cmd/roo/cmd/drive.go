package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/drive"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/joystick"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

var (
	driveWaitFlag   bool
	driveDryRunFlag bool
)

const joystickRetryInterval = time.Second

func init() {
	RootCmd.AddCommand(driveCmd)
	driveCmd.Flags().BoolVarP(&driveWaitFlag, "wait", "w", false, "wait for a joystick to be connected instead of exiting")
	driveCmd.Flags().BoolVarP(&driveDryRunFlag, "dry-run", "n", false, "log pulse widths instead of driving the PWM hardware")
}

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Drive the rover and gimbal from a joystick",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		return runDrive(driveWaitFlag, driveDryRunFlag)
	},
}

// openJoystick opens the device, or with wait keeps trying every second
// until it appears or the context is done.
func openJoystick(ctx context.Context, device string, wait bool) (*joystick.Joystick, error) {
	firstLog := true
	for {
		j, err := joystick.NewJoystick(device)
		if err == nil {
			log.Infof("Opened joystick %s", device)
			return j, nil
		}
		if !wait {
			return nil, err
		}
		if firstLog {
			log.Infof("Waiting for joystick: %v", err)
			firstLog = false
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(joystickRetryInterval):
		}
	}
}

// statusLine formats the live readout shown on a terminal.
func statusLine(s drive.Snapshot) string {
	return fmt.Sprintf("L: %+.2f R: %+.2f | %-17s | yaw %4d pitch %4d | left %4d right %4d",
		s.LeftAxis, s.RightAxis, s.Hat, s.Yaw, s.Pitch, s.Left, s.Right)
}

func runDrive(wait, dryRun bool) error {
	cfg, err := loadConfig(dryRun)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	j, err := openJoystick(ctx, cfg.Joystick.Device, wait)
	if errors.Is(err, joystick.ErrNoJoystick) {
		fmt.Println("No joystick connected")
		return err
	}
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Exiting...")
			return nil
		}
		return fmt.Errorf("opening joystick: %w", err)
	}

	d, err := pwm.Open(cfg.PWM)
	if err != nil {
		_ = j.Close()
		return err
	}
	defer d.Close()

	m := metrics.New()
	out, err := drive.OpenOutputs(d, cfg.Channels, m)
	if err != nil {
		_ = j.Close()
		return err
	}

	state := &joystick.State{}
	mode := drive.NewJoystickMode(cfg, state, out)
	mode.Metrics = m
	log.Infof("Starting %s", mode.Name())

	svc := newServices(cfg, m, mode.Name())
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	mode.Observer = func(s drive.Snapshot) {
		svc.observe(s)
		if tty {
			fmt.Printf("\r%s", statusLine(s))
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return joystick.Pump(ctx, j, state)
	})
	eg.Go(func() error {
		// Unblocks the pump's pending read.
		<-ctx.Done()
		return j.Close()
	})
	svc.start(ctx, eg)
	eg.Go(func() error {
		return mode.Run(ctx)
	})

	err = eg.Wait()
	svc.stop()
	if tty {
		fmt.Println()
	}
	log.Info("Exiting...")
	return err
}
