package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/joystick"
)

var joytestWaitFlag bool

func init() {
	RootCmd.AddCommand(joytestCmd)
	joytestCmd.Flags().BoolVarP(&joytestWaitFlag, "wait", "w", false, "wait for a joystick to be connected instead of exiting")
}

var joytestCmd = &cobra.Command{
	Use:   "joytest",
	Short: "Print joystick events and the derived d-pad direction",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		j, err := openJoystick(ctx, cfg.Joystick.Device, joytestWaitFlag)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			<-ctx.Done()
			_ = j.Close()
		}()

		var state joystick.State
		for ctx.Err() == nil {
			event, err := j.ReadEvent()
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				return fmt.Errorf("reading joystick: %w", err)
			}
			state.Update(event)
			suffix := ""
			if event.Init {
				suffix = " (init)"
			}
			fmt.Printf("%s%s %s\n", event, suffix, state.Hat())
		}
		log.Info("Exiting...")
		return nil
	},
}
