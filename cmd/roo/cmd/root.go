package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

// RootCmd is the main entry point.
var RootCmd = &cobra.Command{
	Use:   "roo",
	Short: "Roo rover drive and gimbal controller",
}

// flags
var rootVerboseFlag bool
var rootConfigFlag string

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVarP(&rootConfigFlag, "config", "c", "", fmt.Sprintf("path to the config file (default %s if present)", config.DefaultPath))
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the config named by --config.  A dry run swaps the PWM
// backend for the logging one.
func loadConfig(dryRun bool) (*config.Config, error) {
	cfg, err := config.ReadConfig(rootConfigFlag)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if dryRun {
		cfg.PWM.Backend = pwm.BackendDummy
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case s := <-signals:
			log.Debugf("Signal: %v", s)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx, cancel
}
