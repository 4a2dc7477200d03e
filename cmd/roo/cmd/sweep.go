package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/drive"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

var sweepDryRunFlag bool

func init() {
	RootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().BoolVarP(&sweepDryRunFlag, "dry-run", "n", false, "log pulse widths instead of driving the PWM hardware")
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the right drive channel back and forth through the speed curve",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		return runSweep(sweepDryRunFlag)
	},
}

func runSweep(dryRun bool) error {
	cfg, err := loadConfig(dryRun)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	d, err := pwm.Open(cfg.PWM)
	if err != nil {
		return err
	}
	defer d.Close()

	m := metrics.New()
	out, err := drive.OpenOutputs(d, cfg.Channels, m)
	if err != nil {
		return err
	}
	mode := drive.NewSweepMode(cfg, out)
	mode.Metrics = m
	log.Infof("Starting %s", mode.Name())

	svc := newServices(cfg, m, mode.Name())
	mode.Observer = svc.observe

	eg, ctx := errgroup.WithContext(ctx)
	svc.start(ctx, eg)
	eg.Go(func() error {
		return mode.Run(ctx)
	})

	err = eg.Wait()
	svc.stop()
	log.Info("Program stopped")
	return err
}
