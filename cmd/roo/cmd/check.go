package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configured curves keep the servo band and neutral",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range runChecks(cfg) {
			if r.ok {
				fmt.Printf("%s %s\n", okString, r.msg)
			} else {
				fmt.Printf("%s %s\n", failString, r.msg)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d checks failed", failed)
		}
		return nil
	},
}

type checkResult struct {
	ok  bool
	msg string
}

func pass(format string, args ...any) checkResult {
	return checkResult{ok: true, msg: fmt.Sprintf(format, args...)}
}

func fail(format string, args ...any) checkResult {
	return checkResult{msg: fmt.Sprintf(format, args...)}
}

func inBand(p int) bool {
	return p >= pulse.MinPulse && p <= pulse.MaxPulse
}

func checkSweepCurve(c pulse.Curve) []checkResult {
	var res []checkResult
	center := c.Pulse(pulse.Normalize10Bit(pulse.SweepResolution / 2))
	if center == c.Neutral {
		res = append(res, pass("Sweep curve centre is %dus", center))
	} else {
		res = append(res, fail("Sweep curve centre is %s, expected %dus", color.RedString("%dus", center), c.Neutral))
	}

	prev := c.Pulse(pulse.Normalize10Bit(0))
	monotonic, bounded := true, inBand(prev)
	lo, hi := prev, prev
	for x := 1; x < pulse.SweepResolution; x++ {
		p := c.Pulse(pulse.Normalize10Bit(x))
		if p < prev {
			monotonic = false
		}
		bounded = bounded && inBand(p)
		lo, hi = min(lo, p), max(hi, p)
		prev = p
	}
	if monotonic {
		res = append(res, pass("Sweep curve never decreases"))
	} else {
		res = append(res, fail("Sweep curve decreases somewhere in [0, %d)", pulse.SweepResolution))
	}
	if bounded {
		res = append(res, pass("Sweep curve stays within [%d, %d]us", pulse.MinPulse, pulse.MaxPulse))
	} else {
		res = append(res, fail("Sweep curve spans %s, outside [%d, %d]us", color.RedString("[%d, %d]", lo, hi), pulse.MinPulse, pulse.MaxPulse))
	}
	return res
}

func checkAxisCurve(c pulse.Curve) []checkResult {
	var res []checkResult
	if p := c.Pulse(0); p == c.Neutral {
		res = append(res, pass("Axis curve centre is %dus", p))
	} else {
		res = append(res, fail("Axis curve centre is %s, expected %dus", color.RedString("%dus", p), c.Neutral))
	}
	for _, v := range []float64{-1, 1} {
		p := c.Pulse(v)
		if inBand(p) {
			res = append(res, pass("Axis curve at %+.0f is %dus", v, p))
		} else {
			res = append(res, fail("Axis curve at %+.0f is %s, outside [%d, %d]us", v, color.RedString("%dus", p), pulse.MinPulse, pulse.MaxPulse))
		}
	}
	return res
}

func checkAngles() []checkResult {
	var res []checkResult
	for _, a := range []struct {
		angle float64
		want  int
	}{
		{0, pulse.MinPulse},
		{45, 1000},
		{90, pulse.NeutralPulse},
		{pulse.MaxAngle, pulse.MaxPulse},
	} {
		if p := pulse.AngleToPulse(a.angle); p == a.want {
			res = append(res, pass("Angle %.0f is %dus", a.angle, p))
		} else {
			res = append(res, fail("Angle %.0f is %s, expected %dus", a.angle, color.RedString("%dus", p), a.want))
		}
	}
	return res
}

func runChecks(cfg *config.Config) []checkResult {
	var res []checkResult
	res = append(res, checkSweepCurve(cfg.SweepCurve)...)
	res = append(res, checkAxisCurve(cfg.AxisCurve)...)
	res = append(res, checkAngles()...)
	return res
}
