package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

var curveStepFlag int

func init() {
	RootCmd.AddCommand(curveCmd)
	curveCmd.Flags().IntVarP(&curveStepFlag, "step", "s", 64, "sample spacing over the 10-bit sweep range")
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the configured pulse curves",
	RunE: func(_ *cobra.Command, _ []string) error {
		ConfigureVerbosity()
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		rows, err := curveRows(curveStepFlag, cfg.SweepCurve, cfg.AxisCurve)
		if err != nil {
			return err
		}
		printCurve(os.Stdout, rows)
		return nil
	},
}

// curveRows samples both curves over the sweep range; the axis column
// shows the same normalized position through the joystick curve.
func curveRows(step int, sweep, axis pulse.Curve) ([][]string, error) {
	if step <= 0 || step > pulse.SweepResolution {
		return nil, fmt.Errorf("step must be within [1, %d]", pulse.SweepResolution)
	}
	var rows [][]string
	for x := 0; x <= pulse.SweepResolution; x += step {
		n := pulse.Normalize10Bit(x)
		rows = append(rows, []string{
			fmt.Sprintf("%d", x),
			fmt.Sprintf("%+.3f", n),
			fmt.Sprintf("%d", sweep.Pulse(n)),
			fmt.Sprintf("%d", axis.Pulse(n)),
		})
	}
	return rows, nil
}

func printCurve(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(20)
	table.SetHeader([]string{"sample", "normalized", "sweep(us)", "axis(us)"})
	for _, r := range rows {
		table.Append(r)
	}
	table.Render()
}
