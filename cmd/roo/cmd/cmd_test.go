package cmd

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/drive"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/joystick"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/screen"
)

func TestCurveRows(t *testing.T) {
	rows, err := curveRows(256, pulse.SweepCurve, pulse.AxisCurve)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"0", "-1.000", "500", "833"},
		{"256", "-0.500", "1250", "1333"},
		{"512", "+0.000", "1500", "1500"},
		{"768", "+0.500", "1750", "1666"},
		{"1024", "+1.000", "2500", "2166"},
	}, rows)

	_, err = curveRows(0, pulse.SweepCurve, pulse.AxisCurve)
	require.Error(t, err)
}

func TestPrintCurve(t *testing.T) {
	rows, err := curveRows(512, pulse.SweepCurve, pulse.AxisCurve)
	require.NoError(t, err)
	var buf bytes.Buffer
	printCurve(&buf, rows)
	require.Contains(t, buf.String(), "2500")
	require.Contains(t, buf.String(), "2166")
}

func TestRunChecksDefaults(t *testing.T) {
	for _, r := range runChecks(config.DefaultConfig()) {
		require.True(t, r.ok, r.msg)
	}
}

func TestRunChecksBadCurves(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SweepCurve = pulse.Curve{Amplitude: 1500, Damping: 1, Neutral: 1500}
	cfg.AxisCurve = pulse.Curve{Amplitude: -1000, Damping: 1, Neutral: 1400}

	failed := 0
	for _, r := range runChecks(cfg) {
		if !r.ok {
			failed++
		}
	}
	// the sweep curve leaves the band at 0, the axis curve at +1
	require.Equal(t, 2, failed)

	res := checkSweepCurve(pulse.Curve{Amplitude: -1000, Damping: 1, Neutral: 1500})
	require.False(t, res[1].ok)
}

func TestParseServoLine(t *testing.T) {
	tests := []struct {
		line    string
		want    servoCommand
		wantErr string
	}{
		{line: "s 12 1600\n", want: servoCommand{channel: 12, pulse: 1600}},
		{line: "s 3 3000", want: servoCommand{channel: 3, pulse: 2500}},
		{line: "a 13 90", want: servoCommand{channel: 13, pulse: 1500}},
		{line: "a 13 45.0", want: servoCommand{channel: 13, pulse: 1000}},
		{line: "a 13 200", wantErr: "angle"},
		{line: "s 12", wantErr: "not enough parameters"},
		{line: "s x 1500", wantErr: "expected int"},
		{line: "s 1 fast", wantErr: "expected number"},
		{line: "p 1 0.5", wantErr: "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseServoLine(tt.line)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
	_, err := parseServoLine("q")
	require.ErrorIs(t, err, errQuit)
}

func TestRunServo(t *testing.T) {
	d := pwm.Dummy()
	in := strings.NewReader("s 12 1600\nbogus\na 13 180\n\nq\ns 12 500\n")
	var out bytes.Buffer
	require.NoError(t, runServo(in, &out, d))
	require.Equal(t, []pwm.Write{{12, 1600}, {13, 2500}}, d.Writes())
	require.Contains(t, out.String(), "Setting channel 13 to 2500us")
	require.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestRunServoEOF(t *testing.T) {
	d := pwm.Dummy()
	require.NoError(t, runServo(strings.NewReader("s 18 1400"), &bytes.Buffer{}, d))
	p, ok := d.Last(18)
	require.True(t, ok)
	require.Equal(t, 1400, p)
}

func TestStatusLine(t *testing.T) {
	s := drive.Snapshot{Yaw: 1550, Pitch: 1450, Left: 833, Right: 2166, LeftAxis: -1, RightAxis: 1, Hat: gimbal.HatDownRight}
	line := statusLine(s)
	require.Contains(t, line, "L: -1.00 R: +1.00")
	require.Contains(t, line, "DPad Down-Right")
	require.Contains(t, line, "yaw 1550 pitch 1450")
	require.Contains(t, line, "left  833 right 2166")
}

func TestOpenJoystickMissing(t *testing.T) {
	device := filepath.Join(t.TempDir(), "js0")
	_, err := openJoystick(context.Background(), device, false)
	require.ErrorIs(t, err, joystick.ErrNoJoystick)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = openJoystick(ctx, device, true)
	require.ErrorIs(t, err, context.Canceled)
}

func busyPort(t *testing.T) int {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServeMetricsPortInUse(t *testing.T) {
	require.NoError(t, serveMetrics(context.Background(), metrics.New(), busyPort(t)))
}

func TestServicesMetricsFailureKeepsLoopRunning(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MonitoringPort = busyPort(t)
	svc := newServices(cfg, metrics.New(), "Joystick mode")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	svc.start(ctx, eg)

	select {
	case <-ctx.Done():
		t.Fatal("metrics failure cancelled the loop")
	case <-time.After(200 * time.Millisecond):
	}
	cancel()
	require.NoError(t, eg.Wait())
	svc.stop()
}

func TestServicesScreen(t *testing.T) {
	fb := filepath.Join(t.TempDir(), "fb1")
	require.NoError(t, os.WriteFile(fb, nil, 0644))
	cfg := config.DefaultConfig()
	cfg.Screen = fb
	svc := newServices(cfg, metrics.New(), "Sweep mode")
	require.NotNil(t, svc.panel)

	svc.observe(drive.Snapshot{Yaw: 500, Pitch: 1000, Left: 1500, Right: 700})
	svc.observe(drive.Snapshot{Yaw: 500, Pitch: 1000, Left: 1500, Right: 710})

	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	cancel()
	svc.start(ctx, eg)
	require.NoError(t, eg.Wait())
	svc.stop()

	b, err := os.ReadFile(fb)
	require.NoError(t, err)
	require.Len(t, b, screen.Size*screen.Size*2)
}

func TestServicesWithoutScreen(t *testing.T) {
	svc := newServices(config.DefaultConfig(), metrics.New(), "Sweep mode")
	require.Nil(t, svc.panel)
	svc.observe(drive.Snapshot{})
	svc.stop()
}
