package drive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/joystick"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

type fakeInput struct {
	axes    map[int]float64
	buttons map[int]bool
	hat     gimbal.Hat
}

func (f *fakeInput) Axis(n int) float64 {
	return f.axes[n]
}

func (f *fakeInput) Button(n int) bool {
	return f.buttons[n]
}

func (f *fakeInput) Hat() gimbal.Hat {
	return f.hat
}

func dummyOutputs(t *testing.T, cfg *config.Config) (*pwm.DummyDriver, Outputs) {
	d := pwm.Dummy()
	out, err := OpenOutputs(d, cfg.Channels, metrics.New())
	require.NoError(t, err)
	return d, out
}

func last(t *testing.T, d *pwm.DummyDriver, id int) int {
	p, ok := d.Last(id)
	require.True(t, ok, "nothing written to channel %d", id)
	return p
}

func TestJoystickModeStart(t *testing.T) {
	cfg := config.DefaultConfig()
	d, out := dummyOutputs(t, cfg)
	m := NewJoystickMode(cfg, &fakeInput{}, out)
	m.Start()
	require.Equal(t, []pwm.Write{{Channel: 12, Pulse: 1500}, {Channel: 13, Pulse: 1500}, {Channel: 18, Pulse: 1500}, {Channel: 19, Pulse: 1500}}, d.Writes())
}

func TestJoystickModeTick(t *testing.T) {
	cfg := config.DefaultConfig()
	d, out := dummyOutputs(t, cfg)
	in := &fakeInput{axes: map[int]float64{}}
	m := NewJoystickMode(cfg, in, out)

	var seen []Snapshot
	m.Observer = func(s Snapshot) { seen = append(seen, s) }

	snap := m.Tick()
	require.Equal(t, Snapshot{Yaw: 1500, Pitch: 1500, Left: 1500, Right: 1500, Hat: gimbal.HatNeutral}, snap)

	// Full forward on the left stick reads -1; the right axis is inverted.
	in.axes[1] = -1
	in.axes[3] = -1
	in.hat = gimbal.HatRight
	snap = m.Tick()
	require.Equal(t, 833, snap.Left)
	require.Equal(t, 2166, snap.Right)
	require.Equal(t, 1550, snap.Yaw)
	require.Equal(t, 1500, snap.Pitch)
	require.Equal(t, 1550, last(t, d, 12))
	require.Equal(t, 1500, last(t, d, 13))
	require.Equal(t, 833, last(t, d, 18))
	require.Equal(t, 2166, last(t, d, 19))

	in.hat = gimbal.HatDownLeft
	snap = m.Tick()
	require.Equal(t, 1500, snap.Yaw)
	require.Equal(t, 1450, snap.Pitch)

	require.Len(t, seen, 3)
	require.Len(t, d.Writes(), 12)
}

func TestJoystickModeClampedGimbal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gimbal.Clamp = true
	d, out := dummyOutputs(t, cfg)
	m := NewJoystickMode(cfg, &fakeInput{hat: gimbal.HatUp}, out)
	for i := 0; i < 40; i++ {
		m.Tick()
	}
	require.Equal(t, 2500, last(t, d, 13))
}

func TestJoystickModeRecenter(t *testing.T) {
	cfg := config.DefaultConfig()
	d, out := dummyOutputs(t, cfg)
	in := &fakeInput{buttons: map[int]bool{}, hat: gimbal.HatUpLeft}
	m := NewJoystickMode(cfg, in, out)
	for i := 0; i < 3; i++ {
		m.Tick()
	}
	require.Equal(t, 1350, last(t, d, 12))
	require.Equal(t, 1650, last(t, d, 13))

	// Holding the button keeps the gimbal centred even with the d-pad held.
	in.buttons[joystick.ButtonY] = true
	snap := m.Tick()
	require.Equal(t, 1500, snap.Yaw)
	require.Equal(t, 1500, snap.Pitch)
	m.Tick()
	require.Equal(t, 1500, last(t, d, 12))
	require.Equal(t, 1500, last(t, d, 13))

	in.buttons[joystick.ButtonY] = false
	snap = m.Tick()
	require.Equal(t, 1450, snap.Yaw)
	require.Equal(t, 1550, snap.Pitch)
}

func TestJoystickModeRecenterDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Joystick.RecenterButton = -1
	_, out := dummyOutputs(t, cfg)
	in := &fakeInput{buttons: map[int]bool{joystick.ButtonY: true}, hat: gimbal.HatUp}
	m := NewJoystickMode(cfg, in, out)
	m.Tick()
	require.Equal(t, 1600, m.Tick().Pitch)
}

func TestWriteFailuresDoNotStopTheLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := pwm.NewMockChannel(ctrl)
	failing.EXPECT().Set(gomock.Any()).Return(errors.New("i/o error")).Times(2)

	d := pwm.Dummy()
	ok, _ := d.Channel(0)
	out := Outputs{Yaw: failing, Pitch: ok, Left: ok, Right: ok}
	m := NewJoystickMode(config.DefaultConfig(), &fakeInput{}, out)
	m.Tick()
	m.Tick()
	require.Len(t, d.Writes(), 6)
}

func TestOpenOutputsFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := pwm.NewMockDriver(ctrl)
	driver.EXPECT().Channel(12).Return(pwm.Dummy().Channel(12))
	driver.EXPECT().Channel(13).Return(nil, &pwm.ChannelError{Channel: 13, Op: "open", Err: errors.New("busy")})

	_, err := OpenOutputs(driver, config.DefaultConfig().Channels, nil)
	require.ErrorContains(t, err, "opening pitch output")
	var chErr *pwm.ChannelError
	require.ErrorAs(t, err, &chErr)
}

func TestJoystickModeRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interval = time.Millisecond
	cfg.NeutralOnExit = true
	d, out := dummyOutputs(t, cfg)
	in := &fakeInput{axes: map[int]float64{1: 1}}
	m := NewJoystickMode(cfg, in, out)

	ctx, cancel := context.WithCancel(context.Background())
	ticked := make(chan struct{})
	count := 0
	m.Observer = func(Snapshot) {
		count++
		if count == 5 {
			close(ticked)
		}
	}
	done := make(chan error)
	go func() { done <- m.Run(ctx) }()

	<-ticked
	cancel()
	require.NoError(t, <-done)
	require.GreaterOrEqual(t, m.Stats.Ticks, 5)
	// neutral written on the way out
	require.Equal(t, 1500, last(t, d, 18))
	require.Equal(t, 1500, last(t, d, 19))
}

func TestSweepSequence(t *testing.T) {
	var s Sweep
	var got []int
	for i := 0; i < 2*1024+2; i++ {
		got = append(got, s.Next())
	}
	require.Equal(t, 0, got[0])
	require.Equal(t, 1023, got[1023])
	require.Equal(t, 1024, got[1024])
	require.Equal(t, 1, got[2047])
	require.Equal(t, 0, got[2048])
	require.Equal(t, 1, got[2049])
}

func TestSweepMode(t *testing.T) {
	cfg := config.DefaultConfig()
	d, out := dummyOutputs(t, cfg)
	m := NewSweepMode(cfg, out)
	m.Start()
	require.Equal(t, []pwm.Write{{Channel: 12, Pulse: 500}, {Channel: 13, Pulse: 1000}, {Channel: 18, Pulse: 1500}, {Channel: 19, Pulse: 1500}}, d.Writes())

	snap := m.Tick()
	require.Equal(t, 0, snap.Sample)
	require.Equal(t, 500, snap.Right)
	for i := 0; i < 512; i++ {
		snap = m.Tick()
	}
	require.Equal(t, 512, snap.Sample)
	require.Equal(t, 1500, snap.Right)
	require.Equal(t, 1500, last(t, d, 19))
	// only the right channel moves
	require.Equal(t, 500, last(t, d, 12))
	require.Len(t, d.Writes(), 4+513)
}

func TestLoopStats(t *testing.T) {
	s := NewLoopStats(10 * time.Millisecond)
	start := time.Now()
	require.False(t, s.Mark(start))
	require.Equal(t, time.Duration(0), s.Mean())
	require.False(t, s.Mark(start.Add(10*time.Millisecond)))
	require.False(t, s.Mark(start.Add(20*time.Millisecond)))
	require.Equal(t, 10*time.Millisecond, s.Mean())
	require.Equal(t, time.Duration(0), s.Stddev())

	require.True(t, s.Mark(start.Add(40*time.Millisecond)))
	require.Equal(t, 1, s.Overruns)
	require.Equal(t, 4, s.Ticks)
	require.Contains(t, s.String(), "4 ticks")
}
