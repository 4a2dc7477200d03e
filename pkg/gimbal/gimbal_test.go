package gimbal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStartsAtNeutral(t *testing.T) {
	g := New(0, false)
	require.Equal(t, 1500, g.Yaw)
	require.Equal(t, 1500, g.Pitch)
	require.Equal(t, DefaultStep, g.Step)
}

func TestApplyHat(t *testing.T) {
	tests := []struct {
		hat        Hat
		yaw, pitch int
	}{
		{HatNeutral, 1500, 1500},
		{HatUp, 1500, 1550},
		{HatDown, 1500, 1450},
		{HatLeft, 1450, 1500},
		{HatRight, 1550, 1500},
		{HatUpRight, 1550, 1550},
		{HatUpLeft, 1450, 1550},
		{HatDownRight, 1550, 1450},
		{HatDownLeft, 1450, 1450},
		{Hat{2, 0}, 1500, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.hat.String(), func(t *testing.T) {
			g := New(DefaultStep, false)
			changed := g.ApplyHat(tt.hat)
			require.Equal(t, tt.yaw, g.Yaw)
			require.Equal(t, tt.pitch, g.Pitch)
			require.Equal(t, tt.yaw != 1500 || tt.pitch != 1500, changed)
		})
	}
}

func TestApplyHatUnbounded(t *testing.T) {
	g := New(DefaultStep, false)
	for i := 0; i < 100; i++ {
		g.ApplyHat(HatRight)
	}
	require.Equal(t, 1500+100*50, g.Yaw)
	require.Equal(t, 1500, g.Pitch)
}

func TestApplyHatClamped(t *testing.T) {
	g := New(DefaultStep, true)
	for i := 0; i < 100; i++ {
		g.ApplyHat(HatDownLeft)
	}
	require.Equal(t, 500, g.Yaw)
	require.Equal(t, 500, g.Pitch)
	require.False(t, g.ApplyHat(HatDownLeft))
	require.True(t, g.ApplyHat(HatUp))
	require.Equal(t, 550, g.Pitch)
}

func TestReset(t *testing.T) {
	g := New(25, false)
	g.ApplyHat(HatUpRight)
	require.Equal(t, "yaw=1525 pitch=1525", g.String())
	g.Reset()
	require.Equal(t, 1500, g.Yaw)
	require.Equal(t, 1500, g.Pitch)
}

func TestHatString(t *testing.T) {
	require.Equal(t, "DPad Up-Right", HatUpRight.String())
	require.Equal(t, "DPad Not Pressed", HatNeutral.String())
	require.Equal(t, "DPad Not Pressed", Hat{3, 3}.String())
}
