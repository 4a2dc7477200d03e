package drive

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/gimbal"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

// Outputs are the rover's four PWM channels.
type Outputs struct {
	Yaw, Pitch, Left, Right pwm.Channel
}

// OpenOutputs opens the configured channels on the driver.  With non-nil
// metrics each channel reports its writes.
func OpenOutputs(d pwm.Driver, cfg config.ChannelConfig, m *metrics.Metrics) (Outputs, error) {
	var out Outputs
	for _, o := range []struct {
		name string
		id   int
		ch   *pwm.Channel
	}{
		{"yaw", cfg.Yaw, &out.Yaw},
		{"pitch", cfg.Pitch, &out.Pitch},
		{"left", cfg.Left, &out.Left},
		{"right", cfg.Right, &out.Right},
	} {
		ch, err := d.Channel(o.id)
		if err != nil {
			return Outputs{}, fmt.Errorf("opening %s output: %w", o.name, err)
		}
		if m != nil {
			ch = m.Channel(o.name, ch)
		}
		*o.ch = ch
	}
	return out, nil
}

// Input is a polled controller.
type Input interface {
	// Axis position in [-1, 1].
	Axis(n int) float64
	Button(n int) bool
	Hat() gimbal.Hat
}

// Snapshot is what the loop wrote on one tick.
type Snapshot struct {
	Yaw, Pitch  int
	Left, Right int

	LeftAxis, RightAxis float64
	Hat                 gimbal.Hat
	Sample              int
}

func (s Snapshot) String() string {
	return fmt.Sprintf("yaw=%d pitch=%d left=%d right=%d", s.Yaw, s.Pitch, s.Left, s.Right)
}

// set is fire-and-forget: a failed write is logged and the loop carries on.
func set(name string, ch pwm.Channel, pulseMicroseconds int) {
	if err := ch.Set(pulseMicroseconds); err != nil {
		log.Warnf("Failed to set %s to %dus: %v", name, pulseMicroseconds, err)
	}
}

func (o Outputs) setAll(yaw, pitch, left, right int) {
	set("yaw", o.Yaw, yaw)
	set("pitch", o.Pitch, pitch)
	set("left", o.Left, left)
	set("right", o.Right, right)
}

// loop calls step every interval until the context is done.
func loop(ctx context.Context, interval time.Duration, stats *LoopStats, m *metrics.Metrics, step func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			overrun := stats.Mark(now)
			step()
			if m != nil {
				m.Tick(overrun, stats.Mean(), stats.Stddev())
			}
		}
	}
}
