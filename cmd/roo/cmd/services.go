package cmd

import (
	"context"
	"sync"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/config"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/drive"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/metrics"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/screen"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/sound"
)

// services are the optional extras around a control loop: status screen,
// startup sound, metrics endpoint and systemd notification.  None of them
// can stop the loop.
type services struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	panel   *screen.Panel
	player  *sound.Player
	ready   sync.Once
}

func newServices(cfg *config.Config, m *metrics.Metrics, mode string) *services {
	s := &services{cfg: cfg, metrics: m}
	if cfg.Screen != "" {
		s.panel = screen.NewPanel(mode)
	}
	return s
}

// start launches the background services on the group and plays the
// startup sound.
func (s *services) start(ctx context.Context, eg *errgroup.Group) {
	if s.cfg.MonitoringPort > 0 {
		eg.Go(func() error {
			return serveMetrics(ctx, s.metrics, s.cfg.MonitoringPort)
		})
	}
	if s.panel != nil {
		eg.Go(func() error {
			return s.panel.Loop(ctx, s.cfg.Screen)
		})
	}
	if s.cfg.StartupSound != "" {
		s.player = sound.NewPlayer()
		s.player.Play(s.cfg.StartupSound)
	}
}

// observe is called by the loop on every tick.
func (s *services) observe(snap drive.Snapshot) {
	s.ready.Do(func() { notify(daemon.SdNotifyReady) })
	if s.panel != nil {
		s.panel.Update(snap)
	}
}

func (s *services) stop() {
	notify(daemon.SdNotifyStopping)
	if s.player != nil {
		s.player.Close()
	}
}

// serveMetrics logs a failed metrics endpoint instead of returning it, so
// the loop keeps running without monitoring.
func serveMetrics(ctx context.Context, m *metrics.Metrics, port int) error {
	if err := m.Serve(ctx, port); err != nil {
		log.Errorf("Monitoring server failed: %v", err)
	}
	return nil
}

func notify(state string) {
	if ok, err := daemon.SdNotify(false, state); err != nil {
		log.Warnf("Failed to notify systemd: %v", err)
	} else if ok {
		log.Debugf("Notified systemd: %s", state)
	}
}
