package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pwm"
)

const namespace = "roo"

// Metrics holds the rover's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	pulse       *prometheus.GaugeVec
	writeErrors *prometheus.CounterVec
	ticks       prometheus.Counter
	overruns    prometheus.Counter
	tickMean    prometheus.Gauge
	tickStddev  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pulse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pulse_width_microseconds",
			Help:      "Last pulse width written to each output.",
		}, []string{"output"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pwm_write_errors_total",
			Help:      "Failed PWM writes per output.",
		}, []string{"output"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_ticks_total",
			Help:      "Control loop iterations.",
		}),
		overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_overruns_total",
			Help:      "Control loop iterations that started late.",
		}),
		tickMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_interval_mean_seconds",
			Help:      "Mean time between control loop iterations.",
		}),
		tickStddev: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_interval_stddev_seconds",
			Help:      "Standard deviation of the time between control loop iterations.",
		}),
	}
	m.registry.MustRegister(m.pulse, m.writeErrors, m.ticks, m.overruns, m.tickMean, m.tickStddev)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Tick(overrun bool, mean, stddev time.Duration) {
	m.ticks.Inc()
	if overrun {
		m.overruns.Inc()
	}
	m.tickMean.Set(mean.Seconds())
	m.tickStddev.Set(stddev.Seconds())
}

// Channel wraps a PWM channel so every write is recorded under the output
// name.
func (m *Metrics) Channel(output string, ch pwm.Channel) pwm.Channel {
	return &channel{
		Channel: ch,
		pulse:   m.pulse.WithLabelValues(output),
		errors:  m.writeErrors.WithLabelValues(output),
	}
}

type channel struct {
	pwm.Channel
	pulse  prometheus.Gauge
	errors prometheus.Counter
}

func (c *channel) Set(pulseMicroseconds int) error {
	err := c.Channel.Set(pulseMicroseconds)
	if err != nil {
		c.errors.Inc()
		return err
	}
	c.pulse.Set(float64(pulseMicroseconds))
	return nil
}

// Serve exposes /metrics on the port until the context is done.
func (m *Metrics) Serve(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Infof("Serving metrics on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
