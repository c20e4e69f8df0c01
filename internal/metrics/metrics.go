// Package metrics counts sessions, pops and frames in a Prometheus registry.
// The registry is private to the process; totals are logged on shutdown.
package metrics

import (
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
)

// Recorder implements driver.Listener.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted  prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	pops             *prometheus.CounterVec
	bonusDrops       prometheus.Counter
	spawned          prometheus.Counter
	frames           prometheus.Counter
	targets          prometheus.Gauge
	score            prometheus.Gauge
	finalScore       prometheus.Histogram
}

var _ driver.Listener = (*Recorder)(nil)

// New creates a Recorder with its own registry. preset is attached to every
// series as a constant label.
func New(preset string) *Recorder {
	labels := prometheus.Labels{"preset": preset}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "poppers_sessions_started_total",
			Help:        "Sessions started",
			ConstLabels: labels,
		}),
		sessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "poppers_sessions_finished_total",
				Help:        "Sessions finished, by outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		pops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "poppers_pops_total",
				Help:        "Targets popped by the fingertip, by kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		bonusDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "poppers_bonus_drops_total",
			Help:        "Targets removed by the bonus drop",
			ConstLabels: labels,
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "poppers_replacements_total",
			Help:        "Replacement targets spawned after pops",
			ConstLabels: labels,
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "poppers_frames_total",
			Help:        "Frames rendered",
			ConstLabels: labels,
		}),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "poppers_targets",
			Help:        "Live targets in the last frame",
			ConstLabels: labels,
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "poppers_score",
			Help:        "Score in the last frame",
			ConstLabels: labels,
		}),
		finalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "poppers_final_score",
			Help:        "Score at the end of a session",
			ConstLabels: labels,
			Buckets:     []float64{0, 10, 25, 50, 100, 200},
		}),
	}

	r.registry.MustRegister(
		r.sessionsStarted,
		r.sessionsFinished,
		r.pops,
		r.bonusDrops,
		r.spawned,
		r.frames,
		r.targets,
		r.score,
		r.finalScore,
	)

	return r
}

// Registry exposes the registry, e.g. for a push gateway or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) OnContact(res game.ContactResult) {
	for _, t := range res.Removed {
		r.pops.WithLabelValues(t.Kind.String()).Inc()
	}
	r.bonusDrops.Add(float64(len(res.Dropped)))
	r.spawned.Add(float64(res.Spawned))
}

func (r *Recorder) OnPhase(_, to game.Phase, snap driver.Snapshot) {
	switch to {
	case game.Playing:
		r.sessionsStarted.Inc()
	case game.Over:
		r.sessionsFinished.WithLabelValues(snap.Outcome.String()).Inc()
		r.finalScore.Observe(float64(snap.Score))
	}
}

func (r *Recorder) OnFrame(snap driver.Snapshot) {
	r.frames.Inc()
	if snap.Phase == game.Playing {
		r.targets.Set(float64(len(snap.Targets)))
		r.score.Set(float64(snap.Score))
	}
}

// Log writes every counter and gauge as one record.
func (r *Recorder) Log(log *slog.Logger) {
	families, err := r.registry.Gather()
	if err != nil {
		log.Warn("gather metrics", "error", err)
		return
	}

	var attrs []any
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "poppers_")
		for _, m := range mf.GetMetric() {
			key := name
			for _, lp := range m.GetLabel() {
				if lp.GetName() != "preset" {
					key += "." + lp.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, key, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				attrs = append(attrs, key, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, key+".count", m.GetHistogram().GetSampleCount())
			}
		}
	}
	log.Info("session totals", attrs...)
}
