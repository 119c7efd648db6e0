// Package monitor runs the per-submission pipeline: filter, highlight,
// alert, render and record.
package monitor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qepting91/reddit-stream-monitor/internal/config"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"github.com/qepting91/reddit-stream-monitor/internal/highlight"
	"github.com/qepting91/reddit-stream-monitor/internal/metrics"
)

// Source yields submissions one at a time, blocking between them.
type Source interface {
	Next(ctx context.Context) (domain.Submission, error)
}

type Presenter interface {
	Present(h domain.HighlightedSubmission) error
}

type Alerter interface {
	Alert(freqHz, durationMs int) error
}

// Monitor processes submissions strictly in delivery order.
type Monitor struct {
	cfg       config.Config
	source    Source
	engine    *highlight.Engine
	presenter Presenter
	alerter   Alerter
	hits      chan<- domain.Hit
	logger    *slog.Logger
}

// New wires a monitor. hits may be nil when no hit log is configured.
func New(cfg config.Config, source Source, presenter Presenter, alerter Alerter, hits chan<- domain.Hit, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := highlight.NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		cfg:       cfg,
		source:    source,
		engine:    engine,
		presenter: presenter,
		alerter:   alerter,
		hits:      hits,
		logger:    logger,
	}, nil
}

// Run consumes the source until it fails or ctx is cancelled. Render and
// alert failures only skip the current submission; a stream failure ends
// the run and is returned. Cancellation returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Started streaming submissions", "sub", m.cfg.Subreddit, "skip_existing", m.cfg.SkipExisting)
	for {
		sub, err := m.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				m.logger.Info("Stream stopped", "sub", m.cfg.Subreddit)
				return nil
			}
			metrics.IncFailure(domain.KindOf(err).String())
			return err
		}
		metrics.SubmissionsReceived.Inc()
		m.handle(sub)
	}
}

func (m *Monitor) handle(sub domain.Submission) {
	if !m.engine.Include(sub) {
		m.logger.Debug("Filtered out", "id", sub.ID)
		return
	}
	h := m.engine.Highlight(sub)

	if h.ShouldAlert && m.cfg.Beep.Enabled {
		if err := m.alerter.Alert(m.cfg.Beep.Frequency, m.cfg.Beep.Duration); err != nil {
			metrics.IncFailure(domain.KindAlert.String())
			m.logger.Warn("Beep failed", "id", sub.ID, "err", err)
		} else {
			metrics.Alerts.Inc()
		}
	}

	if err := m.presenter.Present(h); err != nil {
		metrics.IncFailure(domain.KindRender.String())
		m.logger.Error("Error displaying submission", "id", sub.ID, "err", err)
		return
	}
	metrics.SubmissionsDisplayed.Inc()
	if h.HasFlairColor {
		metrics.IncFlairClass(h.FlairColor.String())
	}
	if m.hits != nil {
		m.hits <- domain.NewHit(h)
	}
}
