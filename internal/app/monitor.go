package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/derecho-hq/pasantias-monitor/internal/config"
	"github.com/derecho-hq/pasantias-monitor/internal/logger"
	"github.com/derecho-hq/pasantias-monitor/internal/scraper"
	"github.com/derecho-hq/pasantias-monitor/internal/storage"
	"github.com/derecho-hq/pasantias-monitor/pkg/httpclient"
	"github.com/derecho-hq/pasantias-monitor/pkg/notify"
)

// Monitor represents the offer monitor runtime. It manages the poll loop,
// coordinating the scrape service, storage, and the notification fanout.
type Monitor struct {
	cfg    *config.Config
	svc    *scraper.Service
	fanout *notify.Fanout
	store  storage.Store
	log    logger.Logger
}

// NewMonitor builds a monitor runtime from configuration.
func NewMonitor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.StoragePath,
	})

	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:    cfg.RequestTimeout,
		UserAgent:  cfg.UserAgent,
		RetryCount: cfg.RequestRetries,
	})

	svc := scraper.NewService(client, store, scraper.Options{
		SourceURL:      cfg.SourceURL,
		ExcludedEmails: cfg.ExcludedEmails,
		DetailDelay:    cfg.DetailDelay,
	}, log)

	return &Monitor{
		cfg:    cfg,
		svc:    svc,
		fanout: fanout,
		store:  store,
		log:    log,
	}, nil
}

// buildFanout loads the notifier registry and instantiates every enabled
// notifier. A missing registry file is not fatal: the monitor still scrapes
// and persists, it just has nowhere to announce new offers.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Fanout, error) {
	reg, err := notify.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WarnObj("notifiers file missing; running without notifications", "notifiers_file", cfg.NotifiersFile)
			return notify.NewFanout(nil), nil
		}
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}

	enabled := reg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("no notifiers enabled; running without notifications", "notifiers_file", cfg.NotifiersFile)
		return notify.NewFanout(nil), nil
	}

	notifiers, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, nc := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   nc.ID,
			"type": nc.Type,
		})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	return notify.NewFanout(notifiers), nil
}

// Run starts the poll loop until the context is cancelled. When a cron
// expression is configured it drives the schedule; otherwise a fixed-interval
// ticker does.
func (m *Monitor) Run(ctx context.Context) error {
	if m == nil || m.svc == nil {
		return fmt.Errorf("monitor is not initialized")
	}
	defer m.closeStore()

	m.log.InfoObj("monitor loop starting", "monitor_state", map[string]any{
		"source_url":      m.cfg.SourceURL,
		"notifiers_count": m.fanout.Size(),
		"poll_interval":   m.cfg.PollInterval.String(),
		"schedule_cron":   m.cfg.ScheduleCron,
	})

	if err := m.runOnce(ctx); err != nil {
		m.log.ErrorObj("initial scrape failed", "error", err.Error())
	}

	if m.cfg.ScheduleCron != "" {
		return m.runCron(ctx)
	}
	return m.runTicker(ctx)
}

// runTicker polls at the fixed configured interval.
func (m *Monitor) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.InfoObj("monitor loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := m.runOnce(ctx); err != nil {
				m.log.ErrorObj("scheduled scrape failed", "error", err.Error())
			}
		}
	}
}

// runCron polls on the configured cron expression.
func (m *Monitor) runCron(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(m.cfg.ScheduleCron, func() {
		if err := m.runOnce(ctx); err != nil {
			m.log.ErrorObj("scheduled scrape failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("parse cron schedule %q: %w", m.cfg.ScheduleCron, err)
	}

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	m.log.InfoObj("monitor loop exiting", "reason", ctx.Err())
	return nil
}

// runOnce performs a single scrape cycle and fans out every new offer.
func (m *Monitor) runOnce(ctx context.Context) error {
	start := time.Now()
	m.log.InfoObj("scrape started", "scrape_meta", map[string]any{
		"source_url": m.cfg.SourceURL,
		"started_at": start.UTC(),
	})

	all, fresh, err := m.svc.RunCycle(ctx)
	if err != nil {
		return err
	}

	for _, offer := range fresh {
		evt := notify.NewEvent(m.cfg.SourceURL, offer)
		sent, err := m.fanout.Send(ctx, evt)
		if err != nil {
			m.log.ErrorObj("notification fanout incomplete", "fanout_result", map[string]any{
				"offer_id":   offer.ID,
				"successful": sent,
				"error":      err.Error(),
			})
			continue
		}
		m.log.InfoObj("new offer announced", "fanout_result", map[string]any{
			"offer_id":   offer.ID,
			"successful": sent,
		})
	}

	m.log.InfoObj("scrape completed", "scrape_meta", map[string]any{
		"offers_total": len(all),
		"offers_new":   len(fresh),
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (m *Monitor) closeStore() {
	if m == nil || m.store == nil {
		return
	}
	if err := m.store.Close(); err != nil {
		m.log.ErrorObj("storage close failed", "error", err.Error())
	}
}
