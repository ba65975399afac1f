// Package service runs one reward scan: fetch, extract, reconcile,
// classify and report.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rewardscan/internal/adapters/http/fetch"
	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/internal/config"
	"github.com/okian/rewardscan/internal/domain/classify"
	"github.com/okian/rewardscan/internal/domain/extract"
	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/internal/domain/reconcile"
	"github.com/okian/rewardscan/internal/domain/types"
	"github.com/okian/rewardscan/internal/report"
	"github.com/okian/rewardscan/pkg/logger"
	"github.com/okian/rewardscan/pkg/metrics"
)

// Fetcher retrieves remote documents.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchEntries(ctx context.Context, url string) ([]model.Entry, error)
}

// Service runs scans against one rewards site.
type Service struct {
	cfg     *config.Config
	fetcher Fetcher
	out     io.Writer
	logger  logger.Logger
	now     func() time.Time
}

// New constructs a Service. Without options it scans the default site and
// writes the report to stdout.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
		out: os.Stdout,
		now: time.Now,
		// logger and fetcher stay nil until Run so callers can initialize
		// logging first
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan and reports on peerIDs.
func (s *Service) Run(ctx context.Context, peerIDs []string) error {
	start := time.Now()
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.fetcher == nil {
		s.fetcher = fetch.New(
			fetch.WithTimeout(s.cfg.FetchTimeout()),
			fetch.WithUserAgent(s.cfg.UserAgent),
			fetch.WithLogger(s.logger.Named("fetch")),
		)
	}
	log := s.logger.Named("scan").With(logger.String("run_id", uuid.NewString()))
	log.Info(ctx, "scan started",
		logger.String("base_url", s.cfg.BaseURL),
		logger.String("source", s.cfg.Source),
		logger.String("strategy", s.cfg.Strategy),
		logger.Int("peers", len(peerIDs)),
	)

	script, err := s.script(ctx, log)
	if err != nil {
		return err
	}

	lastUpdated, err := extract.LastUpdated(script)
	if err != nil {
		log.Warn(ctx, "last update time not found", logger.Error(err))
	}
	metrics.UpdateLastUpdated(lastUpdated)

	var (
		sources []reconcile.Source
		ropts   = []reconcile.Option{reconcile.WithLogger(log)}
	)
	switch s.cfg.Source {
	case config.SourceScript:
		sources, err = s.scriptSources(ctx, log, script)
	default:
		sources, err = s.jsonSources(ctx)
		ropts = append(ropts, reconcile.WithCriteriaField(s.cfg.CriteriaField))
	}
	if err != nil {
		return err
	}

	store, err := reconcile.New(ropts...).Reconcile(ctx, sources)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	summary, err := s.summarize(ctx, log, store, lastUpdated)
	if err != nil {
		return err
	}

	all := store.All(ctx)
	net := report.Sum(all)
	for _, b := range model.Buckets() {
		metrics.UpdateRewardTotal(b.String(), net.Buckets[b])
	}

	rep, err := report.New(s.out)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := rep.Aggregate(s.cfg.BaseURL, lastUpdated, net, summary); err != nil {
		return err
	}
	totals, err := rep.Peers(ctx, peerIDs, store)
	if err != nil {
		return err
	}
	if len(totals.Missing) > 0 {
		log.Warn(ctx, "peers not found", logger.Int("count", len(totals.Missing)))
	}

	metrics.RecordRun(start)
	if s.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
			return fmt.Errorf("%w: %w", ErrMetricsWrite, err)
		}
	}

	log.Info(ctx, "scan finished",
		logger.Int("known_peers", len(all)),
		logger.Float64("grand_total", totals.Grand()),
		logger.String("elapsed", time.Since(start).String()),
	)
	return nil
}

// script fetches the rewards page and the main bundle it references.
func (s *Service) script(ctx context.Context, log logger.Logger) (string, error) {
	page, err := s.fetcher.FetchText(ctx, s.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: page: %w", ErrFetch, err)
	}
	asset, err := fetch.FindScriptAsset(s.cfg.BaseURL, page)
	if err != nil {
		return "", err
	}
	log.Debug(ctx, "script asset found", logger.String("url", asset))

	script, err := s.fetcher.FetchText(ctx, asset)
	if err != nil {
		return "", fmt.Errorf("%w: script: %w", ErrFetch, err)
	}
	return script, nil
}

func (s *Service) jsonSources(ctx context.Context) ([]reconcile.Source, error) {
	paths := []struct {
		kind model.SourceKind
		path string
	}{
		{model.SourceExisting, s.cfg.ExistingPath},
		{model.SourceInterim, s.cfg.InterimPath},
		{model.SourcePreUpdate, s.cfg.PreUpdatePath},
		{model.SourcePostUpdate, s.cfg.PostUpdatePath},
		{model.SourceDisqualified, s.cfg.DisqualifiedPath},
	}

	sources := make([]reconcile.Source, 0, len(paths))
	for _, p := range paths {
		entries, err := s.fetcher.FetchEntries(ctx, s.cfg.URL(p.path))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetch, p.kind, err)
		}
		sources = append(sources, reconcile.Source{Kind: p.kind, Entries: entries})
	}
	return sources, nil
}

func (s *Service) scriptSources(ctx context.Context, log logger.Logger, script string) ([]reconcile.Source, error) {
	layout, err := reconcile.NewLayout(s.cfg.ScriptFields, s.cfg.CriteriaField)
	if err != nil {
		return nil, err
	}
	res := extract.New(extract.WithLogger(log)).Extract(ctx, script)
	return reconcile.SourcesFromRecords(res.Records, layout), nil
}

func (s *Service) summarize(ctx context.Context, log logger.Logger, store repository.Store, lastUpdated time.Time) (types.Summary, error) {
	ref := lastUpdated
	if ref.IsZero() {
		ref = s.now()
		if s.cfg.Strategy == config.StrategyPresence {
			log.Warn(ctx, "classifying against the current month", logger.String("month", model.MonthOf(ref)))
		}
	}
	c, err := classify.New(classify.Strategy(s.cfg.Strategy), ref)
	if err != nil {
		return types.Summary{}, err
	}
	return classify.Summarize(store.All(ctx), c), nil
}
