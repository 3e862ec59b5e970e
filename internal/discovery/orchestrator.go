package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

const (
	defaultMaxConcurrency = 4
	defaultSaveTimeout    = 2 * time.Minute
)

var ErrSourceNotFound = errors.New("source not found or disabled")

// Sink persists one discovered record, deduplicating on (source, external_id).
type Sink interface {
	Save(ctx context.Context, o models.Opportunity) (*models.Opportunity, error)
}

type Request struct {
	Countries []models.Country `json:"countries,omitempty"`
	Since     time.Time        `json:"since"`
	Limit     int              `json:"limit"`
}

func (r Request) query() datasource.Query {
	return datasource.Query{Countries: r.Countries, Since: r.Since, Limit: r.Limit}
}

// SourceOutcome reports one adapter's part of a pass.
type SourceOutcome struct {
	Source     models.DataSource `json:"source"`
	Discovered int               `json:"discovered"`
	Saved      int               `json:"saved"`
	Failed     int               `json:"failed"`
	TimedOut   bool              `json:"timed_out,omitempty"`
	Panicked   bool              `json:"panicked,omitempty"`
	Elapsed    time.Duration     `json:"elapsed"`
}

type PassResult struct {
	RunID      uuid.UUID       `json:"run_id"`
	Total      int             `json:"total"`
	Discovered int             `json:"discovered"`
	Failed     int             `json:"failed"`
	Sources    []SourceOutcome `json:"sources"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Orchestrator fans discovery out across the enabled adapters and hands every
// record to the sink.
type Orchestrator struct {
	Registry *datasource.Registry
	Sink     Sink
	Logger   *zap.Logger

	MaxConcurrency int
	PassTimeout    time.Duration
	SaveTimeout    time.Duration

	tracer trace.Tracer
	now    func() time.Time
}

func New(reg *datasource.Registry, sink Sink, cfg config.DiscoveryConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Registry:       reg,
		Sink:           sink,
		Logger:         logger,
		MaxConcurrency: cfg.MaxConcurrency,
		PassTimeout:    cfg.PassTimeout,
		SaveTimeout:    cfg.SaveTimeout,
		tracer:         otel.Tracer("github.com/psehrawa/opportunities-finder/internal/discovery"),
		now:            time.Now,
	}
}

type taskResult struct {
	records  []models.Opportunity
	panicked bool
	elapsed  time.Duration
}

// DiscoverAll runs one pass over every enabled adapter. It never fails: a source that
// errors, panics or outlives the deadline contributes zero records.
func (o *Orchestrator) DiscoverAll(ctx context.Context, req Request) PassResult {
	res := PassResult{RunID: uuid.New(), StartedAt: o.clock(), Sources: []SourceOutcome{}}
	if o == nil {
		res.FinishedAt = res.StartedAt
		return res
	}
	ctx, span := o.tracerOrDefault().Start(ctx, "discovery.pass", trace.WithAttributes(
		attribute.String("run_id", res.RunID.String()),
	))
	defer span.End()

	adapters := o.enabled(ctx)
	log := o.logger().With(zap.String("run_id", res.RunID.String()))
	log.Info("discovery pass started", zap.Int("sources", len(adapters)))

	joinCtx := ctx
	if o.PassTimeout > 0 {
		var cancel context.CancelFunc
		joinCtx, cancel = context.WithTimeout(ctx, o.PassTimeout)
		defer cancel()
	}

	sem := semaphore.NewWeighted(int64(o.concurrency()))
	chans := make([]chan taskResult, len(adapters))
	for i, a := range adapters {
		ch := make(chan taskResult, 1)
		chans[i] = ch
		go func(a datasource.Adapter) {
			if err := sem.Acquire(joinCtx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			ch <- o.runTask(joinCtx, a, req)
		}(a)
	}

	collected := make([][]models.Opportunity, len(adapters))
	for i, a := range adapters {
		out := SourceOutcome{Source: a.Source()}
		r, ok := await(joinCtx, chans[i])
		if !ok {
			out.TimedOut = true
			log.Warn("source did not finish before deadline", zap.String("source", string(a.Source())))
		} else {
			out.Discovered = len(r.records)
			out.Panicked = r.panicked
			out.Elapsed = r.elapsed
			collected[i] = r.records
		}
		res.Sources = append(res.Sources, out)
	}

	o.persist(ctx, log, &res, collected)

	res.FinishedAt = o.clock()
	span.SetAttributes(attribute.Int("discovered", res.Discovered), attribute.Int("saved", res.Total))
	log.Info("discovery pass completed",
		zap.Int("discovered", res.Discovered),
		zap.Int("saved", res.Total),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res
}

// await waits for a task result; once the deadline passes, a result that is already
// buffered is still accepted.
func await(ctx context.Context, ch <-chan taskResult) (taskResult, bool) {
	select {
	case r := <-ch:
		return r, true
	case <-ctx.Done():
		select {
		case r := <-ch:
			return r, true
		default:
			return taskResult{}, false
		}
	}
}

func (o *Orchestrator) runTask(ctx context.Context, a datasource.Adapter, req Request) (r taskResult) {
	start := o.clock()
	ctx, span := o.tracerOrDefault().Start(ctx, "discovery.source", trace.WithAttributes(
		attribute.String("source", string(a.Source())),
	))
	defer span.End()
	defer func() {
		r.elapsed = o.clock().Sub(start)
		if p := recover(); p != nil {
			o.logger().Error("source task panicked", zap.String("source", string(a.Source())), zap.Any("panic", p))
			r.records = nil
			r.panicked = true
		}
	}()
	r.records = a.Discover(ctx, req.query())
	return r
}

// persist saves on a context detached from the caller deadline so a slow pass does not
// drop what it already collected.
func (o *Orchestrator) persist(ctx context.Context, log *zap.Logger, res *PassResult, collected [][]models.Opportunity) {
	for i := range collected {
		res.Discovered += len(collected[i])
	}
	if o.Sink == nil {
		res.Total = res.Discovered
		for i := range res.Sources {
			res.Sources[i].Saved = res.Sources[i].Discovered
		}
		return
	}
	timeout := o.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	for i, recs := range collected {
		for _, rec := range recs {
			if _, err := o.Sink.Save(saveCtx, rec); err != nil {
				res.Sources[i].Failed++
				res.Failed++
				log.Warn("save opportunity failed",
					zap.String("source", string(rec.Source)),
					zap.String("external_id", rec.ExternalID),
					zap.Error(err),
				)
				continue
			}
			res.Sources[i].Saved++
			res.Total++
		}
	}
}

// DiscoverFromSource runs one enabled adapter and returns its records without
// persisting them.
func (o *Orchestrator) DiscoverFromSource(ctx context.Context, name string, req Request) ([]models.Opportunity, error) {
	if o == nil || o.Registry == nil {
		return nil, ErrSourceNotFound
	}
	a, ok := o.Registry.Lookup(name)
	if !ok || !a.IsEnabled(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	if o.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.PassTimeout)
		defer cancel()
	}
	r := o.runTask(ctx, a, req)
	if r.records == nil {
		return []models.Opportunity{}, nil
	}
	return r.records, nil
}

func (o *Orchestrator) HealthOfAll(ctx context.Context) map[models.DataSource]health.Status {
	out := map[models.DataSource]health.Status{}
	if o == nil || o.Registry == nil {
		return out
	}
	for _, a := range o.Registry.All() {
		out[a.Source()] = a.HealthStatus(ctx)
	}
	return out
}

// EnabledSources lists enabled adapter names in registration order.
func (o *Orchestrator) EnabledSources(ctx context.Context) []string {
	adapters := o.enabled(ctx)
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, string(a.Source()))
	}
	return out
}

// Healthy reports whether every enabled source is UP, and lists the ones that are not.
func (o *Orchestrator) Healthy(ctx context.Context) (bool, []models.DataSource) {
	var bad []models.DataSource
	for _, a := range o.enabled(ctx) {
		if st := a.HealthStatus(ctx); !st.Healthy {
			bad = append(bad, a.Source())
		}
	}
	sort.Slice(bad, func(i, j int) bool { return bad[i] < bad[j] })
	return len(bad) == 0, bad
}

func (o *Orchestrator) enabled(ctx context.Context) []datasource.Adapter {
	if o == nil || o.Registry == nil {
		return nil
	}
	var out []datasource.Adapter
	for _, a := range o.Registry.All() {
		if a.IsEnabled(ctx) {
			out = append(out, a)
		}
	}
	return out
}

func (o *Orchestrator) concurrency() int {
	if o.MaxConcurrency > 0 {
		return o.MaxConcurrency
	}
	return defaultMaxConcurrency
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) tracerOrDefault() trace.Tracer {
	if o.tracer == nil {
		return otel.Tracer("github.com/psehrawa/opportunities-finder/internal/discovery")
	}
	return o.tracer
}

func (o *Orchestrator) clock() time.Time {
	if o == nil || o.now == nil {
		return time.Now()
	}
	return o.now()
}
