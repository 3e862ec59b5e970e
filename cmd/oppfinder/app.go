package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/cache"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/discovery"
	"github.com/psehrawa/opportunities-finder/internal/logger"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
	"github.com/psehrawa/opportunities-finder/internal/scoring"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envOnly, _ := cmd.Flags().GetBool("env-only")
	return config.Load(path, envOnly)
}

// core holds everything discovery needs short of a database.
type core struct {
	cfg      config.Config
	logger   *zap.Logger
	governor *ratelimit.Governor
	registry *datasource.Registry
	engine   *scoring.Engine
}

func newCore(ctx context.Context, cfg config.Config, log *zap.Logger, switches datasource.Switches) (*core, error) {
	engine, err := scoring.NewEngine(cfg.Scoring.Weights, cfg.Scoring.Thresholds)
	if err != nil {
		return nil, err
	}
	counters := cache.Open(ctx, cfg.Redis, log)
	governor := ratelimit.NewGovernor(counters, datasource.LimitsFromConfig(cfg.Sources), log)
	reg := datasource.Build(cfg.Sources, datasource.Deps{
		Governor: governor,
		Switches: switches,
		Logger:   log,
	})
	return &core{cfg: cfg, logger: log, governor: governor, registry: reg, engine: engine}, nil
}

func (c *core) orchestrator(sink discovery.Sink) *discovery.Orchestrator {
	return discovery.New(c.registry, sink, c.cfg.Discovery, c.logger)
}

// cliCore builds a core for the one-shot commands. They run without a database and
// keep stdout for results, so logs go to stderr at warn level unless the config asks
// for more.
func cliCore(cmd *cobra.Command) *core {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.NewCLI(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	c, err := newCore(cmd.Context(), cfg, log, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c
}

func parseCountries(raw []string) []models.Country {
	var out []models.Country
	for _, v := range raw {
		if c, ok := models.ParseCountry(v); ok {
			out = append(out, c)
		}
	}
	return out
}

// collectSink keeps every record in memory instead of persisting it.
type collectSink struct {
	mu    sync.Mutex
	items []models.Opportunity
}

func (s *collectSink) Save(_ context.Context, o models.Opportunity) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, o)
	return &o, nil
}

func (s *collectSink) Items() []models.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Opportunity(nil), s.items...)
}
