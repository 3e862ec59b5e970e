package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/config"
	cronrunner "github.com/psehrawa/opportunities-finder/internal/cron"
	"github.com/psehrawa/opportunities-finder/internal/db"
	"github.com/psehrawa/opportunities-finder/internal/events"
	"github.com/psehrawa/opportunities-finder/internal/handler"
	"github.com/psehrawa/opportunities-finder/internal/logger"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/paas"
	gormrepository "github.com/psehrawa/opportunities-finder/internal/repository/gorm"
	"github.com/psehrawa/opportunities-finder/internal/service"
	"github.com/psehrawa/opportunities-finder/internal/tracing"

	_ "github.com/psehrawa/opportunities-finder/docs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and scheduled jobs",
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log, zap.String("service", cfg.App.Name))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing, cfg.App.Env)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	c, err := newCore(context.Background(), cfg, logger, settingsSvc)
	if err != nil {
		logger.Fatal("init discovery failed", zap.Error(err))
	}

	paasClient := initPaaSClient(logger)
	hub := events.NewStreamHub(logger)
	publisher := buildPublisher(cfg, logger, settingsSvc, hub, paasClient)

	manager := &opportunity.Manager{
		Repo:        store,
		Analytics:   store,
		Engine:      c.engine,
		Publisher:   publisher,
		Logger:      logger,
		Concurrency: cfg.Scoring.Concurrency,
	}
	orch := c.orchestrator(manager)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	engine.Use(paas.RequireBearerMiddleware())
	engine.Use(paas.InjectClientMiddleware(paasClient))
	engine.Use(paas.PaaSWriteAuditMiddleware(paasClient, logger))

	healthHandler := &handler.HealthHandler{
		Service: cfg.App.Name,
		Started: time.Now(),
		Ping:    func(ctx context.Context) error { return db.Ping(ctx, dbConn) },
		Sources: orch,
	}
	healthHandler.Register(engine)
	paas.RegisterDocs(engine)

	oppHandler := &handler.OpportunityHandler{Service: manager}
	oppHandler.Register(engine)
	analyticsHandler := &handler.AnalyticsHandler{Service: manager}
	analyticsHandler.Register(engine)
	discoveryHandler := &handler.DiscoveryHandler{
		Discovery:     orch,
		Opportunities: manager,
		Rates:         c.governor,
		States:        store,
		DefaultSince:  cfg.Discovery.Since,
		DefaultLimit:  cfg.Discovery.LimitPerSource,
		Lookback:      cfg.Scoring.Lookback,
	}
	discoveryHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{Settings: settingsSvc}
	settingsHandler.Register(engine)
	if cfg.Events.Stream {
		streamHandler := &handler.StreamHandler{Hub: hub}
		streamHandler.Register(engine)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if paasClient != nil {
		baseCtx = paas.WithClient(ctx, paasClient)
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, baseCtx)
		jobs := &cronrunner.Jobs{
			Discovery: orch,
			Manager:   manager,
			States:    store,
			Switches:  settingsSvc,
			Logger:    logger,
			Discover:  cfg.Discovery,
			Scoring:   cfg.Scoring,
			Countries: parseCountries(cfg.Discovery.Countries),
		}
		if err := jobs.Register(cronRunner, cfg.Cron); err != nil {
			logger.Fatal("cron schedule failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}

// buildPublisher fans opportunity events out to every configured sink. Outbound
// notification sinks sit behind their feature switch.
func buildPublisher(cfg config.Config, logger *zap.Logger, switches events.Switches, hub *events.StreamHub, paasClient *paas.Client) events.Publisher {
	var out events.Multi
	if cfg.Events.Log {
		out = append(out, events.LogPublisher{Logger: logger})
	}
	if cfg.Events.Stream && hub != nil {
		out = append(out, hub)
	}
	if cfg.Events.PaaS {
		out = append(out, events.PaaSPublisher{Client: paasClient})
	}
	if cfg.Events.Webhook.Enabled {
		if strings.TrimSpace(cfg.Events.Webhook.URL) == "" {
			logger.Warn("webhook events enabled without url")
		} else {
			out = append(out, events.Gated{
				Key:       service.FeatureEventsWebhook,
				Switches:  switches,
				Publisher: events.NewWebhookPublisher(cfg.Events.Webhook.URL, cfg.Events.Webhook.Timeout),
			})
		}
	}
	if cfg.Events.Telegram.Enabled {
		tg, err := events.NewTelegramPublisher(cfg.Events.Telegram.BotToken, cfg.Events.Telegram.ChatID, cfg.Scoring.Thresholds.High)
		if err != nil {
			logger.Warn("telegram events disabled", zap.Error(err))
		} else {
			out = append(out, events.Gated{
				Key:       service.FeatureEventsTelegram,
				Switches:  switches,
				Publisher: tg,
			})
		}
	}
	return out
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func initPaaSClient(logger *zap.Logger) *paas.Client {
	base := strings.TrimSpace(os.Getenv("OF_PAAS_API_BASE"))
	apiKey := strings.TrimSpace(os.Getenv("OF_PAAS_API_KEY"))
	if base == "" || apiKey == "" {
		return nil
	}

	p := &paas.Client{BaseURL: base, APIKey: apiKey}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		if logger != nil {
			logger.Warn("paas login failed (audit logs disabled)", zap.Error(err))
		}
		return nil
	}
	if logger != nil {
		logger.Info("paas login ok")
	}
	return p
}
