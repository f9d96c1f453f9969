package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-sync/core/loader"
	"inventory-sync/core/logger"
	"inventory-sync/core/metrics"
	"inventory-sync/core/middleware/auth"
	"inventory-sync/core/middleware/rayid"
	"inventory-sync/core/reconcile"
	"inventory-sync/feature/inventorysync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "inventory-sync/docs/swagger"
)

// @title Inventory Sync API
// @version 1.0
// @description Reconciles the network record system into the managed inventory.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// shutdownTimeout bounds how long in-flight runs may take to finish on shutdown.
const shutdownTimeout = 5 * time.Minute

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync API server",
	Long:  `Starts the HTTP server exposing sync runs, run reports and metrics.`,
	RunE:  runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. Configuration and logger
	cfg, logg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	defaults, err := cfg.Sync.Options()
	if err != nil {
		return err
	}

	// 2. Both systems must be reachable at startup
	src, err := openSource(ctx, cfg, logg)
	if err != nil {
		return err
	}
	dst, err := openTarget(cfg, logg)
	if err != nil {
		return err
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	runner := reconcile.NewRunner(src, dst, logg.Named("runner"), reconcile.WithMetrics(metrics.New(registry)))

	// 4. Report archive (optional)
	archive, err := openArchive(ctx, cfg, logg)
	if err != nil {
		return err
	}

	service := inventorysync.NewService(runner, archive, defaults, logg.Named("sync"))

	// 5. Feature loader
	mgr := loader.NewManager()
	mgr.Register(inventorysync.NewFeature(service))

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	if cfg.Server.Docs {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	app.Use(auth.New(auth.Config{
		ApiKey: cfg.Server.ApiKey,
		Skip:   []string{"/metrics", "/swagger"},
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	// 6. Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sig:
	}

	logg.Info("Shutting down server...")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
