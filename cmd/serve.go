package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"achievement-hub/core/loader"
	"achievement-hub/core/logger"
	"achievement-hub/core/middleware/auth"
	"achievement-hub/core/middleware/rayid"
	"achievement-hub/feature/archive"
	"achievement-hub/feature/backup"
	"achievement-hub/feature/browse"
	hubsync "achievement-hub/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "achievement-hub/docs/swagger"
)

// @title Achievement Hub API
// @version 1.0
// @description Aggregated game achievements across platforms.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the achievement hub server",
	Long: `Loads the library, starts the HTTP API, refreshes the library in the background
and saves it periodically and on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := bootstrap(ctx, options{providers: true, sinks: true})
		if err != nil {
			return err
		}
		logg := rt.logger

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(browse.NewFeature(rt.store, rt.projector, rt.stats, logg))
		mgr.Register(hubsync.NewFeature(rt.sync))
		mgr.Register(archive.NewFeature(rt.archive))
		mgr.Register(backup.NewFeature(rt.backup, rt.store))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(logger.Middleware(logg))

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		go rt.store.Autosave(ctx, rt.cfg.Library.AutosaveInterval())
		go hubsync.NewPoller(rt.sync, rt.cfg.Sync.RefreshInterval(), logg).Start(ctx)

		serveErr := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port), zap.Int("games", rt.store.Len()))
			serveErr <- app.Listen(rt.cfg.Server.Address())
		}()

		select {
		case err = <-serveErr:
			logg.Error("Server stopped", zap.Error(err))
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		rt.sync.Cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout())
		defer cancel()
		if serr := app.ShutdownWithContext(shutdownCtx); serr != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(serr))
		}
		if werr := rt.sync.Wait(shutdownCtx); werr != nil {
			logg.Warn("Sync run still active at shutdown", zap.Error(werr))
		}
		rt.close(shutdownCtx, true)
		return err
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
