package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"source-resolver/core/loader"
	"source-resolver/core/logger"
	"source-resolver/core/middleware/auth"
	"source-resolver/core/middleware/rayid"
	"source-resolver/feature/sources"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the source resolver server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load configuration, logger and materializer
		rt, err := newRuntime()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager()
		src := sources.NewFeature(rt.cfg.Resolver, rt.cfg.Server, rt.materializer, logg)
		mgr.Register(src)

		// 4. RayID first so every log line can be traced
		app.Use(rayid.New())

		// 5. Request logging with Zap + RayID
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

		// 6. Auth
		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", rt.cfg.Server.Port),
				zap.String("descriptors", rt.cfg.Resolver.DescriptorDir),
			)
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := src.Close(); err != nil {
			logg.Warn("Failed to release cached sources", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
