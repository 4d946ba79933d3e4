package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"content-importer/core/config"
	"content-importer/core/database"
	"content-importer/core/datastore"
	"content-importer/core/loader"
	"content-importer/core/logger"
	"content-importer/core/middleware/auth"
	"content-importer/core/middleware/rayid"
	"content-importer/core/reconcile"
	"content-importer/core/schema"

	"content-importer/feature/importer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "content-importer/docs/swagger"
)

// @title Content Importer API
// @version 1.0
// @description API for importing records into the content database.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the content importer server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Load Collection Schemas
		registry, err := schema.LoadFile(cfg.Schema.Path)
		if err != nil {
			logg.Fatal("Failed to load schema document", zap.Error(err))
		}

		// 4. Connect to Database (Optional: the importer feature stays
		// disabled without it)
		var gateway reconcile.Gateway
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			logg.Info("Connected to content database")

			// Surface schema/registry drift at startup instead of on the
			// first import
			tables := make([]string, 0, len(registry.Names()))
			for _, name := range registry.Names() {
				col, _ := registry.Collection(name)
				tables = append(tables, col.Table)
			}
			if missing := database.VerifyTables(db, tables); len(missing) > 0 {
				logg.Warn("Collections without backing tables", zap.Strings("tables", missing))
			}

			gateway = datastore.NewGateway(db, registry, logg)
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(importer.NewFeature(gateway, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
