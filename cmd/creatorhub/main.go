package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/CreatorHub/app/controllers"
	"github.com/ManuelReschke/CreatorHub/app/repository"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/archive"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/cache"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/database"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/env"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/errreport"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/jobqueue"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/metrics"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/middleware"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/notify"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/router"
	"github.com/ManuelReschke/CreatorHub/internal/pkg/webhook"
)

func main() {
	app, manager := NewApplication()
	manager.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("[App] Shutting down...")
		manager.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[App] Shutdown error: %v", err)
		}
	}()

	if err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))); err != nil {
		log.Fatal(err)
	}
}

// NewApplication wires the payment pipeline and returns the HTTP app together
// with the replay manager, which the caller starts.
func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	if !env.IsDev() {
		log.SetLevel(log.LevelInfo)
	}

	stripeCfg, err := env.LoadStripeConfig()
	if err != nil {
		log.Fatalf("[App] %v", err)
	}

	db := database.SetupDatabase()
	redisClient := cache.SetupCache()
	metrics.Register()

	// error reporting: logs plus a Redis ring buffer for the admin API
	recentErrors := errreport.NewRedisReporter(redisClient)
	reporter := errreport.Multi{errreport.NewLogReporter(), recentErrors}

	repos := repository.NewFactory(db).GetRepositories()
	billingRepo := billing.NewRepository(db)
	ledger := billing.NewLedger(billingRepo)

	dispatcher := webhook.NewDefaultDispatcher(webhook.Deps{
		Repos:         repos,
		Subscriptions: billing.NewSubscriptionManager(billingRepo),
		Fetcher:       billing.NewStripeClient(stripeCfg.SecretKey),
		Notifier:      notify.NewDispatcher(notify.NewSMTPMailerFromEnv(), reporter),
		Contacts:      webhook.NewUserContacts(repos.User),
	}, reporter)

	processor := webhook.NewProcessor(billing.NewVerifier(stripeCfg.WebhookSecret), ledger, dispatcher, reporter)
	if archiver := setupArchive(); archiver != nil {
		processor.WithArchiver(archiver)
	}

	queue := jobqueue.NewQueue(redisClient, processor, env.GetInt("JOB_QUEUE_WORKERS", 3))
	manager := jobqueue.NewManager(queue, ledger, jobqueue.LoadManagerConfig())

	basePath := findBasePath()

	app := fiber.New(fiber.Config{
		AppName:   "CreatorHub",
		BodyLimit: 1 << 20, // provider events are small
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	adminCreds := middleware.LoadAdminCredentials()

	// fiber metrics + prometheus
	app.Get("/metrics", middleware.RequireAdmin(adminCreds), monitor.New())
	app.Get("/metrics/prometheus", middleware.RequireAdmin(adminCreds), metrics.Handler())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app,
		router.NewApiRouter(controllers.NewWebhookController(processor)),
		router.NewAdminRouter(
			controllers.NewAdminWebhookController(ledger, queue, recentErrors),
			adminCreds,
			middleware.NewLimiterStorage(redisClient),
		),
	)

	return app, manager
}

func setupArchive() webhook.Archiver {
	cfg, err := archive.LoadConfig()
	if err != nil {
		log.Fatalf("[Archive] %v", err)
	}
	if !cfg.IsEnabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := archive.NewClient(ctx, cfg)
	if err != nil {
		// the archive is optional, events are still processed without it
		log.Errorf("[Archive] Disabled: %v", err)
		return nil
	}
	return client
}

func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/creatorhub to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			return path
		}
	}
	panic("Could not find project root directory")
}
