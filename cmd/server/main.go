package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aperture-science/city-lens-api/internal/config"
	"github.com/aperture-science/city-lens-api/internal/database"
	"github.com/aperture-science/city-lens-api/internal/handler"
	"github.com/aperture-science/city-lens-api/internal/logs"
	"github.com/aperture-science/city-lens-api/internal/queue"
	"github.com/aperture-science/city-lens-api/internal/repository"
	"github.com/aperture-science/city-lens-api/internal/router"
	"github.com/aperture-science/city-lens-api/internal/service"
)

func main() {
	// .env is optional; a real environment wins over the file.
	_ = godotenv.Load()

	cfg := config.Load()
	logs.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migrations failed")
	}

	users := repository.NewUserRepo(db)
	sessionsRepo := repository.NewSessionRepo(db)
	reports := repository.NewReportRepo(db)

	sessions := service.NewSessionManager(users, sessionsRepo, service.ParseSessionPolicy(cfg.SessionPolicy))
	accounts := service.NewAccountService(users, sessions, cfg.BcryptCost)
	reportSvc := service.NewReportService(sessions, reports, queue.NewPublisher())
	listings := service.NewListingService(sessions, reports)

	// Background consumer mirrors report lifecycle events to a local
	// log file; it reconnects on its own and never blocks startup.
	go queue.StartReportEventsConsumer()

	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Users:    handler.NewUserHandler(accounts),
		Reports:  handler.NewReportHandler(reportSvc, listings),
		Listings: handler.NewListingHandler(listings),
	}, rdb)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
