// Package app wires the application components together.
package app

import (
	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/handlers"
	"github.com/akashstwt/scraper-backend/internal/jobs"
	"github.com/akashstwt/scraper-backend/internal/mailer"
	"github.com/akashstwt/scraper-backend/internal/registry"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Registry     *registry.Registry
	Mailer       *mailer.Service
	Orchestrator *jobs.Orchestrator

	APIHandler    *handlers.APIHandler
	ScrapeHandler *handlers.ScrapeHandler
	StatusHandler *handlers.StatusHandler
}

// New builds the application graph from configuration
func New(config *common.Config) *App {
	logger := common.GetLogger()

	reg := registry.New()
	mail := mailer.NewService(config.SMTP, logger)
	orchestrator := jobs.NewOrchestrator(reg, mail, config, logger)

	return &App{
		Config:        config,
		Logger:        logger,
		Registry:      reg,
		Mailer:        mail,
		Orchestrator:  orchestrator,
		APIHandler:    handlers.NewAPIHandler(),
		ScrapeHandler: handlers.NewScrapeHandler(orchestrator),
		StatusHandler: handlers.NewStatusHandler(reg),
	}
}

// Shutdown drains in-flight jobs so accepted work is not abandoned
func (a *App) Shutdown() {
	a.Logger.Info().Msg("Waiting for in-flight jobs to finish")
	a.Orchestrator.Wait()
}
