package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/2021147588/boheommian-rhapsody/internal/config"
	"github.com/2021147588/boheommian-rhapsody/internal/dashboard"
	"github.com/2021147588/boheommian-rhapsody/internal/dataset"
	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/prefs"
	"github.com/2021147588/boheommian-rhapsody/internal/session"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}

	log := logger.NewWith(cfg.Environment, cfg.LogLevel, os.Stdout)
	log.WithField("simulation_api", cfg.SimulationAPIURL).Info("starting service")

	p, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open preferences")
	}
	defer func() { _ = p.Close() }()

	client := transport.NewClient(cfg.SimulationAPIURL,
		transport.WithRetries(cfg.TransportRetries),
		transport.WithLogger(log),
	)
	svc := dashboard.New(client, session.NewStore(), p,
		dashboard.WithReportCacheTTL(cfg.ReportCacheTTL),
		dashboard.WithLogger(log),
	)

	// seed the dashboard with a saved run, if one is configured
	if cfg.ResultsFile != "" {
		res, err := dataset.Load(cfg.ResultsFile)
		if err != nil {
			log.WithError(err).Warn("saved results not loaded")
		} else {
			svc.Seed(res)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newHandler(svc, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
}
