package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-booking/internal/clinic"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
	"github.com/hackgods/clinic-booking/internal/metrics"
)

// The audit worker re-checks the booking invariants that the engine enforces
// per request and exports what it finds as a gauge.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	if err := logging.Setup("audit-worker", cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging setup error")
	}

	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("audit-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	m := metrics.New()
	reports := clinic.NewReports(clinic.NewPgStore(pgPool))

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}()

	// Run once at startup
	runOnce(rootCtx, reports, m)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping audit worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, reports, m)
		}
	}
}

func runOnce(ctx context.Context, reports *clinic.Reports, m *metrics.Metrics) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	violations, err := reports.CapacityViolations(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("audit run error")
		return
	}

	m.SetInvariantViolations(metrics.KindCapacity, len(violations))
	for _, v := range violations {
		log.Warn().
			Int("doctor_id", v.DoctorID).
			Int("links", v.Links).
			Int("max_patients_per_hour", v.MaxPatientsPerHour).
			Msg("doctor over capacity")
	}

	log.Info().
		Int("capacity_violations", len(violations)).
		Dur("took", time.Since(start)).
		Msg("audit run complete")
}
