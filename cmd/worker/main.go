package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/clinicmgr/clinic-api/internal/config"
	"github.com/clinicmgr/clinic-api/internal/email"
	"github.com/clinicmgr/clinic-api/internal/repository/postgres"
	"github.com/clinicmgr/clinic-api/internal/service/reminder"
	"github.com/clinicmgr/clinic-api/pkg/logger"
)

var (
	digestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_digests_sent_total",
		Help: "The total number of reminder digests sent",
	})
	digestsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_digests_failed_total",
		Help: "The total number of failed reminder digests",
	})
	appointmentsReminded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_appointments_total",
		Help: "The total number of appointments included in digests",
	})
)

const digestInterval = time.Hour

func setupMetricsServer(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Fatal(err, "metrics server failed")
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(postgres.NewBaseRepository(db))
	sender := email.NewSMTPSender(cfg.SMTP)
	reminderSvc := reminder.NewService(appointmentRepo, sender, cfg.SMTP.Notify, 24, appLogger)

	setupMetricsServer(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(digestInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := reminderSvc.SendDigest(ctx)
				if err != nil {
					digestsFailed.Inc()
					appLogger.Error(err, "reminder digest failed")
					continue
				}
				if count > 0 {
					digestsSent.Inc()
					appointmentsReminded.Add(float64(count))
					appLogger.Info("reminder digest sent", "appointments", count)
				}
			}
		}
	}()
	appLogger.Info("reminder worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("worker shutting down")
}
