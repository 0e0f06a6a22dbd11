package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/clinicmgr/clinic-api/internal/config"
	"github.com/clinicmgr/clinic-api/internal/handler"
	appointmentHandler "github.com/clinicmgr/clinic-api/internal/handler/appointment"
	authHandler "github.com/clinicmgr/clinic-api/internal/handler/auth"
	diagnosisHandler "github.com/clinicmgr/clinic-api/internal/handler/diagnosis"
	doctorHandler "github.com/clinicmgr/clinic-api/internal/handler/doctor"
	fileHandler "github.com/clinicmgr/clinic-api/internal/handler/file"
	patientHandler "github.com/clinicmgr/clinic-api/internal/handler/patient"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/repository/postgres"
	"github.com/clinicmgr/clinic-api/internal/router"
	appointmentService "github.com/clinicmgr/clinic-api/internal/service/appointment"
	authService "github.com/clinicmgr/clinic-api/internal/service/auth"
	diagnosisService "github.com/clinicmgr/clinic-api/internal/service/diagnosis"
	doctorService "github.com/clinicmgr/clinic-api/internal/service/doctor"
	fileService "github.com/clinicmgr/clinic-api/internal/service/file"
	patientService "github.com/clinicmgr/clinic-api/internal/service/patient"
	"github.com/clinicmgr/clinic-api/internal/storage"
	"github.com/clinicmgr/clinic-api/pkg/hasher"
	"github.com/clinicmgr/clinic-api/pkg/logger"
	"github.com/clinicmgr/clinic-api/pkg/token"
)

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

	passwordHasher := hasher.NewArgon2Hasher(hasher.DefaultParams())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.Bootstrap(ctx, db, passwordHasher, cfg.SeedTestUsers); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to bootstrap database")
	}
	cancel()

	tokenSvc, err := token.NewService(cfg.JWT.Secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	objectStore, err := storage.NewMinioStore(cfg.ObjectStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object store")
	}

	var limiter *authService.LoginLimiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis url")
		}
		limiter = authService.NewLoginLimiter(redis.NewClient(opts), appLogger)
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	diagnosisRepo := postgres.NewDiagnosisRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	fileRepo := postgres.NewFileRepository(base)
	relations := postgres.NewRelationStore(base)

	// Services
	engine := policy.NewEngine(relations)
	authSvc := authService.NewService(userRepo, passwordHasher, tokenSvc, limiter, cfg.JWT.Expiry())
	patientSvc := patientService.NewService(patientRepo, engine)
	doctorSvc := doctorService.NewService(doctorRepo, engine)
	diagnosisSvc := diagnosisService.NewService(diagnosisRepo, engine)
	appointmentSvc := appointmentService.NewService(appointmentRepo, engine)
	fileSvc := fileService.NewService(fileRepo, objectStore, engine, appLogger)

	// Router
	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorSvc),
		diagnosisHandler.NewHandler(diagnosisSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		fileHandler.NewHandler(fileSvc),
		handler.NewHealthHandler(db),
		router.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
