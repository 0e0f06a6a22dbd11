package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
)

// Handler registers a resource's routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler splits its routes across the public and protected groups.
type AuthHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   int
	RateLimitBurst int
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        AuthHandler
	patientH     Handler
	doctorH      Handler
	diagnosisH   Handler
	appointmentH Handler
	fileH        Handler
	healthH      *handler.HealthHandler
	metrics      *routerMetrics
	registry     *prometheus.Registry
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH AuthHandler,
	patientH Handler,
	doctorH Handler,
	diagnosisH Handler,
	appointmentH Handler,
	fileH Handler,
	healthH *handler.HealthHandler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	engine := gin.New()
	registry := prometheus.NewRegistry()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		patientH:     patientH,
		doctorH:      doctorH,
		diagnosisH:   diagnosisH,
		appointmentH: appointmentH,
		fileH:        fileH,
		healthH:      healthH,
		metrics:      initRouterMetrics(registry),
		registry:     registry,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	if config.RateLimitRPS > 0 {
		engine.Use(middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst).RateLimit())
	}

	return r
}

// registerValidations installs the custom binding tags. The clinicrole tag
// accepts only the closed role set.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("clinicrole", func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		})
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.healthH.LivenessCheck)
		health.GET("/ready", r.healthH.ReadinessCheck)
		health.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}

	r.authH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterProtectedRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.doctorH.RegisterRoutes(protected)
	r.diagnosisH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.fileH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(registry *prometheus.Registry) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}

	registry.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)

	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
