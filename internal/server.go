package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mkrajina/fitlog/internal/auth"
	"github.com/mkrajina/fitlog/internal/config"
	"github.com/mkrajina/fitlog/internal/db"
	"github.com/mkrajina/fitlog/internal/exercises"
	"github.com/mkrajina/fitlog/internal/middleware"
	"github.com/mkrajina/fitlog/internal/telemetry/metrics"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/internal/users"
	"github.com/mkrajina/fitlog/internal/workouts"
	"github.com/mkrajina/fitlog/pkg"
)

const exercisesListCacheSizeBytes = 10 * 1024 * 1024

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	authService *auth.Service

	usersRepo     *users.Repo
	exercisesRepo *exercises.Repo
	workoutsRepo  *workouts.Repo

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config           *config.Config
	JWTSecret        string
	GoogleClientID   string
	RedisPassword    string
	PostgresPassword string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.Config.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if params.Config.AutoMigrate {
		if err := db.Migrate(db.DatabaseURL(
			params.Config.PostgresHost,
			params.Config.PostgresPort,
			params.Config.PostgresDBName,
			params.PostgresPassword,
		)); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("fitlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(
		params.Config.HoneycombTracingEnabled,
		"fitlog-backend", rdb,
	)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	googleVerifier, err := auth.NewGoogleTokenVerifier(ctx, params.GoogleClientID, tracedHttpClient)
	if err != nil {
		return nil, fmt.Errorf("new google token verifier: %w", err)
	}

	usersRepo := users.NewRepo(dbPool)
	authService := auth.NewService(
		usersRepo,
		auth.NewTokenService(params.JWTSecret),
		googleVerifier,
	)

	return &Server{
		config: params.Config,
		dbPool: dbPool,

		redisClient: rdb,
		authService: authService,

		usersRepo:     usersRepo,
		exercisesRepo: exercises.NewRepo(dbPool),
		workoutsRepo:  workouts.NewRepo(dbPool),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fitlog-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "fitlog backend, running on "+s.config.Environment)
	}).Methods("GET").Name("root")

	authHandler := auth.NewHandler(s.authService, s.metricsManager)

	loginSubrouter := r.PathPrefix("/api/auth").Subrouter()
	loginSubrouter.HandleFunc("/register", authHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	loginSubrouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.HandleFunc("/google", authHandler.HandleGoogleAuth).Methods("POST", "OPTIONS").Name("login-google")

	// rate limit the anonymous auth endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	r.HandleFunc("/api/auth/logout", authHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/api/auth/me", authHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	r.HandleFunc("/api/auth/profile", authHandler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")

	exercisesHandler := exercises.NewHandler(
		s.exercisesRepo,
		freecache.NewCache(exercisesListCacheSizeBytes),
		s.metricsManager,
	)
	// the categories route has to come before the {id} one
	r.HandleFunc("/api/exercises/categories/list", exercisesHandler.HandleCategories).Methods("GET", "OPTIONS").Name("exercise-categories")
	r.HandleFunc("/api/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/api/exercises", exercisesHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/api/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")

	workoutsHandler := workouts.NewHandler(
		workouts.NewService(s.workoutsRepo, s.exercisesRepo, s.usersRepo),
		s.metricsManager,
	)
	r.HandleFunc("/api/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/api/workouts", workoutsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/api/workouts/{id}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/api/workouts/{id}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/api/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/api/workouts/{id}/exercises", workoutsHandler.HandleAppendExercise).Methods("POST", "OPTIONS").Name("workout-add-exercise")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(
		s.config.PrometheusMetricsHost,
		strconv.Itoa(s.config.PrometheusMetricsPort),
	)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
