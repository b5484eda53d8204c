package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobnexus/apiserver/config"
	"github.com/jobnexus/apiserver/internal/db"
	"github.com/jobnexus/apiserver/internal/events"
	"github.com/jobnexus/apiserver/internal/handlers"
	"github.com/jobnexus/apiserver/internal/services"
	"github.com/jobnexus/apiserver/internal/storage"
	"github.com/jobnexus/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	emitter    *events.Bus
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	jobRepo := store.NewJobRepository(dbConn)
	applicationRepo := store.NewApplicationRepository(dbConn)
	blogRepo := store.NewBlogRepository(dbConn)

	emitter, bus, err := newEmitter(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userService := services.NewUserService(userRepo, emitter)
	jobService := services.NewJobService(jobRepo, emitter)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, emitter)
	blogService := services.NewBlogService(blogRepo, emitter)
	analyticsService := services.NewAnalyticsService(userRepo, jobRepo, applicationRepo)

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret, userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/jobs", func(r chi.Router) {
		handlers.JobRouter(r, jobService)
	})
	router.Route("/blog", func(r chi.Router) {
		handlers.BlogRouter(r, blogService, cfg.Storage.PublicBaseURL)
	})
	router.Route("/candidate", func(r chi.Router) {
		handlers.CandidateRouter(r, userService, applicationService, authMiddleware)
	})
	router.Route("/employer", func(r chi.Router) {
		handlers.EmployerRouter(r, userService, jobService, applicationService, authMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, userService, jobService, analyticsService, authMiddleware)
		r.Route("/blog", func(r chi.Router) {
			handlers.BlogAdminRouter(r, blogService, authMiddleware)
		})
	})

	objectStore, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if objectStore != nil {
		if err := objectStore.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure bucket failed: %w", err)
		}
		router.Route("/uploads", func(r chi.Router) {
			handlers.UploadRouter(r, objectStore, cfg.Storage.PublicBaseURL, authMiddleware)
		})
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		emitter:    bus,
	}, nil
}

// newEmitter selects the event backend from config. With no backend
// configured events are dropped.
func newEmitter(ctx context.Context, cfg config.EventsConfig) (events.Emitter, *events.Bus, error) {
	switch cfg.Backend {
	case "":
		return events.Nop{}, nil, nil
	case "rabbitmq":
		client, err := events.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq init failed: %w", err)
		}
		bus := events.NewBus(client, cfg.Channel)
		return bus, bus, nil
	case "pubsub":
		client, err := events.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, nil, fmt.Errorf("pubsub init failed: %w", err)
		}
		bus := events.NewBus(client, cfg.Channel)
		return bus, bus, nil
	default:
		return nil, nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// newObjectStorage selects the object storage backend from config. With
// no backend configured the upload routes are not registered.
func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "":
		log.Println("storage: no backend configured, uploads disabled")
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio init failed: %w", err)
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs init failed: %w", err)
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.emitter != nil {
		_ = s.emitter.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
