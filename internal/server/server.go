package server

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/parlorchat/parlor/internal/auth"
	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/config"
	"github.com/parlorchat/parlor/internal/database"
	"github.com/parlorchat/parlor/internal/domain"
	"github.com/parlorchat/parlor/internal/handlers"
	"github.com/parlorchat/parlor/internal/logging"
	"github.com/parlorchat/parlor/internal/middleware"
	"github.com/parlorchat/parlor/internal/pubsub"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	DB       *surrealdb.DB
	Cfg      *config.Config
	bus      *pubsub.WatermillBridge
	registry *chat.Registry
	gateway  *chat.Gateway
	users    domain.UserRepository
	messages domain.MessageRepository
	tokens   *auth.TokenService
	stopBus  context.CancelFunc
}

// New creates a new Server instance with all dependencies wired.
func New() *Server {
	// Load environment variables from a .env file if one exists.
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet, so the standard logger has to do here.
		log.Println("No .env file found, relying on environment variables")
	}

	logging.New() // Initialize the structured logger
	cfg := config.New()
	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	userStore := database.NewUserStore(db)
	messageStore := database.NewMessageStore(db)
	tokens := auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)

	// The in-process bus carries the ephemeral signals (typing, joins,
	// departures); the relay consumes them until the server shuts down.
	bus := pubsub.NewWatermillBridge()
	busCtx, stopBus := context.WithCancel(context.Background())

	registry := chat.NewRegistry()
	pipeline := chat.NewPipeline(registry, messageStore)
	relay := chat.NewRelay(pipeline, bus)
	if err := relay.Start(busCtx); err != nil {
		slog.Error("Failed to start signal relay", "error", err)
		stopBus()
		os.Exit(1)
	}
	gateway := chat.NewGateway(registry, pipeline, tokens, userStore, bus, cfg.HistoryLimit)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	return &Server{
		E:        e,
		DB:       db,
		Cfg:      cfg,
		bus:      bus,
		registry: registry,
		gateway:  gateway,
		users:    userStore,
		messages: messageStore,
		tokens:   tokens,
		stopBus:  stopBus,
	}
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.users
}

// Registry is a getter for the server's presence registry, useful for testing.
func (s *Server) Registry() *chat.Registry {
	return s.registry
}
