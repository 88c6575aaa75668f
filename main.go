// Command memorygame starts the memory match game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags (each with an environment variable) control host/port, preset
// directory, logging, session expiry, and optional ngrok tunneling for easy
// external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/transport/mcp"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

// settings holds the resolved command line and environment configuration
type settings struct {
	Host       string
	Port       int
	ConfigDir  string
	StaticDir  string
	Debug      bool
	LogLevel   string
	SessionTTL time.Duration

	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

func (s settings) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// runFunc starts the selected mode
type runFunc func(ctx context.Context, cfg settings, mode string) error

// newApp builds the command line interface. The first positional argument selects the mode.
func newApp(run runFunc) *cli.Command {
	return &cli.Command{
		Name:      "memorygame",
		Usage:     AppName,
		Version:   Version,
		ArgsUsage: "[server|http|stdio-mcp|mcp-stdio|mcp]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "static-dir",
				Value:   "./static/",
				Usage:   "Directory served at /",
				Sources: cli.EnvVars("STATIC_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging with human-readable output",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Remove sessions not accessed for this long",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := settings{
				Host:         cmd.String("host"),
				Port:         int(cmd.Int("port")),
				ConfigDir:    cmd.String("config-dir"),
				StaticDir:    cmd.String("static-dir"),
				Debug:        cmd.Bool("debug"),
				LogLevel:     cmd.String("log-level"),
				SessionTTL:   cmd.Duration("session-ttl"),
				NgrokEnabled: cmd.Bool("ngrok"),
				NgrokAuth:    cmd.String("ngrok-auth"),
				NgrokDomain:  cmd.String("ngrok-domain"),
			}

			mode := "server"
			if cmd.Args().Present() {
				mode = cmd.Args().First()
			}
			return run(ctx, cfg, mode)
		},
	}
}

// main loads .env, parses flags and starts the selected mode.
func main() {
	// A missing .env file is fine
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(func(ctx context.Context, cfg settings, mode string) error {
		setupLogging(cfg.LogLevel, cfg.Debug)
		if envErr == nil {
			log.Debug().Msg("loaded environment variables from .env file")
		} else if !os.IsNotExist(envErr) {
			log.Warn().Err(envErr).Msg("error loading .env file")
		}
		return runMode(ctx, cfg, mode)
	})

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// setupLogging configures the global zerolog logger. Logs go to stderr so
// stdout stays free for the MCP stdio protocol.
func setupLogging(level string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func runMode(ctx context.Context, cfg settings, mode string) error {
	log.Info().Str("version", Version).Str("mode", mode).Msg("starting " + AppName)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
	case "server", "http":
	default:
		return fmt.Errorf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	a, err := initializeServices(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.Close()

	go sessionCleanupRoutine(ctx, a.sessions, cfg.SessionTTL)

	if mode == "server" || mode == "http" {
		return runHTTPServer(ctx, a, cfg)
	}
	return runStdioMCPWithInternalServer(ctx, a, cfg)
}

// application bundles the wired components of one process
type application struct {
	configs  *config.Manager
	sessions *session.Manager
	hub      *websocket.Hub
	service  service.GameService
}

// Close stops the hub and every pending resolution timer
func (a *application) Close() {
	a.hub.Close()
	a.sessions.Close()
}

// initializeServices wires the preset and session managers, the WebSocket hub
// and the game service. The hub receives every engine event through the
// service and sends client commands back into it.
func initializeServices(cfg settings) (*application, error) {
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	hub := websocket.NewHub()

	gameService := service.NewGameService(sessionManager, configManager, service.WithNotifier(hub))
	hub.SetService(gameService)
	go hub.Run()

	return &application{
		configs:  configManager,
		sessions: sessionManager,
		hub:      hub,
		service:  gameService,
	}, nil
}

// newRouter mounts the API server at / and the MCP proxy endpoint at /mcp
func newRouter(a *application, cfg settings, baseURL string) http.Handler {
	apiServer := api.NewServer(a.service, a.hub, api.WithStaticDir(cfg.StaticDir))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp endpoint until ctx is done.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, a *application, cfg settings) error {
	addr := cfg.addr()
	handler := newRouter(a, cfg, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, handler)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-serverErr:
		log.Error().Err(runErr).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, cfg settings, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	// Serve returns once the tunnel is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	interval := time.Hour
	if ttl < interval {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, a *application, cfg settings) error {
	externalURL := "http://" + cfg.addr()
	log.Info().Str("url", externalURL).Msg("checking for external API server")

	baseURL := externalURL
	if externalAPIAvailable(externalURL) {
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		baseURL = "http://" + internalAddr
		log.Info().Str("addr", internalAddr).Msg("starting internal HTTP server for MCP stdio")

		httpServer := &http.Server{
			Handler: api.NewServer(a.service, a.hub, api.WithStaticDir(cfg.StaticDir)),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
