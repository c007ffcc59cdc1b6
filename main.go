// Command game2048 runs the 2048 game server and its planner tools.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "autoplay" lets the planner play one game in the terminal
//  4. "bench" plays many headless games in parallel and prints statistics
//
// Flags control host/port, config and session directories, debug logging,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
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

	"github.com/wricardo/game2048/api"
	"github.com/wricardo/game2048/game/config"
	"github.com/wricardo/game2048/game/service"
	"github.com/wricardo/game2048/game/session"
	"github.com/wricardo/game2048/transport/mcp"
	"github.com/wricardo/game2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

// options holds the flags shared by every command
type options struct {
	host        string
	port        int
	configDir     string
	defaultConfig string
	sessionsDir   string
	debug       bool
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        int(cmd.Int("port")),
		configDir:     cmd.String("config-dir"),
		defaultConfig: cmd.String("default-config"),
		sessionsDir:   cmd.String("sessions-dir"),
		debug:         cmd.Bool("debug"),
		ngrok:         cmd.Bool("ngrok"),
		ngrokAuth:     cmd.String("ngrok-auth"),
		ngrokDomain:   cmd.String("ngrok-domain"),
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "default-config", Usage: "Preset for sessions that name none (default classic)", Sources: cli.EnvVars("DEFAULT_CONFIG")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory where sessions are persisted", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server backed by an HTTP API",
				Action:  runStdioMCP,
			},
			autoplayCommand(),
			benchCommand(),
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// setupLogging routes zerolog through a console writer on stderr so stdout
// stays free for the MCP stdio transport
func setupLogging(debug bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log.Info().Str("version", Version).Msgf("Starting %s", AppName)

	gameService, sessions, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	err = runHTTPServer(ctx, opts, gameService)
	if saveErr := sessions.SaveAllSessions(); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to save sessions on shutdown")
	}
	return err
}

func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)

	gameService, sessions, err := initializeServices(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer sessions.SaveAllSessions()

	return runStdioMCPWithInternalServer(ctx, opts, gameService)
}

// mcpHandler forwards JSON-RPC bodies to the MCP server
func mcpHandler(mcpClient *mcp.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("failed to encode MCP response")
		}
	})
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns once ctx is done.
func runHTTPServer(ctx context.Context, opts options, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := opts.addr()
	mcpClient := mcp.NewClient("http://" + addr)
	apiServer.Handle("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     apiServer,
		ReadTimeout: 15 * time.Second,
		// Auto play requests may search for a long time
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Msgf("HTTP server listening on %s", addr)
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, apiServer)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Info().Msgf("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	// Closing the tunnel unblocks Serve
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Msgf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// initializeServices wires session/config managers and the game service.
// It also starts background routines that stop with ctx.
func initializeServices(ctx context.Context, opts options) (service.GameService, *session.Manager, error) {
	// Config manager first, persistence needs it
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.sessionsDir, configManager)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	if opts.defaultConfig != "" {
		if err := configManager.SetDefault(opts.defaultConfig); err != nil {
			return nil, nil, fmt.Errorf("default config %q: %w", opts.defaultConfig, err)
		}
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("Failed to load persisted sessions")
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager, time.Hour, 24*time.Hour)
	go filesystemSyncRoutine(ctx, sessionManager, persistence, 5*time.Second)
	go reloadOnHangup(ctx, gameService)

	return gameService, sessionManager, nil
}

// reloadOnHangup rereads every preset from disk on SIGHUP
func reloadOnHangup(ctx context.Context, gameService service.GameService) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := gameService.ReloadConfigs(ctx, ""); err != nil {
				log.Error().Err(err).Msg("Failed to reload presets")
				continue
			}
			log.Info().Msg("Presets reloaded")
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("Cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory once their file is deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncWithFilesystem(manager, persistence)
		}
	}
}

func syncWithFilesystem(manager *session.Manager, persistence session.SessionPersistence) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session", sess.ID).Msg("Pruned session from memory (file deleted)")
		}
	}

	if pruned > 0 {
		log.Info().Int("pruned", pruned).Msg("Filesystem sync removed orphaned sessions")
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on the configured address, otherwise it starts an
// internal one on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, opts options, gameService service.GameService) error {
	externalURL := "http://" + opts.addr()
	baseURL := externalURL

	log.Info().Msgf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
	}

	if err == nil && resp.StatusCode < 500 {
		log.Info().Msgf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Info().Msg("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Msgf("Internal HTTP server for MCP stdio on %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
