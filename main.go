// Command snake-game hosts the snake game engine.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a game in the terminal
//  4. "autopilot" lets the built-in strategy play through the API
//  5. "validate" checks every configuration file
//
// The server supports graceful shutdown, periodic session cleanup,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/snake-game/api"
	"github.com/wricardo/snake-game/autopilot"
	"github.com/wricardo/snake-game/game/config"
	"github.com/wricardo/snake-game/game/service"
	"github.com/wricardo/snake-game/game/session"
	"github.com/wricardo/snake-game/transport/mcp"
	"github.com/wricardo/snake-game/transport/terminal"
	"github.com/wricardo/snake-game/transport/websocket"
	"github.com/wricardo/snake-game/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Snake Game Server"
)

// services groups the long-lived components shared by the HTTP and MCP modes
type services struct {
	configs  *config.Manager
	sessions *session.Manager
	game     service.GameService
	hub      *websocket.Hub
}

// newServices wires config/session managers, the game service and the WebSocket hub.
// Every engine transition is pushed to the hub through the session listener,
// and removed sessions disconnect their WebSocket clients.
func newServices(configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager)

	hub := websocket.NewHub(websocket.NewServiceInput(gameService))
	sessionManager.SetListener(hub.BroadcastSnapshot)
	sessionManager.SetRemoveListener(hub.CloseSession)

	return &services{
		configs:  configManager,
		sessions: sessionManager,
		game:     gameService,
		hub:      hub,
	}, nil
}

// handler mounts the API server and the /mcp endpoint proxying to baseURL
func (s *services) handler(baseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(s.game, s.hub))
	mux.Handle("/mcp", mcp.NewClient(baseURL))
	return mux
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.DurationFlag{
			Name:    "session-timeout",
			Value:   24 * time.Hour,
			Usage:   "Remove sessions not accessed for this long",
			Sources: cli.EnvVars("SESSION_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:  "cleanup-interval",
			Value: time.Hour,
			Usage: "How often expired sessions are removed",
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
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "snake-game",
		Usage:   AppName,
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		}, serverFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags:   serverFlags(),
				Action:  runHTTPServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server when needed",
				Flags:   []cli.Flag{apiURLFlag()},
				Action:  runStdioMCP,
			},
			{
				Name:  "autopilot",
				Usage: "Let the built-in strategy play through the API",
				Flags: []cli.Flag{
					apiURLFlag(),
					&cli.StringFlag{
						Name:  "config",
						Usage: "Configuration for the new session",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Play an existing session instead of creating one",
					},
					&cli.IntFlag{
						Name:  "games",
						Value: 1,
						Usage: "Number of games to play",
					},
					&cli.IntFlag{
						Name:  "max-ticks",
						Value: 5000,
						Usage: "Give up on a game after this many ticks",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause between ticks, e.g. 100ms to watch over WebSocket",
					},
				},
				Action: runAutopilot,
			},
			{
				Name:      "play",
				Usage:     "Play in the terminal",
				ArgsUsage: "[config]",
				Action:    runPlay,
			},
			{
				Name:   "validate",
				Usage:  "Validate every configuration file",
				Action: runValidate,
			},
		},
	}
}

// main loads .env, then runs the selected command until it returns or a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s", AppName, Version)

	svc, err := newServices(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	defer svc.sessions.CloseAll()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go svc.hub.Run(ctx)
	go sessionCleanupRoutine(ctx, svc.sessions, cmd.Duration("cleanup-interval"), cmd.Duration("session-timeout"))

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := svc.handler(fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err = <-errCh:
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// runNgrokTunnel serves handler through a public ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// apiAvailable reports whether a game API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ensureAPI returns the URL of a running game API.
// It reuses the external API when one answers; otherwise it starts an internal
// HTTP API bound to a random loopback port. The returned func shuts it down.
func ensureAPI(ctx context.Context, cmd *cli.Command) (string, func(), error) {
	baseURL := cmd.String("api-url")
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiAvailable(baseURL) {
		log.Printf("External API server found at %s", baseURL)
		return baseURL, func() {}, nil
	}
	log.Printf("No external API server found, starting internal HTTP server")

	svc, err := newServices(cmd.String("config-dir"))
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		svc.sessions.CloseAll()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL = "http://" + listener.Addr().String()

	hubCtx, cancelHub := context.WithCancel(ctx)
	go svc.hub.Run(hubCtx)
	httpServer := &http.Server{Handler: svc.handler(baseURL)}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()
	log.Printf("Internal HTTP server on %s", baseURL)

	return baseURL, func() {
		httpServer.Close()
		cancelHub()
		svc.sessions.CloseAll()
	}, nil
}

func apiURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "api-url",
		Value:   "http://localhost:8080",
		Usage:   "External API server to reuse when it is running",
		Sources: cli.EnvVars("SNAKE_API_URL"),
	}
}

// runStdioMCP runs an MCP stdio server against an external or internal API
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL, shutdown, err := ensureAPI(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runAutopilot plays games with the built-in strategy and prints one line per game
func runAutopilot(ctx context.Context, cmd *cli.Command) error {
	baseURL, shutdown, err := ensureAPI(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	client := autopilot.NewClient(baseURL)
	if id := cmd.String("session"); id != "" {
		client.UseSession(id)
	} else if _, err := client.CreateSession(ctx, cmd.String("config")); err != nil {
		return err
	}

	strategy := autopilot.NewStrategy()
	opts := autopilot.Options{
		MaxTicks: int(cmd.Int("max-ticks")),
		Delay:    cmd.Duration("delay"),
		Verbose:  cmd.Bool("debug"),
	}

	best := 0
	games := int(cmd.Int("games"))
	for game := 1; game <= games; game++ {
		result, err := autopilot.Play(ctx, client, strategy, opts)
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
		fmt.Printf("game %d: %s score=%d length=%d ticks=%d", game, result.Phase, result.Score, result.Length, result.Ticks)
		if result.Cause != "" {
			fmt.Printf(" cause=%s", result.Cause)
		}
		fmt.Println()
		best = max(best, result.Score)
	}
	fmt.Printf("session %s best score %d\n", client.SessionID(), best)
	return nil
}

// runPlay plays one game in the terminal with the named or default config
func runPlay(ctx context.Context, cmd *cli.Command) error {
	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	gameConfig := configManager.GetDefault()
	if name := cmd.Args().First(); name != "" {
		if gameConfig, err = configManager.LoadConfig(name); err != nil {
			return err
		}
	}

	// Log output would corrupt the alternate screen
	log.SetOutput(io.Discard)
	return terminal.Run(ctx, gameConfig)
}

// runValidate prints a validation report for every configuration file
func runValidate(ctx context.Context, cmd *cli.Command) error {
	results, err := validate.Dir(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	if !validate.Report(os.Stdout, results) {
		return cli.Exit("", 1)
	}
	return nil
}
