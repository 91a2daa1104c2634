package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/meanbean/api"
	"github.com/wricardo/meanbean/game/config"
	"github.com/wricardo/meanbean/game/service"
	"github.com/wricardo/meanbean/game/session"
	"github.com/wricardo/meanbean/transport/mcp"
	"github.com/wricardo/meanbean/transport/websocket"
)

// services is everything one HTTP server needs.
type services struct {
	hub      *websocket.Hub
	sessions *session.Manager
	game     service.GameService
}

// initializeServices wires the config and session managers to the game
// service. Sessions run in real time and push every board change to hub.
func initializeServices(s Settings) (*services, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	hub := websocket.NewHub()
	opts := session.Options{
		Realtime: true,
		OnUpdate: hub.BroadcastToSession,
	}
	if s.Debug {
		opts.EngineLog = log.New(os.Stderr, "engine ", log.LstdFlags)
	}
	sessionManager := session.NewManagerWithOptions(opts)

	return &services{
		hub:      hub,
		sessions: sessionManager,
		game:     service.NewGameService(sessionManager, configManager),
	}, nil
}

// mcpHandler answers single JSON-RPC messages posted to /mcp.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

func newRouter(svc *services, baseURL string) http.Handler {
	router := http.NewServeMux()
	router.Handle("/", api.NewServer(svc.game, svc.hub))
	router.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return router
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, s Settings) error {
	svc, err := initializeServices(s)
	if err != nil {
		return err
	}
	defer svc.sessions.Close()

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	router := newRouter(svc, "http://"+addr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc.hub.Run(ctx)
		return nil
	})
	svc.sessions.StartJanitor(ctx, s.JanitorInterval, s.SessionTTL)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if s.Ngrok.Enabled {
		g.Go(func() error {
			serveNgrok(ctx, s.Ngrok, router)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	err = g.Wait()
	log.Println("Server stopped")
	return err
}

// serveNgrok tunnels router through ngrok until ctx is done. Failures are
// logged; the local server keeps running.
func serveNgrok(ctx context.Context, s NgrokSettings, router http.Handler) {
	authToken := s.AuthToken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")
	var tunnel ngrokConfig.Tunnel
	if s.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.Domain))
		log.Printf("Using custom ngrok domain: %s", s.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	tunnelServer := &http.Server{Handler: router}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	url := tun.URL()
	log.Printf("Ngrok tunnel established: %s", url)
	log.Printf("  REST API (ngrok): %s/api", url)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", url)

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}
