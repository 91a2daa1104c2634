package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/meanbean/transport/mcp"
)

// apiReachable reports whether a server answers /health at baseURL.
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the game on a random loopback port and returns
// its base URL. The server stops with ctx.
func startInternalAPI(ctx context.Context, s Settings) (string, func(), error) {
	svc, err := initializeServices(s)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		svc.sessions.Close()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(ctx)
	go svc.hub.Run(ctx)
	svc.sessions.StartJanitor(ctx, s.JanitorInterval, s.SessionTTL)

	httpServer := &http.Server{Handler: newRouter(svc, baseURL)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	stop := func() {
		cancel()
		httpServer.Close()
		svc.sessions.Close()
	}
	return baseURL, stop, nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at s.APIURL
// when one answers, otherwise it starts an internal one.
func runStdioMCP(ctx context.Context, s Settings) error {
	baseURL := s.APIURL
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiReachable(ctx, baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")
		internalURL, stop, err := startInternalAPI(ctx, s)
		if err != nil {
			return err
		}
		defer stop()
		baseURL = internalURL
		log.Printf("Internal HTTP server for MCP stdio on %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
