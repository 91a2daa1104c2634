// Command meanbean hosts the Mean Bean puzzle game.
//
// Commands:
//  1. "serve" (default) runs the HTTP server with the REST API, the
//     WebSocket feed and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server, starting an internal HTTP API when
//     none is reachable
//  3. "play" plays a game in the terminal
//  4. "simulate" lets the greedy bot play seeded games and prints scores
//  5. "watch" prints the live board of a session hosted by a server
//
// Settings come from MEANBEAN_* environment variables (a .env file is
// loaded first) and can be overridden with flags.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/meanbean/telemetry"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Mean Bean"
)

func main() {
	// Load .env file if it exists
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
		log.Fatalf("%s: %v", AppName, err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "meanbean",
		Usage:   "falling bean puzzle server, MCP tools and terminal game",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (MEANBEAN_HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (MEANBEAN_PORT)"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing rule sets (MEANBEAN_CONFIG_DIR)"},
			&cli.BoolFlag{Name: "debug", Usage: "log file and line, and the engine trace"},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server with REST API, WebSocket feed and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel (NGROK_ENABLED)"},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (NGROK_DOMAIN)"},
				},
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Action:  stdioAction,
			},
			{
				Name:  "play",
				Usage: "play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "rule set to play"},
					&cli.BoolFlag{Name: "sound", Usage: "play sound effects (MEANBEAN_SOUND)"},
				},
				Action: playAction,
			},
			{
				Name:  "simulate",
				Usage: "let the bot play seeded games and report scores",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "rule set to play"},
					&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 10, Usage: "number of games"},
					&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
					&cli.IntFlag{Name: "rounds", Value: 500, Usage: "stop a game after this many pairs (0 = until game over)"},
					&cli.BoolFlag{Name: "json", Usage: "print results as JSON lines"},
				},
				Action: simulateAction,
			},
			{
				Name:      "watch",
				Usage:     "print the live board of a session",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "server base URL (MEANBEAN_API_URL)"},
				},
				Action: watchAction,
			},
		},
	}
}

// setup applies logging flags and starts tracing.
func setup(ctx context.Context, cmd *cli.Command) (Settings, func(context.Context) error, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return Settings{}, nil, err
	}
	if s.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	shutdown, err := telemetry.Setup(ctx, "meanbean", s.Telemetry)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	return s, shutdown, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	s, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)
	return runServer(ctx, s)
}

func stdioAction(ctx context.Context, cmd *cli.Command) error {
	s, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)
	return runStdioMCP(ctx, s)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	return runPlay(ctx, s, cmd.String("config"))
}

func simulateAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	opts := simulateOptions{
		Config:    cmd.String("config"),
		Games:     int(cmd.Int("games")),
		Seed:      uint64(cmd.Int("seed")),
		MaxRounds: int(cmd.Int("rounds")),
		JSON:      cmd.Bool("json"),
	}
	return runSimulate(ctx, os.Stdout, s, opts)
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Args().Present() {
		return fmt.Errorf("watch needs a session id")
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	baseURL := s.APIURL
	if cmd.IsSet("url") {
		baseURL = cmd.String("url")
	}
	return runWatch(ctx, os.Stdout, baseURL, cmd.Args().First())
}

func init() {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Printf("%s v%s\n", AppName, cmd.Version)
	}
}
