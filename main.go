// Command power-2048 runs the 2048 game server.
//
// Subcommands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket updates and an /mcp HTTP endpoint
//  2. "mcp" – MCP stdio server; reuses a running API or starts an internal one
//  3. "play" – play in the terminal without a server
//  4. "rules" – list rule sets or validate rule files
//
// Settings come from the environment (and an optional .env file); flags
// override them. Optional ngrok tunneling gives easy external access during
// development.
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

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/power-2048/api"
	"github.com/wricardo/power-2048/game/config"
	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
	"github.com/wricardo/power-2048/game/session"
	"github.com/wricardo/power-2048/logging"
	"github.com/wricardo/power-2048/settings"
	"github.com/wricardo/power-2048/transport/mcp"
	"github.com/wricardo/power-2048/transport/websocket"
	"github.com/wricardo/power-2048/tui"
	"github.com/wricardo/power-2048/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Power 2048 Server"
)

// storeSyncInterval is how often in-memory sessions are checked against the store
const storeSyncInterval = 5 * time.Second

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. Flags are shared with every subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "power-2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Load environment variables from this file if it exists",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "HTTP server host (overrides HOST)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port (overrides PORT)",
			},
			&cli.StringFlag{
				Name:  "rules-dir",
				Usage: "Directory containing rule set files (overrides RULES_DIR)",
			},
			&cli.StringFlag{
				Name:  "default-rules",
				Usage: "Rule set for games created without one (overrides DEFAULT_RULES)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Session store: memory, file or sqlite (overrides STORE_BACKEND)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Shorthand for --log-level debug with console output",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "Enable ngrok tunnel (overrides NGROK_ENABLED)",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server if needed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "Use this API instead of probing localhost",
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "rules",
						Value: config.DefaultRulesName,
						Usage: "Rule set name, or path to a rules .json file",
					},
				},
				Action: runPlay,
			},
			{
				Name:  "rules",
				Usage: "Inspect rule sets",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List rule sets in the rules directory",
						Action: runRulesList,
					},
					{
						Name:      "create",
						Usage:     "Write a new rule set to the rules directory",
						ArgsUsage: "<name>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "description", Usage: "Rule set description"},
							&cli.IntFlag{Name: "undo", Value: engine.DefaultPowerUpCount, Usage: "Undo power-ups"},
							&cli.IntFlag{Name: "swap", Value: engine.DefaultPowerUpCount, Usage: "Swap power-ups"},
							&cli.IntFlag{Name: "delete", Value: engine.DefaultPowerUpCount, Usage: "Delete power-ups"},
							&cli.IntFlag{Name: "history", Value: engine.DefaultHistoryLimit, Usage: "Undo history snapshots"},
							&cli.FloatFlag{Name: "four-probability", Value: engine.DefaultFourProbability, Usage: "Chance a spawned tile is a 4"},
						},
						Action: runRulesCreate,
					},
					{
						Name:      "validate",
						Usage:     "Validate rule files",
						ArgsUsage: "<file.json>...",
						Action:    runRulesValidate,
					},
				},
			},
		},
	}
}

// loadSettings reads settings from the environment and applies flag overrides
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("rules-dir") {
		s.RulesDir = cmd.String("rules-dir")
	}
	if cmd.IsSet("default-rules") {
		s.DefaultRules = cmd.String("default-rules")
	}
	if cmd.IsSet("store") {
		s.StoreBackend = cmd.String("store")
	}
	if cmd.IsSet("log-level") {
		s.Log.Level = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		s.Log.Level = "debug"
		s.Log.Format = "console"
	}
	if cmd.IsSet("ngrok") {
		s.Ngrok.Enabled = cmd.Bool("ngrok")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// app holds the wired services shared by the server modes
type app struct {
	settings    *settings.Settings
	logger      *zap.Logger
	rules       *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	service     service.GameService
	closeStore  func() error

	// stored holds ids seen in the store at the last sync
	stored map[string]bool
}

// openStore creates the session store selected by the settings.
// The memory backend has no store.
func openStore(s *settings.Settings) (session.SessionPersistence, func() error, error) {
	noop := func() error { return nil }

	switch s.StoreBackend {
	case settings.BackendMemory:
		return nil, noop, nil
	case settings.BackendFile:
		p, err := session.NewFilePersistence(s.SessionsDir)
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	case settings.BackendSQLite:
		p, err := session.OpenSQLitePersistence(s.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", s.StoreBackend)
	}
}

// newApp wires rules, sessions and the game service, and restores
// persisted sessions.
func newApp(s *settings.Settings, logger *zap.Logger) (*app, error) {
	rules, err := config.NewManager(s.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}
	if s.DefaultRules != "" {
		if err := rules.SetDefault(s.DefaultRules); err != nil {
			return nil, fmt.Errorf("default rules %q: %w", s.DefaultRules, err)
		}
	}

	persistence, closeStore, err := openStore(s)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	var sessions *session.Manager
	if persistence != nil {
		sessions = session.NewManagerWithPersistence(persistence, logger)
		if err := sessions.LoadPersistedSessions(); err != nil {
			logger.Warn("failed to load persisted sessions", zap.Error(err))
		}
	} else {
		sessions = session.NewManager(logger)
	}

	logger.Info("services initialized",
		zap.String("rules_dir", s.RulesDir),
		zap.String("store", s.StoreBackend),
		zap.Int("sessions", sessions.Count()))

	stored := make(map[string]bool)
	if persistence != nil {
		for _, sess := range sessions.List() {
			stored[sess.ID] = true
		}
	}

	return &app{
		stored:      stored,
		settings:    s,
		logger:      logger,
		rules:       rules,
		sessions:    sessions,
		persistence: persistence,
		service:     service.NewGameService(sessions, rules),
		closeStore:  closeStore,
	}, nil
}

// Close flushes sessions and closes the store
func (a *app) Close() error {
	err := a.sessions.SaveAllSessions()
	if cerr := a.closeStore(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// runMaintenance evicts idle sessions, syncs memory with the store and
// reloads rule files on SIGHUP.
func (a *app) runMaintenance(ctx context.Context) {
	sweep := time.NewTicker(a.settings.SessionSweepInterval)
	defer sweep.Stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var syncC <-chan time.Time
	if a.persistence != nil {
		storeSync := time.NewTicker(storeSyncInterval)
		defer storeSync.Stop()
		syncC = storeSync.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if removed := a.sessions.CleanupExpiredSessions(a.settings.SessionTTL); removed > 0 {
				a.logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		case <-syncC:
			a.pruneOrphans()
		case <-hup:
			if err := a.reloadRules(); err != nil {
				a.logger.Error("failed to reload rules", zap.Error(err))
			}
		}
	}
}

// reloadRules drops cached rule sets and reapplies the configured default
func (a *app) reloadRules() error {
	a.rules.RefreshCache()
	if a.settings.DefaultRules != "" {
		if err := a.rules.SetDefault(a.settings.DefaultRules); err != nil {
			return err
		}
	}
	a.logger.Info("rules reloaded", zap.String("default", a.rules.GetDefault().Name))
	return nil
}

// pruneOrphans drops in-memory sessions whose stored copy was removed after
// it had been seen in the store (for example a session file deleted by hand).
// A session that never reached the store is written again instead.
func (a *app) pruneOrphans() int {
	pruned := 0
	seen := make(map[string]bool)

	for _, sess := range a.sessions.List() {
		switch {
		case a.persistence.Exists(sess.ID):
			seen[sess.ID] = true

		case a.stored[sess.ID]:
			if err := a.sessions.DeleteFromMemory(sess.ID); err == nil {
				pruned++
				a.logger.Info("pruned session removed from store", zap.String("game_id", sess.ID))
			}

		default:
			sess.Lock()
			err := a.sessions.Save(sess.ID)
			sess.Unlock()
			if err == nil {
				seen[sess.ID] = true
				a.logger.Info("stored session missing from store", zap.String("game_id", sess.ID))
			}
		}
	}

	a.stored = seen
	return pruned
}

// newHandler combines the API server with the /mcp endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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
	return mux
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. With ngrok enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(s.Log.Level, s.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(s, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close session store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	go a.runMaintenance(ctx)

	addr := s.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://127.0.0.1:%d", s.Port)).WithLogger(logger)
	handler := newHandler(api.NewServer(a.service, hub, logger), mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?game_id=<game_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, s.Ngrok, handler, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cfg settings.NgrokSettings, handler http.Handler, logger *zap.Logger) {
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("mcp", ngrokURL+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// apiAvailable reports whether an API answers health checks at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on the configured port; otherwise it starts an internal API bound to a
// random loopback port. Logs go to stderr because stdout carries the protocol.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.ForStdio(s.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cmd.String("api-url")
	if baseURL == "" {
		externalURL := fmt.Sprintf("http://localhost:%d", s.Port)
		if apiAvailable(externalURL) {
			logger.Info("external API server found", zap.String("url", externalURL))
			baseURL = externalURL
		}
	}

	if baseURL == "" {
		a, err := newApp(s, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)
		go a.runMaintenance(ctx)

		httpServer := &http.Server{Handler: api.NewServer(a.service, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("started internal HTTP server for MCP stdio", zap.String("url", baseURL))
	}

	mcpClient := mcp.NewClient(baseURL).WithLogger(logger)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runPlay starts a terminal game
func runPlay(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	rules, err := config.NewManager(s.RulesDir)
	if err != nil {
		return err
	}

	var r *engine.Rules
	if name := cmd.String("rules"); strings.HasSuffix(name, ".json") {
		r, err = engine.LoadRulesFile(name)
	} else {
		r, err = rules.LoadRules(name)
	}
	if err != nil {
		return err
	}

	return tui.Run(r)
}

func runRulesList(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	rules, err := config.NewManager(s.RulesDir)
	if err != nil {
		return err
	}

	infos, err := rules.ListRules()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	for _, info := range infos {
		source := info.Filename
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(w, "%-12s undo=%d swap=%d delete=%d history=%d four=%.2f  %s (%s)\n",
			info.RulesID,
			info.PowerUps.Undo, info.PowerUps.Swap, info.PowerUps.Delete,
			info.HistoryLimit, info.FourProbability,
			info.Description, source)
	}
	return nil
}

// runRulesCreate writes a rule set built from flags into the rules directory
func runRulesCreate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("exactly one rule set name is required")
	}
	name := cmd.Args().First()

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	rules, err := config.NewManager(s.RulesDir)
	if err != nil {
		return err
	}

	description := cmd.String("description")
	if description == "" {
		description = fmt.Sprintf("Custom rules %s", name)
	}

	r := &engine.Rules{
		Name:        name,
		Description: description,
		PowerUps: engine.PowerUps{
			Undo:   int(cmd.Int("undo")),
			Swap:   int(cmd.Int("swap")),
			Delete: int(cmd.Int("delete")),
		},
		HistoryLimit:    int(cmd.Int("history")),
		FourProbability: cmd.Float("four-probability"),
	}
	if err := rules.SaveRules(name, r); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Saved %s to %s\n", name, s.RulesDir)
	return nil
}

// runRulesValidate checks every file and fails if any is invalid
func runRulesValidate(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one rules file is required")
	}

	w := cmd.Root().Writer
	failed := 0
	for _, file := range files {
		result := validate.File(file)
		if !result.Valid {
			failed++
			fmt.Fprintf(w, "FAIL %s\n", file)
			for _, problem := range result.Problems() {
				fmt.Fprintf(w, "     - %s\n", problem)
			}
			continue
		}
		fmt.Fprintf(w, "OK   %s\n", file)
		for _, info := range result.Errors {
			fmt.Fprintf(w, "     %s\n", info)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rules files invalid", failed, len(files))
	}
	return nil
}
