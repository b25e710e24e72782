// Command analyze prints a human-readable report about stored game sessions:
// score, largest tile, move count and power-ups spent per game, followed by
// totals across the store. It reads the same file or sqlite store the server
// writes, using the same environment settings.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
	"github.com/wricardo/power-2048/game/session"
	"github.com/wricardo/power-2048/settings"
)

// GameStats summarizes one stored session
type GameStats struct {
	ID           string
	Rules        string
	Score        int
	MaxTile      int
	Moves        int
	GameOver     bool
	Used         engine.PowerUps
	LastAccessed time.Time
}

// Summary aggregates stats across every session
type Summary struct {
	Games      int
	Finished   int
	Unreadable int
	BestScore  int
	BestGame   string
	AvgScore   float64
	Used       engine.PowerUps
	// TilesReached counts games by their largest tile
	TilesReached map[int]int
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Summarize stored game sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional .env file"},
			&cli.StringFlag{Name: "store", Usage: "session store to read: file or sqlite"},
			&cli.StringFlag{Name: "sessions-dir", Usage: "directory of the file store"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "database of the sqlite store"},
			&cli.IntFlag{Name: "top", Value: 10, Usage: "number of games to list"},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	s, err := settings.Load(cmd.String("env-file"))
	if err != nil {
		return err
	}
	if cmd.IsSet("store") {
		s.StoreBackend = cmd.String("store")
	}
	if cmd.IsSet("sessions-dir") {
		s.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("sqlite-path") {
		s.SQLitePath = cmd.String("sqlite-path")
	}

	store, closeStore, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, summary, err := analyzeStore(store)
	if err != nil {
		return err
	}

	printReport(cmd.Root().Writer, stats, summary, int(cmd.Int("top")))
	return nil
}

func openStore(s *settings.Settings) (session.SessionPersistence, func() error, error) {
	switch s.StoreBackend {
	case settings.BackendFile:
		p, err := session.NewFilePersistence(s.SessionsDir)
		if err != nil {
			return nil, nil, err
		}
		return p, func() error { return nil }, nil
	case settings.BackendSQLite:
		p, err := session.OpenSQLitePersistence(s.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("store %q keeps nothing to analyze; use file or sqlite", s.StoreBackend)
	}
}

func analyzeSession(sess *service.Session) GameStats {
	state := sess.Engine.GetState()
	rules := sess.Rules
	if rules == nil {
		rules = engine.DefaultRules()
	}

	return GameStats{
		ID:       sess.ID,
		Rules:    rules.Name,
		Score:    state.Score,
		MaxTile:  engine.MaxTile(state.Board),
		Moves:    state.Moves,
		GameOver: sess.Engine.IsGameOver(),
		Used: engine.PowerUps{
			Undo:   spent(rules.PowerUps.Undo, state.PowerUps.Undo),
			Swap:   spent(rules.PowerUps.Swap, state.PowerUps.Swap),
			Delete: spent(rules.PowerUps.Delete, state.PowerUps.Delete),
		},
		LastAccessed: sess.LastAccessed(),
	}
}

func spent(granted, left int) int {
	if left > granted {
		return 0
	}
	return granted - left
}

// analyzeStore loads every session and returns per-game stats, best score first
func analyzeStore(store session.SessionPersistence) ([]GameStats, Summary, error) {
	ids, err := store.ListAll()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("listing sessions: %w", err)
	}

	summary := Summary{TilesReached: make(map[int]int)}
	stats := make([]GameStats, 0, len(ids))
	total := 0

	for _, id := range ids {
		sess, err := store.Load(id)
		if err != nil {
			summary.Unreadable++
			continue
		}

		g := analyzeSession(sess)
		stats = append(stats, g)

		summary.Games++
		total += g.Score
		if g.GameOver {
			summary.Finished++
		}
		if g.Score > summary.BestScore || summary.BestGame == "" {
			summary.BestScore = g.Score
			summary.BestGame = g.ID
		}
		summary.TilesReached[g.MaxTile]++
		summary.Used.Undo += g.Used.Undo
		summary.Used.Swap += g.Used.Swap
		summary.Used.Delete += g.Used.Delete
	}

	if summary.Games > 0 {
		summary.AvgScore = float64(total) / float64(summary.Games)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Score != stats[j].Score {
			return stats[i].Score > stats[j].Score
		}
		return stats[i].ID < stats[j].ID
	})

	return stats, summary, nil
}

func printReport(w io.Writer, stats []GameStats, summary Summary, top int) {
	fmt.Fprintf(w, "=== Sessions ===\n")
	fmt.Fprintf(w, "Games: %d (finished %d", summary.Games, summary.Finished)
	if summary.Unreadable > 0 {
		fmt.Fprintf(w, ", unreadable %d", summary.Unreadable)
	}
	fmt.Fprintf(w, ")\n")

	if summary.Games == 0 {
		return
	}

	fmt.Fprintf(w, "Best score: %d (%s)\n", summary.BestScore, summary.BestGame)
	fmt.Fprintf(w, "Average score: %.1f\n", summary.AvgScore)
	fmt.Fprintf(w, "Power-ups used: undo %d, swap %d, delete %d\n",
		summary.Used.Undo, summary.Used.Swap, summary.Used.Delete)

	tiles := make([]int, 0, len(summary.TilesReached))
	for tile := range summary.TilesReached {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))
	fmt.Fprintf(w, "\nLargest tile reached:\n")
	for _, tile := range tiles {
		fmt.Fprintf(w, "  %5d: %d game(s)\n", tile, summary.TilesReached[tile])
	}

	if top <= 0 || top > len(stats) {
		top = len(stats)
	}
	fmt.Fprintf(w, "\nTop %d games:\n", top)
	for _, g := range stats[:top] {
		status := "playing"
		if g.GameOver {
			status = "over"
		}
		fmt.Fprintf(w, "  %-36s %-10s score %6d  max %5d  moves %4d  used u%d/s%d/d%d  %s\n",
			g.ID, g.Rules, g.Score, g.MaxTile, g.Moves,
			g.Used.Undo, g.Used.Swap, g.Used.Delete, status)
	}
}
