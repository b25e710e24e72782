// Command bruteforcer plays 2048 against a running server through the REST
// API. It picks moves with a one-spawn lookahead and spends power-ups to get
// out of stuck positions, repeating games until one reaches the target tile.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
	"github.com/wricardo/power-2048/logging"
)

var errTargetMissed = errors.New("target tile not reached")

// Options control a run of games
type Options struct {
	Rules    string
	Continue string
	Target   int
	MaxMoves int
	Games    int
	Delay    time.Duration
}

// Outcome describes a finished game
type Outcome struct {
	GameID  string
	Score   int
	MaxTile int
	Moves   int
	Rescues int
	Stuck   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play 2048 automatically against a game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "rules", Usage: "rules for new games (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing game by ID for the first attempt"},
			&cli.IntFlag{Name: "target", Value: 2048, Usage: "stop once a game reaches this tile"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "maximum moves per game"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "maximum games before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := logging.New(cmd.String("log-level"), "console")
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts := Options{
				Rules:    cmd.String("rules"),
				Continue: cmd.String("continue"),
				Target:   int(cmd.Int("target")),
				MaxMoves: int(cmd.Int("max-moves")),
				Games:    int(cmd.Int("games")),
				Delay:    cmd.Duration("delay"),
			}
			logger.Info("connecting to game server", zap.String("url", cmd.String("url")))
			_, err = run(ctx, NewClient(cmd.String("url")), opts, logger)
			return err
		},
	}
}

// run plays up to opts.Games games and returns the first one that reached the target
func run(ctx context.Context, c *Client, opts Options, logger *zap.Logger) (*Outcome, error) {
	for attempt := 1; attempt <= opts.Games; attempt++ {
		var (
			view *service.GameView
			err  error
		)
		if attempt == 1 && opts.Continue != "" {
			view, err = c.Resume(ctx, opts.Continue)
			if err != nil {
				logger.Warn("failed to resume game, starting a new one", zap.Error(err))
			}
		}
		if view == nil {
			view, err = c.NewGame(ctx, opts.Rules)
			if err != nil {
				return nil, fmt.Errorf("new game: %w", err)
			}
		}

		strategy := NewStrategy(engine.DefaultFourProbability)
		if info, err := c.Rules(ctx, view.Rules); err == nil {
			strategy = NewStrategy(info.FourProbability)
		}

		logger.Info("game started",
			zap.Int("attempt", attempt),
			zap.String("game_id", view.GameID),
			zap.String("rules", view.Rules))

		out, err := playGame(ctx, c, strategy, view, opts, logger)
		if err != nil {
			return nil, err
		}

		logger.Info("game finished",
			zap.Int("attempt", attempt),
			zap.String("game_id", out.GameID),
			zap.Int("score", out.Score),
			zap.Int("max_tile", out.MaxTile),
			zap.Int("moves", out.Moves),
			zap.Int("rescues", out.Rescues),
			zap.Bool("stuck", out.Stuck))

		if out.MaxTile >= opts.Target {
			logger.Info("target reached", zap.Int("target", opts.Target), zap.String("game_id", out.GameID))
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w after %d games", errTargetMissed, opts.Games)
}

// playGame moves until the target is reached, the move budget runs out or
// the board is stuck with no power-up able to help
func playGame(ctx context.Context, c *Client, s *Strategy, view *service.GameView, opts Options, logger *zap.Logger) (*Outcome, error) {
	out := &Outcome{GameID: view.GameID}

	for out.Moves < opts.MaxMoves && view.MaxTile < opts.Target {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d, ok := s.BestMove(view.Board)
		if !ok {
			next, rescued, err := rescue(ctx, c, s, view, logger)
			if err != nil {
				return nil, err
			}
			if !rescued {
				out.Stuck = true
				break
			}
			out.Rescues++
			view = next
			continue
		}

		result, err := c.Move(ctx, d)
		if err != nil {
			return nil, err
		}
		view = &result.GameView
		if result.Moved {
			out.Moves++
		}

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	out.Score = view.Score
	out.MaxTile = view.MaxTile
	return out, nil
}

// rescue tries each planned power-up until the server accepts one
func rescue(ctx context.Context, c *Client, s *Strategy, view *service.GameView, logger *zap.Logger) (*service.GameView, bool, error) {
	for _, action := range s.RescuePlan(view.Board, view.PowerUps) {
		var (
			result *service.PowerUpResult
			err    error
		)
		switch action.Kind {
		case ActionDelete:
			result, err = c.Delete(ctx, action.Value)
		case ActionSwap:
			result, err = c.Swap(ctx, action.Pos1, action.Pos2)
		case ActionUndo:
			result, err = c.Undo(ctx)
		}
		if err != nil {
			return nil, false, err
		}

		logger.Debug("power-up",
			zap.String("kind", string(action.Kind)),
			zap.Bool("success", result.Success),
			zap.String("message", result.Message))

		if result.Success {
			return &result.GameView, true, nil
		}
	}
	return view, false, nil
}
