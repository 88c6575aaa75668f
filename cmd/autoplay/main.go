// Command autoplay plays memory match games against a running server through
// its REST API. It uses the perfect-memory player: every symbol it sees is
// remembered and a known pair is always taken before exploring.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/player"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a REST client bound to one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client

	// pause before each reveal, so people watching over WebSocket can follow
	pause time.Duration
	// poll interval while waiting for a match check
	poll time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		poll: 100 * time.Millisecond,
	}
}

// apiError is the JSON error body returned by the server
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a new session and binds the client to it
func (c *Client) CreateSession(ctx context.Context, opts service.GameOptions) (*engine.GameState, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", opts, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return info.GameState, nil
}

// NewGame deals a new board in the bound session
func (c *Client) NewGame(ctx context.Context, opts service.GameOptions) (*engine.GameState, error) {
	var resp struct {
		GameState *engine.GameState `json:"game_state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/new-game"), opts, &resp); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return resp.GameState, nil
}

// State returns the current game of the bound session
func (c *Client) State(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Reveal flips a card face-up. A reveal the server ignores is an error.
func (c *Client) Reveal(ctx context.Context, index int) error {
	if c.pause > 0 {
		if err := sleep(ctx, c.pause); err != nil {
			return err
		}
	}

	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reveal"), map[string]int{"index": index}, &result); err != nil {
		return err
	}
	if !result.Changed {
		return fmt.Errorf("%w: card %d ignored", player.ErrStalled, index)
	}

	log.Debug().Int("index", index).Str("message", result.Message).Msg("revealed")
	return nil
}

// Settle polls the state until the pending match check has run
func (c *Client) Settle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, engine.MaxResolveDelay+2*time.Second)
	defer cancel()

	for {
		state, err := c.State(ctx)
		if err != nil {
			return err
		}
		if state.Phase != engine.PhaseResolving {
			return nil
		}
		if err := sleep(ctx, c.poll); err != nil {
			return fmt.Errorf("waiting for match check: %w", err)
		}
	}
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// playSession plays games in the bound session and returns their results.
// The first game continues the current board unless it is already won.
func playSession(ctx context.Context, c *Client, opts service.GameOptions, games int) ([]*player.Result, error) {
	results := make([]*player.Result, 0, games)
	for g := 0; g < games; g++ {
		state, err := c.State(ctx)
		if err != nil {
			return results, err
		}
		if g > 0 || state.Won {
			if state, err = c.NewGame(ctx, opts); err != nil {
				return results, err
			}
		}

		log.Info().
			Str("session", c.sessionID).
			Str("game", state.GameID).
			Int("size", state.Size).
			Str("symbols", string(state.SymbolType)).
			Int("pairs", state.TotalPairs).
			Msg("playing")

		result, err := player.Play(ctx, c)
		if err != nil {
			return results, fmt.Errorf("game %d: %w", g+1, err)
		}
		results = append(results, result)

		log.Info().
			Str("game", result.GameID).
			Int("turns", result.Turns).
			Int("mismatches", result.Mismatches).
			Msg("🎉 won")
	}
	return results, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play memory match games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("GAME_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Preset to create the session from",
			},
			&cli.StringFlag{
				Name:  "symbol-type",
				Usage: "letters or numbers (overrides the preset)",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Board size (overrides the preset)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Play in an existing session by ID",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1,
				Usage: "Number of games to play",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause before each reveal",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every reveal",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := zerolog.InfoLevel
			if cmd.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)

			client := NewClient(cmd.String("url"))
			client.pause = cmd.Duration("delay")
			log.Info().Str("url", client.baseURL).Msg("connecting to game server")

			opts := service.GameOptions{
				ConfigID:   cmd.String("config"),
				SymbolType: engine.SymbolType(cmd.String("symbol-type")),
				Size:       int(cmd.Int("size")),
			}

			if id := cmd.String("continue"); id != "" {
				client.sessionID = id
				log.Info().Str("session", id).Msg("🔄 resuming session")
			} else {
				if _, err := client.CreateSession(ctx, opts); err != nil {
					return err
				}
				log.Info().Str("session", client.sessionID).Msg("✨ session created")
			}

			games := int(cmd.Int("games"))
			if games < 1 {
				return errors.New("games must be at least 1")
			}

			results, err := playSession(ctx, client, opts, games)
			if err != nil {
				return err
			}

			turns := 0
			for _, r := range results {
				turns += r.Turns
			}
			log.Info().
				Int("games", len(results)).
				Float64("mean_turns", float64(turns)/float64(len(results))).
				Msg("done")
			return nil
		},
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}
