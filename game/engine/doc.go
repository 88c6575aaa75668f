// Package engine provides the core game logic for the memory match game.
//
// The engine package implements:
//   - Board generation: size*size/2 symbols, each placed twice, uniformly shuffled
//   - The turn state machine: idle, one revealed, resolving, won
//   - Delayed match/mismatch resolution through a Scheduler
//   - Keyboard cursor selection mapped to card indices
//   - Preset loading and validation (JSON or YAML)
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Board holds the generated cards, GameState is
// a snapshot safe to share across goroutines, and Event is an output the
// presentation layer reacts to (card_flipped, cards_matched,
// cards_mismatched, game_won).
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(),
//		engine.WithListener(func(events []engine.Event) {
//			for _, ev := range events {
//				fmt.Println(ev.Type, ev.Index, ev.Index2)
//			}
//		}))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.RevealCard(0)
//	gameEngine.RevealCard(5)
//	// one second later: cards_matched or cards_mismatched
//
// Game Rules:
//
// Two cards are revealed per turn. Matching cards are removed from play,
// mismatched cards flip back after a short delay. The game is won when every
// pair has been found. Invalid input (out of range, matched, or arriving while
// two cards are already up) is ignored rather than reported.
//
// Timers:
//
// Each game gets a fresh GameID. A resolution callback carries the GameID of
// the game that scheduled it, so a callback firing after a new game has
// started leaves the new board untouched.
package engine
