package autopilot

import (
	"context"
	"log"
	"time"

	"github.com/wricardo/snake-game/game/engine"
)

// Options bounds one autopilot game
type Options struct {
	MaxTicks int
	Delay    time.Duration
	Verbose  bool
}

// Result summarises a finished (or abandoned) game
type Result struct {
	Score  int                   `json:"score"`
	Length int                   `json:"length"`
	Ticks  int                   `json:"ticks"`
	Phase  engine.Phase          `json:"phase"`
	Cause  engine.CollisionCause `json:"cause,omitempty"`
}

// Play steers the client's session one tick at a time until the game ends or
// MaxTicks is reached. A finished game is reset first.
func Play(ctx context.Context, client *Client, strategy *Strategy, opts Options) (Result, error) {
	snap, err := client.State(ctx)
	if err != nil {
		return Result{}, err
	}
	if snap.Phase.Terminal() {
		if snap, err = client.Reset(ctx); err != nil {
			return Result{}, err
		}
	}
	strategy.Reset()

	ticks := 0
	for !snap.Phase.Terminal() && (opts.MaxTicks <= 0 || ticks < opts.MaxTicks) {
		if opts.Verbose && ticks%50 == 0 {
			log.Printf("session=%s tick=%d head=(%d,%d) length=%d score=%d",
				client.SessionID(), snap.Ticks, snap.Head.X, snap.Head.Y, snap.Length, snap.Score)
		}

		heading, _ := engine.ParseDirection(snap.Direction)
		dir, ok := strategy.NextMove(*snap)
		if !ok {
			// boxed in; keep the heading and let the engine end the game
			dir = heading
		}
		if snap.Phase == engine.NotStarted || dir != heading {
			if _, err := client.Turn(ctx, dir); err != nil {
				return resultOf(snap, ticks), err
			}
		}

		tick, err := client.Tick(ctx, 1)
		if err != nil {
			return resultOf(snap, ticks), err
		}
		snap = &tick.State
		ticks += tick.TicksExecuted

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return resultOf(snap, ticks), ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
		if tick.TicksExecuted == 0 && !snap.Phase.Terminal() {
			break
		}
	}
	return resultOf(snap, ticks), nil
}

func resultOf(snap *engine.Snapshot, ticks int) Result {
	return Result{
		Score:  snap.Score,
		Length: snap.Length,
		Ticks:  ticks,
		Phase:  snap.Phase,
		Cause:  snap.Cause,
	}
}
