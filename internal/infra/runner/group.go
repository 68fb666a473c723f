package runner

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Group runs long-lived workers and reports the first one to stop.
type Group struct {
	wg     sync.WaitGroup
	once   sync.Once
	done   chan Result
	Logger zerolog.Logger
}

type Result struct {
	Name string
	Err  error
}

// Go starts fn under name. Done delivers the first worker to return, whether
// it failed or finished cleanly.
func (g *Group) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	g.once.Do(func() { g.done = make(chan Result, 1) })
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.Logger.Debug().Str("worker", name).Msg("worker started")
		err := fn(ctx)
		g.Logger.Debug().Err(err).Str("worker", name).Msg("worker stopped")
		select {
		case g.done <- Result{Name: name, Err: err}:
		default:
		}
	}()
}

func (g *Group) Done() <-chan Result {
	g.once.Do(func() { g.done = make(chan Result, 1) })
	return g.done
}

func (g *Group) Wait() { g.wg.Wait() }
