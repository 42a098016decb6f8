package core

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
)

type GameLoop struct {
	server   *Server
	tickRate int
	ticks    atomic.Uint64
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
	}
}

// Run ticks the server at a fixed rate until ctx is done.
func (g *GameLoop) Run(ctx context.Context) {
	dt := time.Second / time.Duration(g.tickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	log.Printf("[loop] started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-ctx.Done():
			log.Println("[loop] stopped")
			return
		case <-ticker.C:
			g.tick(dt)
		}
	}
}

// Ticks is the number of completed ticks. Safe from any goroutine.
func (g *GameLoop) Ticks() uint64 {
	return g.ticks.Load()
}

func (g *GameLoop) tick(dt time.Duration) {
	start := time.Now()
	g.server.step(dt)

	if err := srvsync.DoSync(); err != nil {
		log.Printf("[loop] sync error: %v", err)
	}
	g.ticks.Add(1)
	tickDuration.Observe(time.Since(start).Seconds())
}
