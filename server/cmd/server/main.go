package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/server/core"
	"github.com/automoto/blaster-mp/shared/protocol"
)

func main() {
	port := flag.Uint("port", uint(cfg.Net.Port), "Server port")
	tickRate := flag.Int("tickrate", cfg.Net.TickRate, "Server tick rate (updates per second)")
	name := flag.String("name", "Blaster Server", "Server display name")
	version := flag.String("version", cfg.Net.ProtocolVersion, "Required client version")
	maxPlayers := flag.Int("maxplayers", cfg.Net.MaxPlayers, "Maximum joined players")
	level := flag.String("level", cfg.Level.Default, "Level file name (empty = first level)")
	assets := flag.String("assets", "assets", "Assets directory containing levels/")
	debugPort := flag.Int("debug", cfg.Net.DebugPort, "Metrics and health port (0 = disabled)")
	master := flag.String("master", "", "Session directory URL, e.g. "+cfg.Session.DirectoryURL+" (empty = don't register)")
	address := flag.String("address", "", "Public address advertised to the directory")
	flag.Parse()

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	lvl, err := core.LoadServerLevel(*assets, *level)
	if err != nil {
		log.Printf("[server] %v, using open arena", err)
		lvl = core.OpenArena()
	}

	opts := core.Options{
		Name:       *name,
		Version:    *version,
		TickRate:   *tickRate,
		MaxPlayers: *maxPlayers,
		Level:      lvl,
	}
	if *debugPort > 0 {
		opts.DebugAddr = fmt.Sprintf(":%d", *debugPort)
	}
	server := core.NewServer(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *master != "" {
		advertise := *address
		if advertise == "" {
			advertise = fmt.Sprintf("localhost:%d", *port)
		}
		reg := core.NewRegistration(*master, *name, advertise, *version, *maxPlayers, server)
		go func() {
			_ = reg.Run(ctx)
		}()
	}

	log.Printf("Starting Blaster server %q on port %d (tick rate: %d/s, version: %s)",
		*name, *port, *tickRate, *version)
	if err := server.Start(ctx, *port); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
