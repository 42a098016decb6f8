package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/blaster-mp/bot"
	"github.com/automoto/blaster-mp/components"
	"github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/network"
	"github.com/automoto/blaster-mp/server/core"
	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/shared/protocol"
	"github.com/automoto/blaster-mp/systems"
)

const usage = `usage: blaster <command> [flags]

commands:
  local    run a match with bots in this process
  connect  join a dedicated server with a bot-driven player
  browse   list sessions from the session directory`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "local":
		err = runLocal(ctx, os.Args[2:])
	case "connect":
		err = runConnect(ctx, os.Args[2:])
	case "browse":
		err = runBrowse(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func loadLevel(assets, name string) *leveldata.LevelData {
	level, err := core.LoadServerLevel(assets, name)
	if err != nil {
		log.Printf("[level] %v, using open arena", err)
		return core.OpenArena()
	}
	return level
}

// presentation logs HUD, animation and effect calls when verbose is set.
func presentation(verbose bool, name string) systems.Services {
	if verbose {
		return systems.LogServices(name)
	}
	return systems.NopServices()
}

func runLocal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("local", flag.ExitOnError)
	bots := fs.Int("bots", 3, "Number of bot players")
	difficulty := fs.String("difficulty", "normal", "Bot difficulty: easy, normal, hard")
	duration := fs.Duration("duration", time.Minute, "Match length")
	assets := fs.String("assets", "assets", "Assets directory containing levels/")
	levelName := fs.String("level", config.Level.Default, "Level file name")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed")
	verbose := fs.Bool("verbose", false, "Log every client's presentation calls")
	_ = fs.Parse(args)

	level := loadLevel(*assets, *levelName)
	rng := rand.New(rand.NewSource(*seed))

	mode := systems.NewFreeForAll()
	names := make(map[netconfig.PeerID]string)
	var net *session.Loopback
	net = session.NewLoopback(session.ServerOptions{
		Name:       "local",
		MaxPlayers: *bots,
		Level:      level,
		Rand:       rng,
		GameMode:   mode,
		Events: session.Events{
			PeerJoined: func(peer netconfig.PeerID, name string) {
				names[peer] = name
				log.Printf("[local] %s joined as peer %d", name, peer)
			},
			Eliminated: func(victim, attacker netconfig.EntityID) {
				log.Printf("[local] %s eliminated %s", ownerName(net, names, attacker), ownerName(net, names, victim))
			},
		},
	})

	type seat struct {
		client *session.Client
		brain  *bot.Bot
	}
	seats := make([]seat, 0, *bots)
	for i := 0; i < *bots; i++ {
		name := fmt.Sprintf("Bot %d", i+1)
		c := net.Connect(session.ClientOptions{
			Name:     name,
			Level:    level,
			Services: presentation(*verbose, name),
			Rand:     rand.New(rand.NewSource(rng.Int63())),
		})
		brain := bot.New(config.ParseBotDifficulty(*difficulty), rand.New(rand.NewSource(rng.Int63())))
		seats = append(seats, seat{client: c, brain: brain})
	}

	dt := time.Second / time.Duration(config.Net.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	deadline := time.After(*duration)

	log.Printf("[local] %d bots, %s, %s", *bots, *difficulty, *duration)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			for _, s := range seats {
				peer := s.client.PeerID()
				log.Printf("[local] %s: %d eliminations, %d deaths", names[peer], mode.Scores[peer], mode.Deaths[peer])
			}
			return nil
		case <-ticker.C:
			for _, s := range seats {
				s.client.Control(s.brain.Think(s.client.Sim))
			}
			net.Step(dt)
		}
	}
}

func ownerName(net *session.Loopback, names map[netconfig.PeerID]string, id netconfig.EntityID) string {
	if e, ok := net.Server.Sim.Entry(id); ok {
		if name, ok := names[components.NetID.Get(e).Owner]; ok {
			return name
		}
	}
	return fmt.Sprintf("entity %d", id)
}

func runConnect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	address := fs.String("addr", "", "Server address host:port (default from settings)")
	master := fs.String("master", config.Session.DirectoryURL, "Session directory URL")
	sessionID := fs.String("session", "", "Join this directory session instead of -addr")
	name := fs.String("name", "", "Player name (default from settings)")
	difficulty := fs.String("difficulty", "normal", "Bot difficulty: easy, normal, hard")
	assets := fs.String("assets", "assets", "Assets directory containing levels/")
	levelName := fs.String("level", config.Level.Default, "Level file name")
	verbose := fs.Bool("verbose", false, "Log presentation calls")
	_ = fs.Parse(args)

	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	store, err := config.OpenSettingsStore()
	if err != nil {
		log.Printf("[settings] %v", err)
	}
	settings := config.LoadClientSettings(store)
	config.ApplyClientSettings(settings)
	if *name != "" {
		settings.PlayerName = *name
	}
	if *address != "" {
		settings.ServerAddress = *address
	}

	if *sessionID != "" {
		info, err := network.NewDirectory(*master).Join(ctx, *sessionID)
		if err != nil {
			return fmt.Errorf("join session %s: %w", *sessionID, err)
		}
		settings.ServerAddress = info.Address
	}
	if err := config.SaveClientSettings(store, settings); err != nil {
		log.Printf("[settings] %v", err)
	}

	client := network.NewClient(session.ClientOptions{
		Name:     settings.PlayerName,
		Level:    loadLevel(*assets, *levelName),
		Services: presentation(*verbose, settings.PlayerName),
	})
	brain := bot.New(config.ParseBotDifficulty(*difficulty), rand.New(rand.NewSource(time.Now().UnixNano())))

	log.Printf("[connect] %s -> %s", settings.PlayerName, settings.ServerAddress)
	client.Connect(settings.ServerAddress)
	defer client.Disconnect()

	dt := time.Second / time.Duration(config.Net.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if client.State() == network.StateError {
				return client.LastError()
			}
			client.Step(dt)
			s := client.Session()
			if s.State() == session.ClientRejected {
				return s.Err()
			}
			s.Control(brain.Think(s.Sim))
		}
	}
}

func runBrowse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	master := fs.String("master", config.Session.DirectoryURL, "Session directory URL")
	match := fs.String("match", "", "Only list this match type")
	_ = fs.Parse(args)

	sessions, err := network.NewDirectory(*master).Find(ctx, *match)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return errors.New("no open sessions")
	}
	for _, s := range sessions {
		fmt.Printf("%s  %-24s %-12s %d/%d  %s (v%s)\n",
			s.ID, s.Name, s.MatchType, s.Players, s.MaxPlayers, s.Address, s.Version)
	}
	return nil
}
