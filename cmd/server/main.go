package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ringside/internal/api"
	"ringside/internal/combat"
	"ringside/internal/config"
	"ringside/internal/hitboxview"
	"ringside/internal/input"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🥊 ================================")
	log.Println("🥊  RINGSIDE - COMBAT ENGINE")
	log.Println("🥊 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server

	cfg := combat.FromApp(appConfig)
	log.Printf("🎮 Config: %d TPS, parry %d/%d, scaling from hit %d at %.2f",
		cfg.TickRate, cfg.ParryWindow, cfg.RedParryWindow,
		cfg.Scaling.Start, cfg.Scaling.Rate)
	log.Printf("🛡️ Resource limits: %d fighters, %d hitboxes, %d queued events",
		cfg.MaxFighters, cfg.MaxHitboxes, cfg.MaxEvents)

	moves, err := combat.LoadMoves(combat.DefaultMoves())
	if err != nil {
		log.Fatalf("❌ Move registry rejected: %v", err)
	}
	log.Printf("📖 Move registry: %d specials loaded", len(moves.All()))

	engine := combat.NewEngine(cfg, moves)

	// Stock two-fighter match; more can join over the API.
	if _, err := engine.AddFighter("p1", 250, input.FacingRight); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if _, err := engine.AddFighter("p2", 550, input.FacingLeft); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Event audit log
	if err := engine.StartEventLog(serverCfg.EventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else {
		log.Printf("📝 Event log: %s", serverCfg.EventLogPath)
	}

	// Debug server (pprof + metrics), localhost only
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	renderer := hitboxview.NewRenderer(800, 480, cfg.StageWidth,
		os.Getenv("HITBOX_FONT_PATH"))

	server := api.NewServer(engine, renderer)

	// Round controller: first to N round wins takes the match, with a
	// breather between rounds.
	match := combat.NewMatchController(combat.DefaultMatchConfig(), engine)

	// Drained events feed the WebSocket fanout, the metrics counters and
	// the round controller.
	hub := server.Hub()
	engine.SetEventSink(func(events []combat.Event) {
		hub.BroadcastEvents(events)
		api.ObserveEvents(events)
		match.Observe(events)
	})

	engine.Start()
	log.Println("✅ Combat engine running")

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Periodic tick timing sample for the histogram.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		lastTick := engine.Tick()
		lastAt := time.Now()
		for range ticker.C {
			now := time.Now()
			tick := engine.Tick()
			if delta := tick - lastTick; delta > 0 {
				api.RecordTick(now.Sub(lastAt) / time.Duration(delta))
			}
			lastTick, lastAt = tick, now
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	engine.StopEventLog()
	engine.Stop()
	log.Println("👋 Goodbye!")
}
