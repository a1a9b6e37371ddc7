package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orrery-systems/ecsdb/internal/config"
	"github.com/orrery-systems/ecsdb/internal/ecs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             ecsdb demo  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m    in-memory entity/component registry    \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Demo component types ───────────────────────────────────────────

type Position struct{ X, Y float64 }

type Velocity struct{ DX, DY float64 }

type Health struct{ Current, Max int }

func (h *Health) Drop() {
	h.Current, h.Max = 0, 0
}

// ── Main demo logic ────────────────────────────────────────────────

func run() error {
	cfgPath := "config/ecsdb.toml"
	if p := os.Getenv("ECSDB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = nil // fine: the demo runs against defaults if no file exists
	}

	log, err := newLogger(loggingOrDefault(cfg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	reg := ecs.NewRegistry(log, registryOptions(cfg))

	printSection("entities")
	player := reg.CreateEntityNamed("hero")
	ecs.Set(reg, player, Position{X: 0, Y: 0})
	ecs.Set(reg, player, Velocity{DX: 1, DY: 0})
	ecs.Set(reg, player, Health{Current: 30, Max: 30})

	for i := 0; i < 4; i++ {
		e := reg.CreateEntity()
		ecs.Set(reg, e, Position{X: float64(i), Y: float64(i * 2)})
		if i%2 == 0 {
			ecs.Set(reg, e, Velocity{DX: 0, DY: -1})
		}
	}
	printStat("entities created", 5)

	printSection("views")
	moving := 0
	// View2 returns a callback-taking range func, not a 2-ary iter.Seq2 —
	// Go's range-over-func only accepts 0-, 1-, or 2-parameter yield
	// functions, so a 3-tuple join like this one is invoked directly.
	ecs.View2[Position, Velocity](reg, 0, 0)(func(e ecs.Entity, pos *Position, vel *Velocity) bool {
		pos.X += vel.DX
		pos.Y += vel.DY
		moving++
		if e == player {
			printOK(fmt.Sprintf("hero moved to (%.0f, %.0f)", pos.X, pos.Y))
		}
		return true
	})
	printStat("entities with position+velocity", moving)

	printSection("grouping")
	changed := ecs.GroupEntities[Position](reg, func(e ecs.Entity, _ *Position) bool {
		return ecs.Has[Velocity](reg, e)
	})
	printOK(fmt.Sprintf("grouped position pool by has(velocity): %v", changed))

	printSection("lookup")
	if found, ok := reg.FindByName("hero"); ok {
		printOK(fmt.Sprintf("find_by_name(hero) -> entity %d", found.ID()))
	}

	printSection("teardown")
	reg.DestroyEntity(player)
	printOK("destroyed hero, health dropped via Droppable")

	return nil
}

func loggingOrDefault(cfg *config.Config) config.LoggingConfig {
	if cfg == nil {
		return config.LoggingConfig{Level: "info", Format: "console"}
	}
	return cfg.Logging
}

func registryOptions(cfg *config.Config) ecs.RegistryOptions {
	if cfg == nil {
		return ecs.RegistryOptions{}
	}
	return ecs.RegistryOptions{
		InitialCapacityHint: cfg.Registry.InitialCapacityHint,
		MaxLoadFactor:       cfg.Registry.MaxLoadFactor,
		StrictTypeIDs:       cfg.Registry.StrictTypeIDs,
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
