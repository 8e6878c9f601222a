package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/homestations/internal/bridge"
	"github.com/udisondev/homestations/internal/config"
	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/economy"
	"github.com/udisondev/homestations/internal/homestations"
	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/profile"
	"github.com/udisondev/homestations/internal/scheduler"
	"github.com/udisondev/homestations/internal/station"
	"github.com/udisondev/homestations/internal/teleport"
	"github.com/udisondev/homestations/internal/world"
)

const ConfigPath = "config/homestations.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("HOMESTATIONS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadHomeStations(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("homestations starting",
		"log_level", cfg.LogLevel,
		"storage", cfg.Storage.Backend,
		"economy", cfg.Economy.Enabled)

	msgs, err := messages.Load(cfg.MessagesPath)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	matcher := station.NewMatcher(cfg.Station.Pattern())
	registry := station.NewRegistry(st.stations, matcher)
	if err := registry.Load(ctx); err != nil {
		return fmt.Errorf("loading spawn stations: %w", err)
	}

	var bank economy.BalanceService
	if cfg.Economy.Enabled {
		bank = economy.NewBank(st.balances, cfg.Economy.StartingBalance)
	}

	loop := scheduler.NewLoop(cfg.TickInterval)
	mirror := world.NewMirror()
	host := bridge.NewHost()
	ledger := confirm.NewLedger()

	animator := teleport.NewAnimator(loop, host, mirror, teleport.Settings{
		Effect1:         cfg.Effect1.Firework(config.DefaultEffect1()),
		Effect2:         cfg.Effect2.Firework(config.DefaultEffect2()),
		UpVelocity:      cfg.Upward.YVelocity,
		DelayTicks:      cfg.Upward.DelayTicks,
		MaxUpRange:      cfg.Upward.MaxRange,
		EffectDistance:  cfg.Upward.EffectDistance,
		DownOffset:      cfg.Downward.EffectOffset,
		TeleportYOffset: cfg.Downward.TeleportYOffset,
	})

	svc := homestations.NewService(homestations.Deps{
		World:    mirror,
		Matcher:  matcher,
		Registry: registry,
		Profiles: profile.NewStore(st.lines),
		Ledger:   ledger,
		Gate:     economy.NewGate(cfg.TeleportCosts, bank, ledger, msgs),
		Animator: animator,
		Messages: msgs,
	})

	srv := bridge.NewServer(bridge.Config{
		ListenAddress: cfg.Bridge.ListenAddress,
		TokenHash:     cfg.Bridge.TokenHash,
	}, host, loop, mirror, svc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := loop.Start(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
		return nil
	})

	err = g.Wait()

	// scheduler has stopped, nothing else touches the service
	svc.Shutdown()
	slog.Info("homestations stopped")
	return err
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
