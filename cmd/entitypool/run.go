package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/l1jgo/entitypool/internal/config"
	"github.com/l1jgo/entitypool/internal/world"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func runPool(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner(version)

	printSection("pool")
	st, err := world.Load(cfg.Pool, log)
	if err != nil {
		return fmt.Errorf("build pool: %w", err)
	}
	printOK(fmt.Sprintf("layout %s", cfg.Pool.Layout))
	printStats(st.Stats())
	fmt.Println()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	reload := make(chan struct{}, 1)
	if cfg.Pool.Watch {
		w, err := newWatcher(cfg.Pool, reload, log.Named("watch"))
		if err != nil {
			st.Close()
			return fmt.Errorf("watch: %w", err)
		}
		g.Go(func() error { return w.Run(ctx) })
		printOK("watching scripts and layout")
	}

	runner := st.Runner
	g.Go(func() error {
		defer func() { st.Close() }()
		return runner.Run(ctx, cfg.Pool.TickRate, func() {
			select {
			case <-reload:
			default:
				return
			}
			next, err := world.Load(cfg.Pool, log)
			if err != nil {
				log.Error("reload failed, keeping current pool", zap.Error(err))
				return
			}
			runner.SetPool(next.Pool)
			st.Close()
			st = next
			log.Info("pool reloaded", zap.Int("pending", st.Pool.Pending()))
		})
	})

	printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Pool.TickRate))

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

func checkPool(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := world.Load(cfg.Pool, log)
	if err != nil {
		return fmt.Errorf("build pool: %w", err)
	}
	defer st.Close()
	st.Pool.Flush()

	printSection("pool")
	printStats(st.Stats())
	return nil
}
