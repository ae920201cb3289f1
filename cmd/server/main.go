package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qnkhuat/battlechess/pkg"
	"github.com/qnkhuat/battlechess/pkg/config"
	"github.com/qnkhuat/battlechess/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configDir := flag.String("config", ".", "directory holding "+config.FileName)
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		return err
	}

	log, closer, err := pkg.InitLog(config.GetString("logFile"), "server", config.GetString("logLevel"))
	if err != nil {
		return err
	}
	defer closer.Close()

	journal, err := store.New(config.GetStoreConfig(), log)
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverCfg := config.GetServerConfig()
	s := pkg.NewServer(serverCfg, pkg.MatchConfig{
		Camera:       config.GetCameraConfig(),
		AutoComplete: config.GetBattleConfig().AutoComplete,
		Journal:      journal,
	}, log)
	defer s.Close()

	if serverCfg.SSHEnabled {
		if err := s.StartSSH(); err != nil {
			return err
		}
	}
	go s.CleanIdleMatches(ctx)

	log.Info().Msg("Server started")
	if err := s.ListenAndServe(ctx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
