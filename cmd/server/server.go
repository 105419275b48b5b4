package main

import (
	"context"
	"os/signal"
	"syscall"

	"matchcore/internal/common"
	"matchcore/internal/config"
	"matchcore/internal/engine"
	"matchcore/internal/net"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(".", "/etc/matchcore")
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	// engines is shared by reference between the server and the engine's
	// observer closures below: the server needs it to route wire messages,
	// and engine.New needs srv.ReportTrade before srv itself is otherwise
	// fully wired, so the map is populated only after both sides exist.
	engines := make(map[common.AssetType]net.Engine)
	srv := net.New(cfg.ServerAddress, cfg.ServerPort, engines)

	eng := engine.New(cfg.Params(), engine.ComposeObservers(
		engine.LoggingObservers(),
		engine.Observers{OnOrderMatched: srv.ReportTrade},
	))
	engines[common.Equities] = eng

	go srv.Run(ctx)
	// Block on running the server.
	<-ctx.Done()
}
