// ==================================
// File: cmd/sniper/main.go
// ==================================
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/deadraid/meteora-sniper/internal/bench"
	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/eventlistener"
	"github.com/deadraid/meteora-sniper/internal/logger"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/relay"
	"github.com/deadraid/meteora-sniper/internal/transaction"
	"github.com/deadraid/meteora-sniper/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	zl, err := logger.New(cfg.DebugLogging, cfg.LogFile)
	if err != nil {
		log.Fatalf("initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("configuration loaded", cfg.LogFields()...)

	if cfg.WSRPC == "" {
		zl.Fatal("ws_rpc is required to watch the transaction feed")
	}

	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		zl.Fatal("load wallet", zap.Error(err))
	}
	zl.Info("wallet ready", zap.String("pubkey", w.PublicKey.String()))

	txCfg := transaction.NewConfig(w, cfg)
	rpcClient := rpc.New(cfg.HTTPRPC)

	senders := relay.BuildSenders(cfg, txCfg, zl)
	if !cfg.Simulate && len(senders) == 0 {
		zl.Fatal("no usable relays configured")
	}

	b := bench.New(rpcClient, senders, txCfg, cfg.Simulate, zl)
	controller := meteora.NewController(w, b, zl)
	listener := eventlistener.New(cfg.WSRPC, rpcClient, meteora.ProgramID, controller, zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("watching for new pools",
		zap.String("program", meteora.ProgramID.String()),
		zap.Bool("simulate", cfg.Simulate),
		zap.Int("relays", len(senders)))

	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("listener stopped", zap.Error(err))
	}
	zl.Info("shutdown complete")
}
