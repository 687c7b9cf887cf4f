// ==================================
// File: cmd/injectsim/main.go
// ==================================

// injectsim replays a historical pool-initialization transaction through
// the detection pipeline with simulation forced on. Useful for verifying
// the account resolution and swap construction against a known listing
// without spending anything.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/deadraid/meteora-sniper/internal/bench"
	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/logger"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/transaction"
	"github.com/deadraid/meteora-sniper/internal/wallet"
)

// defaultSignature is a known Meteora pool initialization, kept as a
// ready-made regression input.
const defaultSignature = "5QWwTAMs98vsPdYbeKbZvKfJQEbaxvB4XDP1EuNaDMXGyJ2Yu8pxnq21a9xmHuGgraYx8pted1qPA6jQQc2DX4ZH"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	sigFlag := flag.String("signature", defaultSignature, "pool initialization transaction to replay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	cfg.Simulate = true

	zl, err := logger.New(cfg.DebugLogging, cfg.LogFile)
	if err != nil {
		log.Fatalf("initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	signature, err := solana.SignatureFromBase58(*sigFlag)
	if err != nil {
		zl.Fatal("parse signature", zap.Error(err))
	}

	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		zl.Fatal("load wallet", zap.Error(err))
	}

	txCfg := transaction.NewConfig(w, cfg)
	rpcClient := rpc.New(cfg.HTTPRPC)
	b := bench.New(rpcClient, nil, txCfg, true, zl)
	controller := meteora.NewController(w, b, zl)

	ctx := context.Background()
	maxVersion := uint64(0)
	resp, err := rpcClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		zl.Fatal("fetch transaction", zap.String("signature", signature.String()), zap.Error(err))
	}
	if resp == nil || resp.Transaction == nil {
		zl.Fatal("transaction not found", zap.String("signature", signature.String()))
	}

	tx, err := resp.Transaction.GetTransaction()
	if err != nil {
		zl.Fatal("decode transaction", zap.Error(err))
	}

	if err := controller.HandleTransaction(ctx, signature, tx, resp.Meta, false, resp.Slot); err != nil {
		zl.Fatal("replay failed", zap.Error(err))
	}
	zl.Info("replay finished", zap.String("signature", signature.String()))
}
