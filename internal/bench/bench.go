// ==================================
// File: internal/bench/bench.go
// ==================================

// Package bench fires the buy across every configured relay at once and
// measures how long each submission took to be accepted, in wall time and
// in block heights.
package bench

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/relay"
	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// Bench implements the Broadcaster side of the controller. In simulate
// mode it runs the transaction through RPC simulation instead of
// submitting anywhere.
type Bench struct {
	rpcClient *rpc.Client
	senders   []relay.Sender
	txCfg     transaction.Config
	simulate  bool
	logger    *zap.Logger
}

func New(rpcClient *rpc.Client, senders []relay.Sender, txCfg transaction.Config, simulate bool, logger *zap.Logger) *Bench {
	return &Bench{
		rpcClient: rpcClient,
		senders:   senders,
		txCfg:     txCfg,
		simulate:  simulate,
		logger:    logger.With(zap.String("component", "bench")),
	}
}

// SendBuy races the buy across all relays, or simulates it once when
// simulate mode is on. Relay failures are independent: one relay erroring
// never stops the others, and the call returns only after every relay has
// finished.
func (b *Bench) SendBuy(ctx context.Context, recentBlockhash solana.Hash, params *meteora.SwapParams) {
	if b.simulate {
		b.runSimulation(ctx, params)
		return
	}

	var g errgroup.Group
	for _, sender := range b.senders {
		sender := sender
		g.Go(func() error {
			b.raceOne(ctx, sender, recentBlockhash, params)
			return nil
		})
	}
	// goroutines never return errors, they report through the logger
	_ = g.Wait()
}

func (b *Bench) raceOne(
	ctx context.Context,
	sender relay.Sender,
	recentBlockhash solana.Hash,
	params *meteora.SwapParams,
) {
	log := b.logger.With(zap.String("relay", sender.Name()))

	heightBefore, beforeErr := sender.BlockHeight(ctx)
	if beforeErr != nil {
		log.Warn("block height before send unavailable", zap.Error(beforeErr))
	}

	start := time.Now()
	result, err := sender.SendSwap(ctx, recentBlockhash, params)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("relay submission failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return
	}

	heightAfter, afterErr := sender.BlockHeight(ctx)
	if afterErr != nil {
		log.Warn("block height after send unavailable", zap.Error(afterErr))
	}

	fields := []zap.Field{
		zap.String("result", result.String()),
		zap.Duration("elapsed", elapsed),
	}
	// the block delta is only meaningful when both queries succeeded
	if beforeErr == nil && afterErr == nil {
		blocks := uint64(0)
		if heightAfter > heightBefore {
			blocks = heightAfter - heightBefore
		}
		fields = append(fields,
			zap.Uint64("height_before", heightBefore),
			zap.Uint64("height_after", heightAfter),
			zap.Uint64("blocks", blocks))
	}
	log.Info("relay accepted transaction", fields...)
}

// runSimulation builds the plain-RPC variant of the transaction against a
// fresh blockhash and runs it through simulateTransaction. Nothing is
// submitted.
func (b *Bench) runSimulation(ctx context.Context, params *meteora.SwapParams) {
	recent, err := b.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		b.logger.Error("fetch blockhash for simulation", zap.Error(err))
		return
	}

	tx, err := transaction.BuildSwapTx(b.txCfg, config.RelayRPC, recent.Value.Blockhash, params)
	if err != nil {
		b.logger.Error("build transaction for simulation", zap.Error(err))
		return
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		b.logger.Error("serialize transaction for simulation", zap.Error(err))
		return
	}
	b.logger.Debug("simulating transaction",
		zap.String("tx_base64", base64.StdEncoding.EncodeToString(raw)),
		zap.String("mint", params.TargetMint.String()),
		zap.String("pool", params.Pool.String()))
	for i, key := range tx.Message.AccountKeys {
		b.logger.Debug("simulation account",
			zap.Int("index", i),
			zap.String("pubkey", key.String()))
	}

	resp, err := b.rpcClient.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
		Commitment:             rpc.CommitmentProcessed,
	})
	if err != nil {
		b.logger.Error("simulation request failed", zap.Error(err))
		return
	}

	sim := resp.Value
	if sim.Err != nil {
		b.logger.Error("simulation returned error",
			zap.Any("error", sim.Err),
			zap.Strings("logs", sim.Logs))
		return
	}

	var unitsConsumed uint64
	if sim.UnitsConsumed != nil {
		unitsConsumed = *sim.UnitsConsumed
	}
	b.logger.Info("simulation succeeded",
		zap.Uint64("units_consumed", unitsConsumed),
		zap.Int("log_lines", len(sim.Logs)))
	for _, line := range sim.Logs {
		b.logger.Debug("simulation log", zap.String("line", line))
	}
}
