// ==================================
// File: internal/relay/rpc.go
// ==================================
package relay

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// RPCSender submits through a plain Solana RPC node with preflight
// disabled.
type RPCSender struct {
	name   string
	client *rpc.Client
	txCfg  transaction.Config
}

func NewRPCSender(name, url string, txCfg transaction.Config) *RPCSender {
	return &RPCSender{
		name:   name,
		client: rpc.New(url),
		txCfg:  txCfg,
	}
}

func (s *RPCSender) Name() string { return s.name }

func (s *RPCSender) SendSwap(
	ctx context.Context,
	recentBlockhash solana.Hash,
	params *meteora.SwapParams,
) (Result, error) {
	tx, err := transaction.BuildSwapTx(s.txCfg, config.RelayRPC, recentBlockhash, params)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.name, err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: send transaction: %w", s.name, err)
	}
	return Result{Signature: sig.String()}, nil
}

func (s *RPCSender) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := s.client.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("%s: get block height: %w", s.name, err)
	}
	return height, nil
}
