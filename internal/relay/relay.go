// ==================================
// File: internal/relay/relay.go
// ==================================

// Package relay implements the transaction submission backends the bot
// races against each other: plain RPC, Jito bundles, bloXroute and
// NextBlock.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// Result identifies a submitted transaction on whichever relay accepted it.
// Exactly one of the fields is set.
type Result struct {
	Signature string
	BundleID  string
}

func (r Result) String() string {
	if r.BundleID != "" {
		return "bundle " + r.BundleID
	}
	return "signature " + r.Signature
}

// Sender is one submission backend. SendSwap builds, signs and submits the
// buy transaction; BlockHeight reports the current confirmed height so the
// bench can measure how many blocks the landing took.
type Sender interface {
	Name() string
	SendSwap(ctx context.Context, recentBlockhash solana.Hash, params *meteora.SwapParams) (Result, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

const httpTimeout = 15 * time.Second

// BuildSenders instantiates one sender per configured relay. Relays that
// require an auth token but have none configured are skipped with a
// warning rather than failing the run.
func BuildSenders(cfg *config.Config, txCfg transaction.Config, logger *zap.Logger) []Sender {
	heights := rpc.New(cfg.HTTPRPC)
	client := &http.Client{Timeout: httpTimeout}

	var senders []Sender
	for name, rc := range cfg.Relays {
		switch rc.Type {
		case config.RelayRPC:
			senders = append(senders, NewRPCSender(name, rc.URL, txCfg))
		case config.RelayJito:
			senders = append(senders, NewJitoSender(name, rc.URL, rc.Auth, txCfg, client, heights))
		case config.RelayBloxroute:
			if rc.Auth == "" {
				logger.Warn("skipping relay without auth token", zap.String("relay", name))
				continue
			}
			senders = append(senders, NewBloxrouteSender(name, rc.URL, rc.Auth, txCfg, client, heights))
		case config.RelayNextBlock:
			if rc.Auth == "" {
				logger.Warn("skipping relay without auth token", zap.String("relay", name))
				continue
			}
			senders = append(senders, NewNextBlockSender(name, rc.URL, rc.Auth, txCfg, client, heights))
		default:
			logger.Warn("skipping relay with unknown type",
				zap.String("relay", name), zap.String("type", string(rc.Type)))
		}
	}
	return senders
}

func encodeTx(tx *solana.Transaction) ([]byte, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return raw, nil
}
