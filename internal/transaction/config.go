// ==================================
// File: internal/transaction/config.go
// ==================================
package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/wallet"
)

// Config holds the signing wallet and the economics parameters of the run.
// It is built once from configuration and treated as read-only afterwards,
// so it is safe to share across concurrent relay senders.
type Config struct {
	Wallet           *wallet.Wallet
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64 // micro-lamports per compute unit
	Tip              uint64 // lamports
	BuyAmount        uint64 // lamports
	MinAmountOut     uint64 // token base units
}

// NewConfig converts the human-scale configuration values (SOL, tokens)
// into the on-chain units the builder works with.
func NewConfig(w *wallet.Wallet, cfg *config.Config) Config {
	return Config{
		Wallet:           w,
		ComputeUnitLimit: cfg.ComputeUnitLimit,
		ComputeUnitPrice: cfg.ComputeUnitPrice,
		Tip:              uint64(cfg.Tip * float64(solana.LAMPORTS_PER_SOL)),
		BuyAmount:        uint64(cfg.BuyAmount * float64(solana.LAMPORTS_PER_SOL)),
		MinAmountOut:     uint64(cfg.MinAmountOut * 1_000_000),
	}
}

// Signer returns the public key of the signing keypair.
func (c *Config) Signer() solana.PublicKey {
	return c.Wallet.PublicKey
}

// String redacts the private key.
func (c Config) String() string {
	return fmt.Sprintf(
		"transaction.Config{signer: %s, cu_limit: %d, cu_price: %d, tip: %d, buy_amount: %d, min_amount_out: %d}",
		c.Signer(), c.ComputeUnitLimit, c.ComputeUnitPrice, c.Tip, c.BuyAmount, c.MinAmountOut,
	)
}
