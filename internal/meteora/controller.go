// ==================================
// File: internal/meteora/controller.go
// ==================================
package meteora

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/deadraid/meteora-sniper/internal/txparser"
	"github.com/deadraid/meteora-sniper/internal/wallet"
)

// Broadcaster receives the single buy trigger once a qualifying pool is
// detected. Implemented by bench.Bench.
type Broadcaster interface {
	SendBuy(ctx context.Context, recentBlockhash solana.Hash, params *SwapParams)
}

// Controller watches the transaction feed for Meteora pool initializations
// that pair a new token with WSOL and fires exactly one buy per run.
//
// The controller is single-threaded by contract: HandleTransaction is only
// ever called from the detection loop, so bought/seenMints need no locking.
type Controller struct {
	wallet *wallet.Wallet
	bench  Broadcaster
	logger *zap.Logger

	// bought latches after the first buy; no further purchase is issued.
	bought bool
	// seenMints records targets already reacted to so duplicate pool
	// events for the same mint stay silent.
	seenMints map[solana.PublicKey]struct{}
}

func NewController(w *wallet.Wallet, bench Broadcaster, logger *zap.Logger) *Controller {
	return &Controller{
		wallet:    w,
		bench:     bench,
		logger:    logger.With(zap.String("component", "meteora_controller")),
		seenMints: make(map[solana.PublicKey]struct{}),
	}
}

// HandleTransaction is the single entry point of the detection pipeline.
// Absence of a qualifying instruction is a silent no-op; only malformed
// input (unresolvable account indices) surfaces as an error.
func (c *Controller) HandleTransaction(
	ctx context.Context,
	signature solana.Signature,
	tx *solana.Transaction,
	meta *rpc.TransactionMeta,
	isVote bool,
	slot uint64,
) error {
	if c.bought || isVote {
		return nil
	}

	instructions, err := txparser.ExtractInstructions(tx, meta)
	if err != nil {
		return fmt.Errorf("extract instructions for %s: %w", signature, err)
	}

	target := findInitPoolInstruction(instructions)
	if target == nil {
		return nil
	}
	if len(target.Accounts) < initPoolMinAccounts {
		c.logger.Debug("init-pool instruction with truncated account list",
			zap.String("signature", signature.String()),
			zap.Int("accounts", len(target.Accounts)))
		return nil
	}

	tokenAMint := target.Accounts[idxTokenAMint].PublicKey
	tokenBMint := target.Accounts[idxTokenBMint].PublicKey

	var (
		targetMint solana.PublicKey
		direction  TradeDirection
		feeAccount solana.PublicKey
	)
	switch {
	case tokenAMint.Equals(WSOLMint):
		targetMint = tokenBMint
		direction = AtoB
		feeAccount = target.Accounts[idxProtocolTokenAFe].PublicKey
	case tokenBMint.Equals(WSOLMint):
		targetMint = tokenAMint
		direction = BtoA
		feeAccount = target.Accounts[idxProtocolTokenBFe].PublicKey
	default:
		// Pool between two non-WSOL tokens.
		return nil
	}

	if _, seen := c.seenMints[targetMint]; seen {
		return nil
	}
	c.seenMints[targetMint] = struct{}{}

	c.logger.Info("detected first WSOL liquidity",
		zap.String("mint", targetMint.String()),
		zap.String("pool", target.Accounts[idxPool].PublicKey.String()),
		zap.String("direction", direction.String()),
		zap.Uint64("slot", slot))

	userSource, err := c.wallet.ATA(WSOLMint)
	if err != nil {
		return fmt.Errorf("derive WSOL ATA: %w", err)
	}
	userDestination, err := c.wallet.ATA(targetMint)
	if err != nil {
		return fmt.Errorf("derive target ATA: %w", err)
	}

	params := &SwapParams{
		Pool:             target.Accounts[idxPool].PublicKey,
		Direction:        direction,
		UserSource:       userSource,
		UserDestination:  userDestination,
		AVault:           target.Accounts[idxAVault].PublicKey,
		BVault:           target.Accounts[idxBVault].PublicKey,
		ATokenVault:      target.Accounts[idxATokenVault].PublicKey,
		BTokenVault:      target.Accounts[idxBTokenVault].PublicKey,
		AVaultLPMint:     target.Accounts[idxAVaultLPMint].PublicKey,
		BVaultLPMint:     target.Accounts[idxBVaultLPMint].PublicKey,
		AVaultLP:         target.Accounts[idxAVaultLP].PublicKey,
		BVaultLP:         target.Accounts[idxBVaultLP].PublicKey,
		ProtocolTokenFee: feeAccount,
		VaultProgram:     target.Accounts[idxVaultProgram].PublicKey,
		TokenProgram:     target.Accounts[idxTokenProgram].PublicKey,
		TargetMint:       targetMint,
	}

	c.bought = true
	c.bench.SendBuy(ctx, tx.Message.RecentBlockhash, params)

	return nil
}

// findInitPoolInstruction returns the first Meteora instruction whose
// payload starts with either init-pool discriminator. Later matches in the
// same transaction are ignored.
func findInitPoolInstruction(instructions []txparser.DecodedInstruction) *txparser.DecodedInstruction {
	for i := range instructions {
		inst := &instructions[i]
		if !inst.ProgramID.Equals(ProgramID) {
			continue
		}
		if len(inst.Data) < 8 {
			continue
		}
		if bytes.HasPrefix(inst.Data, InitPoolDiscriminator[:]) ||
			bytes.HasPrefix(inst.Data, InitPoolDiscriminatorV1[:]) {
			return inst
		}
	}
	return nil
}
