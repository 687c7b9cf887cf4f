// ==================================
// File: internal/transaction/builder.go
// ==================================

// Package transaction assembles and signs the buy transaction fired at a
// freshly detected pool.
package transaction

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/meteora"
)

// jitoTipAddress is one of Jito's mainnet tip accounts. Bundles without a
// tip transfer are rejected by the block engine.
var jitoTipAddress = solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5")

// Token program opcodes used by the raw instructions below.
const (
	tokenOpCloseAccount = 9
	tokenOpSyncNative   = 17
)

// BuildSwapTx builds and signs the complete buy transaction for the given
// relay kind. All relay kinds get the same instruction sequence except for
// the Jito tip transfer, which only Jito bundles carry.
func BuildSwapTx(
	cfg Config,
	kind config.RelayKind,
	recentBlockhash solana.Hash,
	params *meteora.SwapParams,
) (*solana.Transaction, error) {
	instructions, err := buildInstructions(cfg, kind, params)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		instructions,
		recentBlockhash,
		solana.TransactionPayer(cfg.Signer()),
	)
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}
	tx.Message.SetVersion(solana.MessageVersionV0)

	if err := cfg.Wallet.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

// buildInstructions returns the ordered instruction list:
//
//	1. compute unit limit and price (each only when configured)
//	2. Jito tip transfer (Jito kind only, tip > 0)
//	3. create WSOL ATA (idempotent)
//	4. transfer buy amount into the WSOL ATA
//	5. sync native
//	6. create target-token ATA (idempotent)
//	7. swap
//	8. close WSOL ATA
func buildInstructions(
	cfg Config,
	kind config.RelayKind,
	params *meteora.SwapParams,
) ([]solana.Instruction, error) {
	signer := cfg.Signer()

	var instructions []solana.Instruction
	if cfg.ComputeUnitLimit > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(cfg.ComputeUnitLimit).Build())
	}
	if cfg.ComputeUnitPrice > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(cfg.ComputeUnitPrice).Build())
	}

	if kind == config.RelayJito && cfg.Tip > 0 {
		instructions = append(instructions,
			system.NewTransferInstruction(cfg.Tip, signer, jitoTipAddress).Build())
	}

	createSource, err := cfg.Wallet.CreateATAIdempotentInstruction(meteora.WSOLMint)
	if err != nil {
		return nil, fmt.Errorf("create wrapped SOL account instruction: %w", err)
	}
	createDestination, err := cfg.Wallet.CreateATAIdempotentInstruction(params.TargetMint)
	if err != nil {
		return nil, fmt.Errorf("create destination account instruction: %w", err)
	}

	instructions = append(instructions,
		createSource,
		system.NewTransferInstruction(cfg.BuyAmount, signer, params.UserSource).Build(),
		newSyncNativeInstruction(params.UserSource),
		createDestination,
	)

	swap, err := newSwapInstruction(cfg, signer, params)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions,
		swap,
		newCloseAccountInstruction(params.UserSource, signer),
	)
	return instructions, nil
}

// newSwapInstruction encodes the Meteora swap call. The payload is the
// 8-byte discriminator, the input amount, the minimum output amount and a
// trailing direction byte.
func newSwapInstruction(cfg Config, signer solana.PublicKey, params *meteora.SwapParams) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(meteora.SwapDiscriminator[:], false); err != nil {
		return nil, fmt.Errorf("encode swap discriminator: %w", err)
	}
	if err := enc.WriteUint64(cfg.BuyAmount, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode buy amount: %w", err)
	}
	if err := enc.WriteUint64(cfg.MinAmountOut, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode min amount out: %w", err)
	}
	if err := enc.WriteByte(byte(params.Direction)); err != nil {
		return nil, fmt.Errorf("encode direction: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(params.Pool, true, false),
		solana.NewAccountMeta(params.UserSource, true, false),
		solana.NewAccountMeta(params.UserDestination, true, false),
		solana.NewAccountMeta(params.AVault, true, false),
		solana.NewAccountMeta(params.BVault, true, false),
		solana.NewAccountMeta(params.ATokenVault, true, false),
		solana.NewAccountMeta(params.BTokenVault, true, false),
		solana.NewAccountMeta(params.AVaultLPMint, true, false),
		solana.NewAccountMeta(params.BVaultLPMint, true, false),
		solana.NewAccountMeta(params.AVaultLP, true, false),
		solana.NewAccountMeta(params.BVaultLP, true, false),
		solana.NewAccountMeta(params.ProtocolTokenFee, true, false),
		solana.NewAccountMeta(signer, false, true),
		solana.NewAccountMeta(params.VaultProgram, false, false),
		solana.NewAccountMeta(params.TokenProgram, false, false),
	}
	return solana.NewInstruction(meteora.ProgramID, accounts, buf.Bytes()), nil
}

// newSyncNativeInstruction updates the WSOL ATA's token balance to match
// the lamports just transferred into it.
func newSyncNativeInstruction(ata solana.PublicKey) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(ata, true, false),
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, []byte{tokenOpSyncNative, 0, 0, 0})
}

// newCloseAccountInstruction closes the WSOL ATA and returns the remaining
// lamports to the owner.
func newCloseAccountInstruction(ata, owner solana.PublicKey) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(ata, true, false),
		solana.NewAccountMeta(owner, true, false),
		solana.NewAccountMeta(owner, false, true),
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, []byte{tokenOpCloseAccount})
}
