// ==================================
// File: internal/meteora/types.go
// ==================================
package meteora

import "github.com/gagliardetto/solana-go"

// TradeDirection is the side of the swap relative to the pool's token pair.
type TradeDirection uint8

const (
	// AtoB swaps token A into token B (WSOL is token A).
	AtoB TradeDirection = 0
	// BtoA swaps token B into token A (WSOL is token B).
	BtoA TradeDirection = 1
)

func (d TradeDirection) String() string {
	if d == AtoB {
		return "AtoB"
	}
	return "BtoA"
}

// SwapParams carries every account required to build a swap instruction
// against a freshly initialized pool. Values are copied out of the
// init-pool instruction and never mutated afterwards.
type SwapParams struct {
	Pool      solana.PublicKey
	Direction TradeDirection

	// User token accounts.
	UserSource      solana.PublicKey // WSOL ATA
	UserDestination solana.PublicKey // ATA for the target token, created in-flight

	// Pool vaults.
	AVault solana.PublicKey
	BVault solana.PublicKey

	// Token vaults inside the vault program.
	ATokenVault solana.PublicKey
	BTokenVault solana.PublicKey

	// LP accounts.
	AVaultLPMint solana.PublicKey
	BVaultLPMint solana.PublicKey
	AVaultLP     solana.PublicKey
	BVaultLP     solana.PublicKey

	// Protocol fee token account; which side it sits on depends on direction.
	ProtocolTokenFee solana.PublicKey

	// Programs.
	VaultProgram solana.PublicKey
	TokenProgram solana.PublicKey

	// The newly listed token paired against WSOL.
	TargetMint solana.PublicKey
}
