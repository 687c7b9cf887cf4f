// ==================================
// File: internal/meteora/constants.go
// ==================================
package meteora

import "github.com/gagliardetto/solana-go"

var (
	// ProgramID is the Meteora Dynamic AMM pools program.
	ProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")

	// WSOLMint is the wrapped SOL mint on mainnet.
	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// Anchor discriminators for the instructions this bot cares about.
var (
	// initializePermissionlessConstantProductPoolWithConfig2
	InitPoolDiscriminator = [8]byte{48, 149, 220, 130, 61, 11, 9, 178}
	// initializePermissionlessConstantProductPoolWithConfig (v1)
	InitPoolDiscriminatorV1 = [8]byte{0x22, 0x80, 0x79, 0x2d, 0xab, 0x3e, 0xd2, 0x7e}
	// swap
	SwapDiscriminator = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}
)

// Account positions inside the init-pool instruction.
const (
	idxPool             = 0
	idxTokenAMint       = 3
	idxTokenBMint       = 4
	idxAVault           = 5
	idxBVault           = 6
	idxATokenVault      = 7
	idxBTokenVault      = 8
	idxAVaultLPMint     = 9
	idxBVaultLPMint     = 10
	idxAVaultLP         = 11
	idxBVaultLP         = 12
	idxProtocolTokenAFe = 16
	idxProtocolTokenBFe = 17
	// positions 13-15 and 18-21 (payer accounts, rent, metadata) are not
	// needed for buying.
	idxVaultProgram = 22
	idxTokenProgram = 23
)

// initPoolMinAccounts is the smallest account list that still carries
// every position the resolver reads.
const initPoolMinAccounts = idxTokenProgram + 1
