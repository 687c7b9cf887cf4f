// ==================================
// File: internal/txparser/parser.go
// ==================================

// Package txparser flattens a confirmed transaction into the full ordered
// list of executed instructions, resolving account indices against the
// combined key list (static message keys followed by addresses loaded from
// lookup tables).
package txparser

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// DecodedInstruction is one executed instruction with its account index
// references resolved to concrete keys.
type DecodedInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

// ExtractInstructions returns every instruction the transaction executed:
// each top-level instruction in message order, immediately followed by the
// inner instructions its execution invoked, as reported by the metadata.
//
// Index resolution follows the runtime's account ordering: static message
// keys, then lookup-table loaded writable keys, then loaded read-only keys.
// Getting this order wrong does not fail; it silently yields wrong account
// identities, so it is the one invariant this package must hold.
func ExtractInstructions(tx *solana.Transaction, meta *rpc.TransactionMeta) ([]DecodedInstruction, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil transaction")
	}

	keys := make(solana.PublicKeySlice, 0, len(tx.Message.AccountKeys))
	keys = append(keys, tx.Message.AccountKeys...)
	numLoadedWritable := 0
	if meta != nil {
		keys = append(keys, meta.LoadedAddresses.Writable...)
		keys = append(keys, meta.LoadedAddresses.ReadOnly...)
		numLoadedWritable = len(meta.LoadedAddresses.Writable)
	}

	var out []DecodedInstruction
	for i, compiled := range tx.Message.Instructions {
		decoded, err := decodeCompiled(&tx.Message, keys, numLoadedWritable, compiled)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, decoded)

		for _, inner := range innerInstructionsAt(meta, i) {
			decodedInner, err := decodeCompiled(&tx.Message, keys, numLoadedWritable, inner)
			if err != nil {
				return nil, fmt.Errorf("inner instruction of %d: %w", i, err)
			}
			out = append(out, decodedInner)
		}
	}
	return out, nil
}

func innerInstructionsAt(meta *rpc.TransactionMeta, index int) []solana.CompiledInstruction {
	if meta == nil {
		return nil
	}
	for _, set := range meta.InnerInstructions {
		if set.Index == uint16(index) {
			return set.Instructions
		}
	}
	return nil
}

func decodeCompiled(
	msg *solana.Message,
	keys solana.PublicKeySlice,
	numLoadedWritable int,
	compiled solana.CompiledInstruction,
) (DecodedInstruction, error) {
	if int(compiled.ProgramIDIndex) >= len(keys) {
		return DecodedInstruction{}, fmt.Errorf(
			"program index %d out of range (have %d accounts)", compiled.ProgramIDIndex, len(keys))
	}

	accounts := make([]*solana.AccountMeta, len(compiled.Accounts))
	for i, idx := range compiled.Accounts {
		if int(idx) >= len(keys) {
			return DecodedInstruction{}, fmt.Errorf(
				"account index %d out of range (have %d accounts)", idx, len(keys))
		}
		accounts[i] = resolveAccountMeta(msg, keys, numLoadedWritable, int(idx))
	}

	return DecodedInstruction{
		ProgramID: keys[compiled.ProgramIDIndex],
		Accounts:  accounts,
		Data:      compiled.Data,
	}, nil
}

// resolveAccountMeta derives signer/writable flags for a combined-list index.
// Static keys follow the message header layout; loaded keys are writable
// or read-only by which lookup-table section they came from.
func resolveAccountMeta(
	msg *solana.Message,
	keys solana.PublicKeySlice,
	numLoadedWritable int,
	idx int,
) *solana.AccountMeta {
	numStatic := len(msg.AccountKeys)
	header := msg.Header

	meta := &solana.AccountMeta{PublicKey: keys[idx]}
	switch {
	case idx < int(header.NumRequiredSignatures):
		meta.IsSigner = true
		meta.IsWritable = idx < int(header.NumRequiredSignatures-header.NumReadonlySignedAccounts)
	case idx < numStatic:
		meta.IsWritable = idx < numStatic-int(header.NumReadonlyUnsignedAccounts)
	case idx < numStatic+numLoadedWritable:
		meta.IsWritable = true
	}
	return meta
}
