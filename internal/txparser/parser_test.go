// ==================================
// File: internal/txparser/parser_test.go
// ==================================
package txparser

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeKeys(n int) []solana.PublicKey {
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		pk, err := solana.NewRandomPrivateKey()
		if err != nil {
			panic(err)
		}
		keys[i] = pk.PublicKey()
	}
	return keys
}

func TestExtractInstructions_StaticKeysOnly(t *testing.T) {
	keys := makeKeys(4)
	tx := &solana.Transaction{
		Message: solana.Message{
			Header: solana.MessageHeader{
				NumRequiredSignatures: 1,
				// the last two static keys (index 2 and the program at
				// index 3) are read-only
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 2,
			},
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 3,
					Accounts:       []uint16{0, 1, 2},
					Data:           []byte{1, 2, 3},
				},
			},
		},
	}

	out, err := ExtractInstructions(tx, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	inst := out[0]
	assert.Equal(t, keys[3], inst.ProgramID)
	assert.Equal(t, []byte{1, 2, 3}, inst.Data)
	require.Len(t, inst.Accounts, 3)

	// index 0: fee payer, signer and writable
	assert.True(t, inst.Accounts[0].IsSigner)
	assert.True(t, inst.Accounts[0].IsWritable)
	// index 1: static unsigned writable
	assert.False(t, inst.Accounts[1].IsSigner)
	assert.True(t, inst.Accounts[1].IsWritable)
	// index 2: static unsigned readonly
	assert.False(t, inst.Accounts[2].IsSigner)
	assert.False(t, inst.Accounts[2].IsWritable)
}

func TestExtractInstructions_LoadedAddressesFollowStaticKeys(t *testing.T) {
	static := makeKeys(3)
	loadedWritable := makeKeys(2)
	loadedReadonly := makeKeys(1)

	tx := &solana.Transaction{
		Message: solana.Message{
			Header: solana.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlyUnsignedAccounts: 1,
			},
			AccountKeys: static,
			Instructions: []solana.CompiledInstruction{
				{
					ProgramIDIndex: 2,
					// 3,4 resolve into the loaded writable section, 5 into readonly
					Accounts: []uint16{3, 4, 5},
					Data:     []byte{0xaa},
				},
			},
		},
	}
	meta := &rpc.TransactionMeta{
		LoadedAddresses: rpc.LoadedAddresses{
			Writable: loadedWritable,
			ReadOnly: loadedReadonly,
		},
	}

	out, err := ExtractInstructions(tx, meta)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Accounts, 3)

	assert.Equal(t, loadedWritable[0], out[0].Accounts[0].PublicKey)
	assert.True(t, out[0].Accounts[0].IsWritable)
	assert.False(t, out[0].Accounts[0].IsSigner)

	assert.Equal(t, loadedWritable[1], out[0].Accounts[1].PublicKey)
	assert.True(t, out[0].Accounts[1].IsWritable)

	assert.Equal(t, loadedReadonly[0], out[0].Accounts[2].PublicKey)
	assert.False(t, out[0].Accounts[2].IsWritable)
	assert.False(t, out[0].Accounts[2].IsSigner)
}

func TestExtractInstructions_SplicesInnerInstructions(t *testing.T) {
	keys := makeKeys(5)
	tx := &solana.Transaction{
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 3, Accounts: []uint16{0}, Data: []byte{1}},
				{ProgramIDIndex: 4, Accounts: []uint16{0}, Data: []byte{2}},
			},
		},
	}
	meta := &rpc.TransactionMeta{
		InnerInstructions: []rpc.InnerInstruction{
			{
				Index: 0,
				Instructions: []solana.CompiledInstruction{
					{ProgramIDIndex: 4, Accounts: []uint16{1}, Data: []byte{10}},
					{ProgramIDIndex: 4, Accounts: []uint16{2}, Data: []byte{11}},
				},
			},
		},
	}

	out, err := ExtractInstructions(tx, meta)
	require.NoError(t, err)
	require.Len(t, out, 4)

	// top-level 0, its two inner calls, then top-level 1
	assert.Equal(t, []byte{1}, out[0].Data)
	assert.Equal(t, []byte{10}, out[1].Data)
	assert.Equal(t, []byte{11}, out[2].Data)
	assert.Equal(t, []byte{2}, out[3].Data)
}

func TestExtractInstructions_IndexOutOfRange(t *testing.T) {
	keys := makeKeys(2)
	tx := &solana.Transaction{
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: keys,
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 1, Accounts: []uint16{7}, Data: []byte{1}},
			},
		},
	}

	_, err := ExtractInstructions(tx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestExtractInstructions_NilTransaction(t *testing.T) {
	_, err := ExtractInstructions(nil, nil)
	require.Error(t, err)
}
