package system

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

var ProgramKey [32]byte

const (
	// nolint:varcheck,deadcode,unused
	commandCreateAccount uint32 = iota
	// nolint:varcheck,deadcode,unused
	commandAssign
	commandTransfer
	commandCreateAccountWithSeed
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L88-L113
func CreateAccountWithSeed(funder, address, base ed25519.PublicKey, seed string, lamports, size uint64, owner ed25519.PublicKey) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Created account
	//   2. [SIGNER] (optional) Base account; the account matching the base Pubkey below must be
	//                          provided as a signer, but may be the same as the funding account
	//                          and provided as account 0
	//
	// CreateAccountWithSeed {
	//   base: Pubkey,
	//   seed: String,
	//   lamports: u64,
	//   space: u64,
	//   owner: Pubkey,
	// }
	//
	// Strings are bincode encoded, with a u64 length prefix.
	data := make([]byte, 4+32+8+len(seed)+2*8+32)
	binary.LittleEndian.PutUint32(data, commandCreateAccountWithSeed)

	offset := 4
	copy(data[offset:], base)
	offset += 32
	binary.LittleEndian.PutUint64(data[offset:], uint64(len(seed)))
	offset += 8
	copy(data[offset:], seed)
	offset += len(seed)
	binary.LittleEndian.PutUint64(data[offset:], lamports)
	offset += 8
	binary.LittleEndian.PutUint64(data[offset:], size)
	offset += 8
	copy(data[offset:], owner)

	accounts := []solana.AccountMeta{
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, false),
	}
	if !bytes.Equal(base, funder) {
		accounts = append(accounts, solana.NewReadonlyAccountMeta(base, true))
	}

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		accounts...,
	)
}

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L79-L86
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data, commandTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

type DecompiledCreateAccountWithSeed struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey
	Base    ed25519.PublicKey
	Seed    string

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccountWithSeed(m solana.Message, index int) (*DecompiledCreateAccountWithSeed, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey[:]) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) < 4 || binary.LittleEndian.Uint32(i.Data) != commandCreateAccountWithSeed {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 && len(i.Accounts) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) < 4+32+8 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	seedLen := binary.LittleEndian.Uint64(i.Data[4+32:])
	if seedLen > solana.MaxSeedLength {
		return nil, errors.Errorf("invalid seed length: %d", seedLen)
	}
	if uint64(len(i.Data)) != 4+32+8+seedLen+2*8+32 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	v := &DecompiledCreateAccountWithSeed{
		Funder:  m.Accounts[i.Accounts[0]],
		Address: m.Accounts[i.Accounts[1]],
	}

	offset := 4
	v.Base = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(v.Base, i.Data[offset:])
	offset += 32 + 8
	v.Seed = string(i.Data[offset : offset+int(seedLen)])
	offset += int(seedLen)
	v.Lamports = binary.LittleEndian.Uint64(i.Data[offset:])
	offset += 8
	v.Size = binary.LittleEndian.Uint64(i.Data[offset:])
	offset += 8
	v.Owner = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(v.Owner, i.Data[offset:])

	if len(i.Accounts) == 3 && !bytes.Equal(m.Accounts[i.Accounts[2]], v.Base) {
		return nil, errors.New("base account does not match instruction data")
	}

	return v, nil
}
