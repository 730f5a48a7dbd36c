package system

import (
	"github.com/kinecosystem/agora-crowdfund/solana"
)

// Custom error codes of the system program.
//
// Source: https://github.com/solana-labs/solana/blob/master/sdk/program/src/system_instruction.rs#L17
const (
	ErrorAccountAlreadyInUse uint32 = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramID
	ErrorInvalidAccountDataLength
	ErrorMaxSeedLengthExceeded
	ErrorAddressWithSeedMismatch
)

// FailureReason explains an instruction error raised by the system program.
// It returns "" for unknown errors.
func FailureReason(e solana.InstructionError) string {
	if e.Key != solana.InstructionErrorCustom {
		return ""
	}

	switch e.Code {
	case ErrorAccountAlreadyInUse:
		return "account already exists"
	case ErrorResultWithNegativeLamports:
		return "funder has insufficient lamports"
	case ErrorInvalidProgramID:
		return "invalid owner program"
	case ErrorInvalidAccountDataLength:
		return "invalid account size"
	case ErrorMaxSeedLengthExceeded:
		return "seed too long"
	case ErrorAddressWithSeedMismatch:
		return "address does not match base and seed"
	default:
		return ""
	}
}
