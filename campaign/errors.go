package campaign

import (
	"github.com/kinecosystem/agora-crowdfund/solana"
)

// FailureReason explains an instruction error raised by the campaign program.
// It returns "" for errors the program does not raise.
func FailureReason(e solana.InstructionError) string {
	switch e.Key {
	case solana.InstructionErrorInvalidInstructionData:
		return "unknown campaign instruction or malformed campaign data"
	case solana.InstructionErrorIncorrectProgramID:
		// Raised both for accounts not owned by the program and for missing
		// signers.
		return "campaign account not owned by the program, or a required signer is missing"
	case solana.InstructionErrorInsufficientFunds:
		return "campaign balance is insufficient"
	case solana.InstructionErrorInvalidAccountData:
		return "only the campaign admin can withdraw"
	case solana.InstructionErrorProgramFailedToComplete:
		return "campaign account holds no valid campaign"
	default:
		return ""
	}
}
