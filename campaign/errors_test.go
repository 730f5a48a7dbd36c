package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

func TestFailureReason(t *testing.T) {
	for _, key := range []solana.InstructionErrorKey{
		solana.InstructionErrorInvalidInstructionData,
		solana.InstructionErrorIncorrectProgramID,
		solana.InstructionErrorInsufficientFunds,
		solana.InstructionErrorInvalidAccountData,
		solana.InstructionErrorProgramFailedToComplete,
	} {
		assert.NotEmpty(t, FailureReason(solana.InstructionError{Key: key}), key)
	}

	assert.Equal(t, "only the campaign admin can withdraw", FailureReason(solana.InstructionError{
		Key: solana.InstructionErrorInvalidAccountData,
	}))
	assert.Empty(t, FailureReason(solana.InstructionError{Key: solana.InstructionErrorCustom, Code: 1}))
}
