package campaign

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

// DefaultProgramKey is the address of the crowdfunding program on devnet.
//
// Current key: DtVe5Jab8MmDtAbyi3XzVsg9mc4NKwJ1AFybq5Xd8U2a
var DefaultProgramKey = solana.MustParsePublicKey("DtVe5Jab8MmDtAbyi3XzVsg9mc4NKwJ1AFybq5Xd8U2a")

type command byte

const (
	commandCreateCampaign command = iota
	commandWithdraw
	commandDonate
)

// CreateCampaignData returns the instruction data that creates a campaign
// holding r: the create discriminator followed by the marshaled record.
//
// The program stores the record without the discriminator, so the campaign
// account must be allocated with exactly r.Size() bytes.
func CreateCampaignData(r Record) ([]byte, error) {
	b, err := r.Marshal()
	if err != nil {
		return nil, err
	}

	return append([]byte{byte(commandCreateCampaign)}, b...), nil
}

// CreateCampaign returns an instruction that writes the record in data into
// account.
func CreateCampaign(program, account, admin ed25519.PublicKey, data []byte) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The campaign account, owned by the program.
	//   1. `[signer]` The admin, matching the admin in the record.
	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(admin, true),
	)
}

type DecompiledCreateCampaign struct {
	Account ed25519.PublicKey
	Admin   ed25519.PublicKey
	Record  Record
}

func DecompileCreateCampaign(program ed25519.PublicKey, m solana.Message, index int) (*DecompiledCreateCampaign, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], program) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || i.Data[0] != byte(commandCreateCampaign) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	v := &DecompiledCreateCampaign{
		Account: m.Accounts[i.Accounts[0]],
		Admin:   m.Accounts[i.Accounts[1]],
	}
	if err := v.Record.Unmarshal(i.Data[1:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(v.Record.Admin[:], v.Admin) {
		return nil, errors.New("record admin does not match signer")
	}

	return v, nil
}

// Withdraw moves lamports from a campaign to its admin.
func Withdraw(program, account, admin ed25519.PublicKey, lamports uint64) (solana.Instruction, error) {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The campaign account.
	//   1. `[writable, signer]` The campaign admin, receiving the lamports.
	req, err := WithdrawRequest{Amount: lamports}.Marshal()
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		program,
		append([]byte{byte(commandWithdraw)}, req...),
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(admin, true),
	), nil
}

// Donate moves the full balance of a program owned donation account into a campaign.
func Donate(program, account, donation, donor ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The campaign account.
	//   1. `[writable]` The donation account, owned by the program.
	//   2. `[signer]` The donor.
	return solana.NewInstruction(
		program,
		[]byte{byte(commandDonate)},
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(donation, false),
		solana.NewReadonlyAccountMeta(donor, true),
	)
}
