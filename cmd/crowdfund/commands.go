package main

import (
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinecosystem/agora-crowdfund/campaign"
	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/solana/system"
)

func newCreateCmd(e *env) *cobra.Command {
	var name, description, imageLink string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign administered by the wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}

			ctx, cancel := e.timeoutContext(cmd)
			defer cancel()

			created, err := e.client.CreateCampaign(ctx, name, description, imageLink)
			if err != nil {
				return describeFailure(err, system.FailureReason, campaign.FailureReason)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "campaign:  %s\n", encodeKey(created.Address))
			fmt.Fprintf(out, "seed:      %s\n", created.Seed)
			fmt.Fprintf(out, "signature: %s\n", created.Signature)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "campaign name")
	cmd.Flags().StringVar(&description, "description", "", "campaign description")
	cmd.Flags().StringVar(&imageLink, "image", "", "link to the campaign image")

	return cmd
}

func newDonateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "donate <campaign> <lamports>",
		Short: "Donate lamports from the wallet to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignAddr, lamports, err := parseTransferArgs(args)
			if err != nil {
				return err
			}

			ctx, cancel := e.timeoutContext(cmd)
			defer cancel()

			submitted, err := e.client.Donate(ctx, campaignAddr, lamports)
			if err != nil {
				return describeFailure(err, system.FailureReason, campaign.FailureReason)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", submitted.Signature)
			return nil
		},
	}
}

func newWithdrawCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <campaign> <lamports>",
		Short: "Withdraw lamports from a campaign administered by the wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignAddr, lamports, err := parseTransferArgs(args)
			if err != nil {
				return err
			}

			ctx, cancel := e.timeoutContext(cmd)
			defer cancel()

			submitted, err := e.client.Withdraw(ctx, campaignAddr, lamports)
			if err != nil {
				return describeFailure(err, campaign.FailureReason)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", submitted.Signature)
			return nil
		},
	}
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <campaign>",
		Short: "Show a campaign and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignAddr, err := solana.ParsePublicKey(args[0])
			if err != nil {
				return errors.Wrap(err, "invalid campaign address")
			}

			r, err := e.client.GetCampaign(campaignAddr)
			if err != nil {
				return err
			}

			commitment, err := e.config.ParsedCommitment()
			if err != nil {
				return err
			}
			balance, err := e.sc.GetBalance(campaignAddr, commitment)
			if err != nil {
				return errors.Wrap(err, "failed to get campaign balance")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:        %s\n", r.Name)
			fmt.Fprintf(out, "description: %s\n", r.Description)
			fmt.Fprintf(out, "image:       %s\n", r.ImageLink)
			fmt.Fprintf(out, "admin:       %s\n", encodeKey(r.AdminKey()))
			fmt.Fprintf(out, "donated:     %d\n", r.AmountDonated)
			fmt.Fprintf(out, "balance:     %d\n", balance)
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every campaign of the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := e.client.ListCampaigns()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range listings {
				fmt.Fprintf(out, "%s\t%d\t%s\n", encodeKey(l.Address), l.Record.AmountDonated, l.Record.Name)
			}
			return nil
		},
	}
}

func newAirdropCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <lamports>",
		Short: "Request an airdrop to the wallet (devnet, testnet and localnet only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid lamports")
			}

			ctx, cancel := e.timeoutContext(cmd)
			defer cancel()

			if !e.wallet.Connected() {
				if err := e.wallet.Connect(ctx); err != nil {
					return errors.Wrap(err, "failed to connect wallet")
				}
			}

			commitment, err := e.config.ParsedCommitment()
			if err != nil {
				return err
			}

			sig, err := e.sc.RequestAirdrop(e.wallet.PublicKey(), lamports, commitment)
			if err != nil {
				return err
			}

			status, err := e.sc.ConfirmTransaction(ctx, sig, commitment)
			if err != nil {
				return errors.Wrap(err, "failed to confirm airdrop")
			}
			if status != nil && status.ErrorResult != nil {
				return errors.Wrap(status.ErrorResult, "airdrop failed")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", sig)
			return nil
		},
	}
}

// describeFailure prefixes a failed transaction's error with the failing
// program's explanation. reasons holds one explainer per instruction, in
// transaction order.
func describeFailure(err error, reasons ...func(solana.InstructionError) string) error {
	var txErr *solana.TransactionError
	if !errors.As(err, &txErr) || txErr.Instruction == nil {
		return err
	}

	i := txErr.Instruction.Index
	if i < 0 || i >= len(reasons) {
		return err
	}

	reason := reasons[i](*txErr.Instruction)
	if reason == "" {
		return err
	}
	return errors.Wrap(err, reason)
}

func parseTransferArgs(args []string) (ed25519.PublicKey, uint64, error) {
	campaignAddr, err := solana.ParsePublicKey(args[0])
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid campaign address")
	}

	lamports, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid lamports")
	}
	if lamports == 0 {
		return nil, 0, errors.New("lamports must be positive")
	}

	return campaignAddr, lamports, nil
}

func encodeKey(k ed25519.PublicKey) string {
	return base58.Encode(k)
}
