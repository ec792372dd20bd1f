package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/solanaforge/forge/program"
	"github.com/solanaforge/forge/token"
	"github.com/spf13/cobra"
)

func CmdAddress() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive program addresses.",
	}
	cmd.AddCommand(cmdAddressProgram())
	cmd.AddCommand(cmdAddressUser())
	cmd.AddCommand(cmdAddressAta())
	return cmd
}

func cmdAddressProgram() *cobra.Command {
	return &cobra.Command{
		Use:   "program",
		Short: "Print the issuance program id.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(program.ProgramID)
			return nil
		},
	}
}

func cmdAddressUser() *cobra.Command {
	return &cobra.Command{
		Use:   "user [owner]",
		Short: "Derive the user record address of an owner (defaults to the keypair).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := inputAddressOrDerived(cmd, args, 0)
			if err != nil {
				return err
			}
			address, bump, err := program.FindUserAddress(owner)
			if err != nil {
				return fmt.Errorf("could not derive user address: %v", err)
			}
			fmt.Println(asJson(map[string]any{
				"owner":   owner.String(),
				"address": address.String(),
				"bump":    bump,
			}))
			return nil
		},
	}
}

func cmdAddressAta() *cobra.Command {
	return &cobra.Command{
		Use:   "ata <mint> [owner]",
		Short: "Derive the associated token account of an owner (defaults to the keypair).",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid mint: %v", err)
			}
			owner, err := inputAddressOrDerived(cmd, args, 1)
			if err != nil {
				return err
			}
			tokenProgram, err := setup.UnwrapConfig(cmd.Context()).GetTokenProgram()
			if err != nil {
				return err
			}
			address, _, err := token.DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
			if err != nil {
				return fmt.Errorf("could not derive associated token address: %v", err)
			}
			fmt.Println(address)
			return nil
		},
	}
}
